package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"intcomex-sync/internal/types"
	"intcomex-sync/parser"
	"intcomex-sync/scraper"
	"intcomex-sync/syncer"
	"intcomex-sync/woocommerce"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	defaults := types.DefaultConfig()
	var (
		categoriesFlag = flag.String("categories", "", "Comma-separated category names to sync (default: all)")
		downloadDir    = flag.String("download-dir", defaults.DownloadDir, "Directory for downloaded price lists")
		rowDelay       = flag.Duration("delay", defaults.RowDelay, "Pacing delay between product rows")
		maxRetries     = flag.Int("retries", defaults.MaxRetries, "Maximum attempts per store API call")
		timeout        = flag.Duration("timeout", defaults.Timeout, "Store API request timeout")
		margin         = flag.Float64("margin", defaults.Margin, "Markup fraction of the sale price")
		minStock       = flag.Int("min-stock", defaults.MinStock, "Rows with stock at or below this are filtered")
		rateFlag       = flag.Float64("rate", 0, "CLP/USD exchange rate override (0 = scrape it)")
		skipDownload   = flag.Bool("skip-download", false, "Sync CSVs already present in the download directory")
		skipImages     = flag.Bool("skip-images", false, "Do not harvest product images")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg := defaults
	cfg.StoreURL = os.Getenv("WC_URL")
	cfg.ConsumerKey = os.Getenv("WC_CONSUMER_KEY")
	cfg.ConsumerSecret = os.Getenv("WC_CONSUMER_SECRET")
	cfg.Username = os.Getenv("INTCOMEX_USERNAME")
	cfg.DownloadDir = *downloadDir
	cfg.RowDelay = *rowDelay
	cfg.MaxRetries = *maxRetries
	cfg.Timeout = *timeout
	cfg.Margin = *margin
	cfg.MinStock = *minStock

	if cfg.StoreURL == "" || cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		logger.Fatal("WC_URL, WC_CONSUMER_KEY and WC_CONSUMER_SECRET must be set (see .env)")
	}
	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		logger.Fatalf("Create download dir: %v", err)
	}

	categories := selectCategories(*categoriesFlag, logger)
	if len(categories) == 0 {
		logger.Fatal("No categories selected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		rate     float64
		files    []catalogFile
		imageMap map[string]string
	)

	if *skipDownload {
		rate, files, imageMap = localInputs(cfg, categories, *rateFlag, logger)
	} else {
		rate, files, imageMap = browserInputs(ctx, cfg, categories, *rateFlag, *skipImages, logger)
	}
	if len(files) == 0 {
		logger.Fatal("No price lists to sync")
	}
	logger.Infof("Syncing %d price list(s) at %.2f CLP/USD", len(files), rate)

	client := woocommerce.NewClient(cfg, logger)
	engine := syncer.New(client, cfg, logger)

	var total types.SyncStats
	startTime := time.Now()

	for _, file := range files {
		logger.Infof("Category %s: %s", file.Category, file.Path)

		data, err := os.ReadFile(file.Path)
		if err != nil {
			logger.Errorf("Category %s: read failed: %v", file.Category, err)
			continue
		}

		catalog, err := parser.Parse(data)
		if err != nil {
			// File-fatal: this price list is unusable, the others proceed.
			logger.Errorf("Category %s: %v", file.Category, err)
			continue
		}
		logger.Infof("Category %s: %d rows (%s, header at line %d, %d malformed)",
			file.Category, len(catalog.Rows), catalog.Encoding, catalog.HeaderOffset+1, catalog.Skipped)

		stats, err := engine.Sync(ctx, catalog.Rows, rate, imageMap)
		stats.Filtered += catalog.Skipped
		total.Add(stats)
		reportStats(logger, file.Category, stats)

		if err != nil {
			if errors.Is(err, woocommerce.ErrAuth) {
				logger.Fatalf("Store rejected the API credentials: %v", err)
			}
			logger.Errorf("Sync interrupted: %v", err)
			break
		}
	}

	logger.Infof("Run finished in %v", time.Since(startTime).Round(time.Second))
	reportStats(logger, "TOTAL", total)
}

// catalogFile pairs a downloaded price list with its category name.
type catalogFile struct {
	Category string
	Path     string
}

// selectCategories filters the known categories by the -categories flag.
func selectCategories(names string, logger *logrus.Logger) []scraper.Category {
	if names == "" {
		return scraper.DefaultCategories
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(names, ",") {
		wanted[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var selected []scraper.Category
	for _, category := range scraper.DefaultCategories {
		if wanted[strings.ToLower(category.Name)] {
			selected = append(selected, category)
			delete(wanted, strings.ToLower(category.Name))
		}
	}
	for name := range wanted {
		logger.Warnf("Unknown category: %s, skipping", name)
	}
	return selected
}

// browserInputs runs the extraction phase: login, exchange rate, CSV
// downloads and image harvesting through a real browser session.
func browserInputs(ctx context.Context, cfg *types.Config, categories []scraper.Category, rateOverride float64, skipImages bool, logger *logrus.Logger) (float64, []catalogFile, map[string]string) {
	browser := scraper.NewBrowser(cfg, logger)
	if err := browser.Start(ctx); err != nil {
		logger.Fatalf("Browser: %v", err)
	}
	defer browser.Close()

	s := scraper.NewScraper(browser, cfg, logger)
	if err := s.Login(ctx); err != nil {
		logger.Fatalf("Login: %v", err)
	}

	rate := rateOverride
	if rate == 0 {
		rate = s.ExchangeRate(ctx)
	}

	var files []catalogFile
	for _, category := range categories {
		path, err := s.DownloadCatalog(ctx, category)
		if err != nil {
			// Category-fatal only: the other lists still sync.
			logger.Errorf("Category %s: download failed: %v", category.Name, err)
			continue
		}
		files = append(files, catalogFile{Category: category.Name, Path: path})
	}

	imageMap := make(map[string]string)
	if !skipImages {
		state, err := scraper.LoadImageState(cfg.DownloadDir)
		if err != nil {
			logger.Warnf("Image state: %v", err)
			state = nil
		}
		imageMap = s.HarvestImageMap(ctx, categories, state)
		if state != nil {
			if err := state.Save(); err != nil {
				logger.Warnf("Image state: %v", err)
			}
		}
		if err := scraper.SaveImageMap(cfg.DownloadDir, imageMap); err != nil {
			logger.Warnf("Image map: %v", err)
		}
		logger.Infof("Harvested %d product images", len(imageMap))
	}

	return rate, files, imageMap
}

// localInputs skips the browser entirely and reuses artifacts from a
// previous run: existing <category>.csv files and the persisted image map.
func localInputs(cfg *types.Config, categories []scraper.Category, rateOverride float64, logger *logrus.Logger) (float64, []catalogFile, map[string]string) {
	rate := rateOverride
	if rate == 0 {
		rate = cfg.FallbackExchangeRate
		logger.Warnf("No -rate given; using fallback %.2f CLP/USD", rate)
	}

	var files []catalogFile
	for _, category := range categories {
		path := filepath.Join(cfg.DownloadDir, category.Name+".csv")
		if _, err := os.Stat(path); err != nil {
			logger.Debugf("Category %s: no local file", category.Name)
			continue
		}
		files = append(files, catalogFile{Category: category.Name, Path: path})
	}

	imageMap, err := scraper.LoadImageMap(cfg.DownloadDir)
	if err != nil {
		logger.Warnf("Image map: %v", err)
		imageMap = make(map[string]string)
	}

	return rate, files, imageMap
}

func reportStats(logger *logrus.Logger, label string, stats types.SyncStats) {
	logger.WithFields(logrus.Fields{
		"processed": stats.Processed,
		"created":   stats.Created,
		"updated":   stats.Updated,
		"filtered":  stats.Filtered,
		"errors":    stats.Errors,
	}).Infof("Summary %s", label)
}
