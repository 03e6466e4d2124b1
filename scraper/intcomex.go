// Package scraper is the browser-automation collaborator: it logs into the
// Intcomex storefront, downloads per-category CSV price lists, extracts the
// day's exchange rate from the site header, and harvests product image URLs.
// Everything it produces is best-effort input for the sync core; only a
// failed login stops a run.
package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"intcomex-sync/internal/types"
)

// Category is one downloadable price list on the storefront.
type Category struct {
	Name string
	URL  string
}

// DefaultCategories lists the product categories the store carries.
var DefaultCategories = []Category{
	{"Notebooks", "https://store.intcomex.com/es-XCL/Products/ByCategory/cpt.notebook?r=True"},
	{"Monitores_TV", "https://store.intcomex.com/es-XCL/Products/ByCategory/mnt.tv?r=True"},
	{"Monitores", "https://store.intcomex.com/es-XCL/Products/ByCategory/mnt.monitor?r=True"},
	{"Desktop", "https://store.intcomex.com/es-XCL/Products/ByCategory/cpt.desktop?r=True"},
	{"Tablets", "https://store.intcomex.com/es-XCL/Products/ByCategory/cpt.tablet?r=True"},
	{"Impresoras_Inkjet", "https://store.intcomex.com/es-XCL/Products/ByCategory/prt.inkjet?r=True"},
	{"Impresoras_Label", "https://store.intcomex.com/es-XCL/Products/ByCategory/prt.label?r=True"},
	{"Impresoras_Laser", "https://store.intcomex.com/es-XCL/Products/ByCategory/prt.laser?r=True"},
	{"Impresoras_MFP", "https://store.intcomex.com/es-XCL/Products/ByCategory/prt.mfp?r=True"},
	{"Scanners", "https://store.intcomex.com/es-XCL/Products/ByCategory/prt.scanner?r=True"},
	{"All_in_One", "https://store.intcomex.com/es-XCL/Products/ByCategory/cpt.allone?r=True"},
}

const (
	downloadButtonSelector = "a.priceListButtom[href*='Csv']"
	loginWaitTimeout       = 5 * time.Minute
	downloadWaitTimeout    = 30 * time.Second
)

// Exchange-rate phrasings observed in the storefront header, most specific
// first ("US$1 = CLP$902", "T.Cambio: 902,50", ...).
var exchangeRatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)US\$1\s*=\s*CLP\s*\$?\s*(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?i)US\$1\s*=\s*\$?(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?i)CLP\$(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?i)T\.?Cambio[:\s]+(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?i)Tasa[:\s]+(\d+(?:[.,]\d+)?)`),
}

// Scraper drives the storefront through a Browser session.
type Scraper struct {
	browser *Browser
	cfg     *types.Config
	logger  types.Logger
}

// NewScraper creates a scraper over an already started browser.
func NewScraper(browser *Browser, cfg *types.Config, logger types.Logger) *Scraper {
	return &Scraper{
		browser: browser,
		cfg:     cfg,
		logger:  logger,
	}
}

// Login navigates to the login page and waits for the operator to sign in
// manually, polling until the browser leaves the login/account area.
func (s *Scraper) Login(ctx context.Context) error {
	if err := s.browser.Navigate(s.cfg.LoginURL); err != nil {
		return err
	}

	s.logger.Infof("Waiting for manual login (user hint: %s)", s.cfg.Username)

	deadline := time.Now().Add(loginWaitTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}

		current, err := s.browser.CurrentURL()
		if err != nil {
			continue
		}
		lowered := strings.ToLower(current)
		if !strings.Contains(lowered, "login") && !strings.Contains(lowered, "account") {
			s.logger.Infof("Login detected: %s", current)
			return nil
		}
	}
	return fmt.Errorf("login not completed within %v", loginWaitTimeout)
}

// ExchangeRate extracts the CLP-per-USD rate from the page the browser is
// currently on. When no plausible value is found it falls back to the
// configured constant.
func (s *Scraper) ExchangeRate(ctx context.Context) float64 {
	source, err := s.browser.PageSource()
	if err != nil {
		s.logger.Warnf("Could not read page for exchange rate: %v; using fallback %.2f", err, s.cfg.FallbackExchangeRate)
		return s.cfg.FallbackExchangeRate
	}

	if rate, ok := extractExchangeRate(source); ok {
		s.logger.Infof("Exchange rate from site: %.2f CLP/USD", rate)
		return rate
	}

	s.logger.Warnf("Exchange rate not found on page; using fallback %.2f", s.cfg.FallbackExchangeRate)
	return s.cfg.FallbackExchangeRate
}

// extractExchangeRate scans HTML for a rate phrasing. Values outside the
// plausible CLP/USD band are treated as false matches.
func extractExchangeRate(html string) (float64, bool) {
	for _, pattern := range exchangeRatePatterns {
		for _, match := range pattern.FindAllStringSubmatch(html, -1) {
			raw := strings.Replace(match[1], ",", ".", 1)
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if value >= 500 && value <= 2000 {
				return value, true
			}
		}
	}
	return 0, false
}

// DownloadCatalog navigates to a category, clicks its CSV price-list button
// and waits for the download to land, renaming it to <category>.csv. A
// failure affects only that category.
func (s *Scraper) DownloadCatalog(ctx context.Context, category Category) (string, error) {
	s.logger.Infof("Downloading price list: %s", category.Name)

	if err := s.browser.Navigate(category.URL); err != nil {
		return "", err
	}

	before, err := listCSVs(s.cfg.DownloadDir)
	if err != nil {
		return "", err
	}

	if err := s.browser.ClickJS(downloadButtonSelector); err != nil {
		return "", fmt.Errorf("download button: %w", err)
	}

	downloaded, err := s.waitForDownload(ctx, before)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.cfg.DownloadDir, category.Name+".csv")
	if target != downloaded {
		os.Remove(target)
		if err := os.Rename(downloaded, target); err != nil {
			return "", fmt.Errorf("rename download: %w", err)
		}
	}
	s.logger.Infof("Saved %s", target)
	return target, nil
}

// waitForDownload polls the download directory until a CSV that was not
// there before shows up and has settled on disk.
func (s *Scraper) waitForDownload(ctx context.Context, before map[string]bool) (string, error) {
	deadline := time.Now().Add(downloadWaitTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
		}

		current, err := listCSVs(s.cfg.DownloadDir)
		if err != nil {
			return "", err
		}
		for path := range current {
			if !before[path] && !strings.HasSuffix(path, ".crdownload") {
				// Give the browser a moment to finish writing.
				time.Sleep(2 * time.Second)
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("timed out waiting for CSV download")
}

func listCSVs(dir string) (map[string]bool, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan download dir: %w", err)
	}
	files := make(map[string]bool, len(matches))
	for _, m := range matches {
		files[m] = true
	}
	return files, nil
}
