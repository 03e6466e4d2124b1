package types

import "time"

// ProductRow is a single data line of a catalog export, mapped through the
// resolved header. Values are raw strings exactly as the exporter wrote them;
// normalization happens later.
type ProductRow struct {
	SKU         string
	Name        string
	PriceText   string
	StockText   string
	Attributes  string
	Category    string
	Subcategory string
}

// ProductRecord is the normalized, ready-to-sync product. Built once per row,
// never mutated afterwards.
type ProductRecord struct {
	SKU          string
	Title        string
	CostUSD      float64
	SalePriceCLP int
	Stock        int
	// CategoryPath holds 0-2 category names, parent first.
	CategoryPath []string
	// ImageURL is attached only when the product is created, never on update.
	ImageURL string
}

// SyncStats accumulates per-run counters. Every row ends up in exactly one
// terminal bucket.
type SyncStats struct {
	Processed int
	Created   int
	Updated   int
	Filtered  int
	Errors    int
}

// Add merges another set of counters into s.
func (s *SyncStats) Add(other SyncStats) {
	s.Processed += other.Processed
	s.Created += other.Created
	s.Updated += other.Updated
	s.Filtered += other.Filtered
	s.Errors += other.Errors
}

// Config holds the configuration for a sync run.
type Config struct {
	// WooCommerce REST API credentials.
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string

	// Intcomex storefront access.
	LoginURL string
	Username string

	DownloadDir string

	// RowDelay is the pacing delay between rows, to respect the store API's
	// rate limits. RequestDelay paces browser navigation.
	RowDelay     time.Duration
	RequestDelay time.Duration
	MaxRetries   int
	// BackoffStep is multiplied by the attempt number between retries.
	BackoffStep time.Duration
	Timeout     time.Duration

	// Margin is the markup fraction of the sale price: sale = cost/(1-Margin).
	Margin float64
	// MinStock filters out rows whose stock does not exceed it.
	MinStock int
	// FallbackExchangeRate is used when the rate cannot be scraped.
	FallbackExchangeRate float64

	UserAgent string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LoginURL:             "https://store.intcomex.com/Account/Login",
		DownloadDir:          "downloads",
		RowDelay:             2 * time.Second,
		RequestDelay:         2 * time.Second,
		MaxRetries:           3,
		BackoffStep:          5 * time.Second,
		Timeout:              60 * time.Second,
		Margin:               0.20,
		MinStock:             5,
		FallbackExchangeRate: 970.0,
		UserAgent:            "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
