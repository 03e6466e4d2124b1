// Package syncer reconciles parsed catalog rows against the WooCommerce
// store: lookup by SKU, then create or update. One row's failure never
// aborts the batch; only an authentication rejection stops the run.
package syncer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"intcomex-sync/internal/types"
	"intcomex-sync/parser"
	"intcomex-sync/pricing"
	"intcomex-sync/woocommerce"
)

// Engine processes rows sequentially, in file order, pacing remote calls
// with the configured row delay. The category resolver cache it owns lives
// for exactly one run.
type Engine struct {
	client     *woocommerce.Client
	categories *woocommerce.CategoryResolver
	cfg        *types.Config
	logger     types.Logger
}

// New creates a sync engine with a fresh category cache.
func New(client *woocommerce.Client, cfg *types.Config, logger types.Logger) *Engine {
	return &Engine{
		client:     client,
		categories: woocommerce.NewCategoryResolver(client, logger),
		cfg:        cfg,
		logger:     logger,
	}
}

// Sync reconciles one file's rows. rate is the CLP-per-USD exchange rate
// fixed for the whole run; imageMap attaches an image only when a product is
// created. The returned error is non-nil only for run-fatal conditions
// (authentication); everything else lands in the stats.
func (e *Engine) Sync(ctx context.Context, rows []types.ProductRow, rate float64, imageMap map[string]string) (types.SyncStats, error) {
	var stats types.SyncStats

	for i, row := range rows {
		if i > 0 {
			select {
			case <-time.After(e.cfg.RowDelay):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}

		record, outcome := e.normalize(row, rate)
		switch outcome {
		case rowSkipped:
			continue
		case rowFiltered:
			stats.Filtered++
			continue
		case rowInvalid:
			stats.Errors++
			continue
		}
		if url, ok := imageMap[record.SKU]; ok {
			record.ImageURL = url
		}

		if err := e.reconcile(ctx, record, &stats); err != nil {
			if errors.Is(err, woocommerce.ErrAuth) || errors.Is(err, context.Canceled) {
				return stats, err
			}
			e.logger.Warnf("SKU %s: %v", record.SKU, err)
			stats.Errors++
		}
	}

	return stats, nil
}

type rowOutcome int

const (
	rowOK rowOutcome = iota
	rowSkipped
	rowFiltered
	rowInvalid
)

// normalize turns a raw row into an immutable ProductRecord, classifying
// rows that cannot or should not be synced.
func (e *Engine) normalize(row types.ProductRow, rate float64) (*types.ProductRecord, rowOutcome) {
	sku := strings.TrimSpace(row.SKU)
	if sku == "" {
		return nil, rowSkipped
	}

	cost, ok := parser.ParsePrice(row.PriceText)
	if !ok {
		e.logger.Debugf("SKU %s: unparsable price %q", sku, row.PriceText)
		return nil, rowInvalid
	}

	stock := parser.ParseStock(row.StockText)

	sale, err := pricing.SalePrice(cost, rate, e.cfg.Margin)
	if err != nil {
		e.logger.Debugf("SKU %s: %v", sku, err)
		return nil, rowInvalid
	}
	e.logger.Debugf("SKU %s: cost %d CLP -> sale %d CLP, stock %d", sku, pricing.CostCLP(cost, rate), sale, stock)

	if stock <= e.cfg.MinStock {
		e.logger.Debugf("SKU %s: stock %d below minimum %d", sku, stock, e.cfg.MinStock)
		return nil, rowFiltered
	}

	record := &types.ProductRecord{
		SKU:          sku,
		Title:        row.Name,
		CostUSD:      cost,
		SalePriceCLP: sale,
		Stock:        stock,
	}
	if row.Category != "" {
		record.CategoryPath = append(record.CategoryPath, row.Category)
		if row.Subcategory != "" {
			record.CategoryPath = append(record.CategoryPath, row.Subcategory)
		}
	}
	return record, rowOK
}

// reconcile performs the lookup and the create-or-update write for one
// record. Writes are idempotent by SKU, so a re-run turns creations into
// no-op updates.
func (e *Engine) reconcile(ctx context.Context, record *types.ProductRecord, stats *types.SyncStats) error {
	existing, err := e.client.FindProductBySKU(ctx, record.SKU)
	if err != nil {
		return err
	}

	if existing != nil {
		// Only price and stock travel on update: descriptions, images and
		// categories on the remote record stay untouched.
		upd := &woocommerce.ProductUpdate{
			RegularPrice:  strconv.Itoa(record.SalePriceCLP),
			StockQuantity: record.Stock,
			StockStatus:   woocommerce.StockStatus(record.Stock),
		}
		if err := e.client.UpdateProduct(ctx, existing.ID, upd); err != nil {
			return err
		}
		stats.Updated++
		stats.Processed++
		e.logger.Infof("SKU %s: updated ($%d CLP, stock %d)", record.SKU, record.SalePriceCLP, record.Stock)
		return nil
	}

	categoryID, err := e.categories.ResolvePath(ctx, record.CategoryPath)
	if err != nil {
		if errors.Is(err, woocommerce.ErrAuth) {
			return err
		}
		// A failed category lookup does not block the product itself.
		e.logger.Warnf("SKU %s: category resolution failed: %v", record.SKU, err)
		categoryID = 0
	}

	product := &woocommerce.Product{
		Name:          record.Title,
		Type:          "simple",
		SKU:           record.SKU,
		RegularPrice:  strconv.Itoa(record.SalePriceCLP),
		Status:        "publish",
		ManageStock:   true,
		StockQuantity: record.Stock,
		StockStatus:   woocommerce.StockStatus(record.Stock),
	}
	if categoryID > 0 {
		product.Categories = []woocommerce.CategoryRef{{ID: categoryID}}
	}
	if record.ImageURL != "" {
		product.Images = []woocommerce.Image{{Src: record.ImageURL}}
	}

	if _, err := e.client.CreateProduct(ctx, product); err != nil {
		return err
	}
	stats.Created++
	stats.Processed++
	e.logger.Infof("SKU %s: created ($%d CLP, stock %d)", record.SKU, record.SalePriceCLP, record.Stock)
	return nil
}
