package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HarvestImageMap walks the category pages and collects one image URL per
// SKU from the product grid anchors. SKUs already marked resolved in the
// cross-run state are skipped. Best-effort: a category that fails to load is
// logged and skipped, and an empty map is a valid result.
func (s *Scraper) HarvestImageMap(ctx context.Context, categories []Category, state *ImageState) map[string]string {
	imageMap := make(map[string]string)

	for _, category := range categories {
		select {
		case <-ctx.Done():
			return imageMap
		default:
		}

		s.logger.Infof("Scanning %s for product images", category.Name)
		if err := s.browser.Navigate(category.URL); err != nil {
			s.logger.Warnf("Skipping %s: %v", category.Name, err)
			continue
		}

		// Nudge lazy-loaded grids before reading the DOM.
		s.browser.Scroll(500)
		s.browser.Scroll(1000)

		source, err := s.browser.PageSource()
		if err != nil {
			s.logger.Warnf("Skipping %s: %v", category.Name, err)
			continue
		}

		found := extractProductImages(source)
		for sku, url := range found {
			if state != nil && state.IsResolved(sku) {
				continue
			}
			if _, ok := imageMap[sku]; !ok {
				imageMap[sku] = url
				if state != nil {
					state.MarkResolved(sku)
				}
			}
		}
		s.logger.Infof("%s: %d product images", category.Name, len(found))
	}

	return imageMap
}

// extractProductImages pulls sku→image-URL pairs out of a category page.
// The grid renders each product as an anchor carrying a data-sku attribute
// with its thumbnail inside.
func extractProductImages(html string) map[string]string {
	images := make(map[string]string)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return images
	}

	doc.Find("a[data-sku]").Each(func(i int, anchor *goquery.Selection) {
		sku := strings.TrimSpace(anchor.AttrOr("data-sku", ""))
		if sku == "" {
			return
		}

		img := anchor.Find("img").First()
		src := strings.TrimSpace(img.AttrOr("data-src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("src", ""))
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		if _, ok := images[sku]; !ok {
			images[sku] = src
		}
	})

	return images
}
