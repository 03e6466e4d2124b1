package woocommerce

// Wire types for the WooCommerce REST API (wc/v3). Prices travel as strings.

type Product struct {
	ID            int           `json:"id,omitempty"`
	Name          string        `json:"name,omitempty"`
	Type          string        `json:"type,omitempty"`
	SKU           string        `json:"sku,omitempty"`
	RegularPrice  string        `json:"regular_price,omitempty"`
	Status        string        `json:"status,omitempty"`
	ManageStock   bool          `json:"manage_stock,omitempty"`
	StockQuantity int           `json:"stock_quantity"`
	StockStatus   string        `json:"stock_status,omitempty"`
	Categories    []CategoryRef `json:"categories,omitempty"`
	Images        []Image       `json:"images,omitempty"`
}

type CategoryRef struct {
	ID int `json:"id"`
}

type Image struct {
	Src string `json:"src"`
}

type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Parent int    `json:"parent"`
}

// ProductUpdate carries the only fields an existing product receives:
// price, stock quantity and derived stock status. Descriptions, images and
// categories are never touched on update so manual storefront edits survive.
type ProductUpdate struct {
	RegularPrice  string `json:"regular_price"`
	StockQuantity int    `json:"stock_quantity"`
	StockStatus   string `json:"stock_status"`
}

// StockStatus derives the wc/v3 stock_status value from a quantity.
func StockStatus(quantity int) string {
	if quantity > 0 {
		return "instock"
	}
	return "outofstock"
}
