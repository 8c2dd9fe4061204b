package domain

// Product statuses.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// LowStockThreshold is the stock level at or below which a product is
// flagged as low stock in the catalog views.
const LowStockThreshold = 5

// ProductRecord is a catalog product. The catalog is served from local
// seed data; edits are kept in memory only and never pushed upstream.
type ProductRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	SalePrice   float64  `json:"sale_price,omitempty"`
	Stock       int      `json:"stock"`
	SKU         string   `json:"sku"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
}

// LowStock reports whether the product's stock is at or below the
// low-stock threshold.
func (p *ProductRecord) LowStock() bool {
	return p.Stock <= LowStockThreshold
}
