package inventory

import "github.com/shopspring/decimal"

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// Stats holds the dashboard aggregates derived from a product snapshot.
type Stats struct {
	TotalProducts int             `json:"total_products"`
	LowStock      int             `json:"low_stock_products"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// Project derives aggregate statistics from a product list.
// It is a pure function of its input; an empty list yields zero stats.
func Project(products []Product) Stats {
	stats := Stats{TotalValue: decimal.Zero}
	for _, p := range products {
		stats.TotalProducts++
		if p.LowStock() {
			stats.LowStock++
		}
		stats.TotalValue = stats.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return stats
}
