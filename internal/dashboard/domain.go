// Package dashboard computes and caches the per-tenant inventory aggregates
// shown on the landing page after sign-in.
package dashboard

// Summary holds the dashboard aggregates for one tenant.
type Summary struct {
	TotalProducts   int     `json:"total_products"`
	TotalValue      float64 `json:"total_value"`
	TotalDelivered  int     `json:"total_delivered"`
	LowStockCount   int     `json:"low_stock_count"`
	CriticalCount   int     `json:"critical_count"`
	OutOfStockCount int     `json:"out_of_stock_count"`
}

// StockAlert is one product surfaced in the dashboard's low-stock list.
type StockAlert struct {
	ProductID  int64
	Name       string
	SKU        string
	Stock      int
	Department string
}
