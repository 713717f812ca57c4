package inventory

import (
	"errors"
	"time"
)

// Stock classification thresholds. These are presentation-level cutoffs, not
// stored state.
const (
	LowStockThreshold      = 10
	CriticalStockThreshold = 5
)

// Product represents a product row scoped to its owning user.
type Product struct {
	ID             int64
	OwnerID        int64
	DepartmentID   int64
	SupplierID     int64
	Name           string
	Description    string
	Price          float64
	Stock          int
	Delivered      int
	SKU            string
	ImageURL       string
	DepartmentName string
	SupplierName   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StockStatus labels a product's stock level.
type StockStatus string

const (
	StockOK       StockStatus = "ok"
	StockLow      StockStatus = "low"
	StockCritical StockStatus = "critical"
	StockOut      StockStatus = "out"
)

// Status classifies the product's stock level. Out-of-stock wins over
// critical, critical over low.
func (p Product) Status() StockStatus {
	switch {
	case p.Stock == 0:
		return StockOut
	case p.Stock <= CriticalStockThreshold:
		return StockCritical
	case p.Stock <= LowStockThreshold:
		return StockLow
	default:
		return StockOK
	}
}

// IsLowStock reports whether the product falls under the low-stock cutoff.
func (p Product) IsLowStock() bool {
	return p.Stock <= LowStockThreshold
}

// ProductInput carries the fields of a create or update request after form
// decoding.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Delivered   int
	SKU         string
	Department  string
	Supplier    string
	ImageURL    string
}

var (
	// ErrDuplicateSKU indicates the SKU is already used within the tenant.
	ErrDuplicateSKU = errors.New("inventory: sku already in use")
	// ErrInvalidInput indicates the payload failed business validation.
	ErrInvalidInput = errors.New("inventory: invalid input")
)
