// Package masterdata serves the department and supplier overview pages.
// Rows are created implicitly by product get-or-creates; this package only
// reads and aggregates them.
package masterdata

import "time"

// DepartmentOverview is one department with its product aggregates.
type DepartmentOverview struct {
	ID            int64
	Name          string
	ProductCount  int
	TotalStock    int
	LowStockCount int
	CreatedAt     time.Time
}

// SupplierOverview is one supplier with its product aggregates.
type SupplierOverview struct {
	ID           int64
	Name         string
	ProductCount int
	TotalStock   int
	CreatedAt    time.Time
}
