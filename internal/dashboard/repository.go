package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-app/stockroom/internal/inventory"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	ComputeSummary(ctx context.Context, ownerID int64) (Summary, error)
	ListStockAlerts(ctx context.Context, ownerID int64, limit int) ([]StockAlert, error)
	ActiveOwnerIDs(ctx context.Context) ([]int64, error)
}

// Repository computes dashboard aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ComputeSummary aggregates the tenant's product set in one pass. Inventory
// value is price times units on hand.
func (r *Repository) ComputeSummary(ctx context.Context, ownerID int64) (Summary, error) {
	const query = `SELECT
			COUNT(*),
			COALESCE(SUM(price * stock), 0),
			COALESCE(SUM(delivered), 0),
			COUNT(*) FILTER (WHERE stock <= $2),
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= $3),
			COUNT(*) FILTER (WHERE stock = 0)
		FROM products
		WHERE user_id = $1`
	var s Summary
	err := r.pool.QueryRow(ctx, query, ownerID,
		inventory.LowStockThreshold, inventory.CriticalStockThreshold,
	).Scan(
		&s.TotalProducts, &s.TotalValue, &s.TotalDelivered,
		&s.LowStockCount, &s.CriticalCount, &s.OutOfStockCount,
	)
	return s, err
}

// ListStockAlerts returns the products closest to running out, emptiest first.
func (r *Repository) ListStockAlerts(ctx context.Context, ownerID int64, limit int) ([]StockAlert, error) {
	const query = `SELECT p.id, p.name, p.sku, p.stock, d.name
		FROM products p
		JOIN departments d ON d.id = p.department_id
		WHERE p.user_id = $1 AND p.stock <= $2
		ORDER BY p.stock ASC, p.name ASC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, ownerID, inventory.LowStockThreshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []StockAlert
	for rows.Next() {
		var a StockAlert
		if err := rows.Scan(&a.ProductID, &a.Name, &a.SKU, &a.Stock, &a.Department); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ActiveOwnerIDs lists users eligible for background summary warmup.
func (r *Repository) ActiveOwnerIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
