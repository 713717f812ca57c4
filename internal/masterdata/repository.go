package masterdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	ListDepartments(ctx context.Context, ownerID int64) ([]DepartmentOverview, error)
	ListSuppliers(ctx context.Context, ownerID int64) ([]SupplierOverview, error)
}

// Repository reads master data aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListDepartments returns the tenant's departments with product counts, total
// stock and the number of products at or below the low-stock cutoff.
func (r *Repository) ListDepartments(ctx context.Context, ownerID int64) ([]DepartmentOverview, error) {
	const query = `SELECT d.id, d.name,
			COUNT(p.id),
			COALESCE(SUM(p.stock), 0),
			COUNT(p.id) FILTER (WHERE p.stock <= $2),
			d.created_at
		FROM departments d
		LEFT JOIN products p ON p.department_id = d.id
		WHERE d.user_id = $1
		GROUP BY d.id
		ORDER BY d.name`
	rows, err := r.pool.Query(ctx, query, ownerID, lowStockCutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overviews []DepartmentOverview
	for rows.Next() {
		var o DepartmentOverview
		if err := rows.Scan(&o.ID, &o.Name, &o.ProductCount, &o.TotalStock, &o.LowStockCount, &o.CreatedAt); err != nil {
			return nil, err
		}
		overviews = append(overviews, o)
	}
	return overviews, rows.Err()
}

// ListSuppliers returns the tenant's suppliers with product counts and total
// stock.
func (r *Repository) ListSuppliers(ctx context.Context, ownerID int64) ([]SupplierOverview, error) {
	const query = `SELECT s.id, s.name,
			COUNT(p.id),
			COALESCE(SUM(p.stock), 0),
			s.created_at
		FROM suppliers s
		LEFT JOIN products p ON p.supplier_id = s.id
		WHERE s.user_id = $1
		GROUP BY s.id
		ORDER BY s.name`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overviews []SupplierOverview
	for rows.Next() {
		var o SupplierOverview
		if err := rows.Scan(&o.ID, &o.Name, &o.ProductCount, &o.TotalStock, &o.CreatedAt); err != nil {
			return nil, err
		}
		overviews = append(overviews, o)
	}
	return overviews, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
