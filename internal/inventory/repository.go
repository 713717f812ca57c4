package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-app/stockroom/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByOwner(ctx context.Context, ownerID int64) ([]Product, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (Product, error)
}

// TxRepository exposes the transactional operations used by the create and
// update flows. Upserts are atomic conditional inserts keyed on (owner, name);
// concurrent requests for the same name converge on one row.
type TxRepository interface {
	UpsertDepartment(ctx context.Context, ownerID int64, name string) (int64, error)
	UpsertSupplier(ctx context.Context, ownerID int64, name string) (int64, error)
	InsertProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id, ownerID int64) error
}

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const productColumns = `p.id, p.user_id, p.department_id, p.supplier_id, p.name,
	COALESCE(p.description, ''), p.price, p.stock, p.delivered, p.sku,
	COALESCE(p.image_url, ''), d.name, s.name, p.created_at, p.updated_at`

// ListByOwner fetches the tenant's full product set with department and
// supplier labels; the listing pipeline runs over this in memory.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		JOIN departments d ON d.id = p.department_id
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetForOwner fetches one product, enforcing tenant scope.
func (r *Repository) GetForOwner(ctx context.Context, id, ownerID int64) (Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		JOIN departments d ON d.id = p.department_id
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.id = $1 AND p.user_id = $2`
	row := r.pool.QueryRow(ctx, query, id, ownerID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.DepartmentID, &p.SupplierID, &p.Name,
		&p.Description, &p.Price, &p.Stock, &p.Delivered, &p.SKU,
		&p.ImageURL, &p.DepartmentName, &p.SupplierName, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// The DO UPDATE arm is a no-op touch so RETURNING always yields the row id,
// making the upsert a race-safe get-or-create.
const upsertDepartmentSQL = `INSERT INTO departments (user_id, name)
	VALUES ($1, $2)
	ON CONFLICT (user_id, name) DO UPDATE SET updated_at = now()
	RETURNING id`

const upsertSupplierSQL = `INSERT INTO suppliers (user_id, name)
	VALUES ($1, $2)
	ON CONFLICT (user_id, name) DO UPDATE SET updated_at = now()
	RETURNING id`

func (r *txRepo) UpsertDepartment(ctx context.Context, ownerID int64, name string) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, upsertDepartmentSQL, ownerID, name).Scan(&id)
	return id, err
}

func (r *txRepo) UpsertSupplier(ctx context.Context, ownerID int64, name string) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, upsertSupplierSQL, ownerID, name).Scan(&id)
	return id, err
}

func (r *txRepo) InsertProduct(ctx context.Context, p Product) (int64, error) {
	const query = `INSERT INTO products
		(user_id, department_id, supplier_id, name, description, price, stock, delivered, sku, image_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, NULLIF($10, ''))
		RETURNING id`
	var id int64
	err := r.tx.QueryRow(ctx, query,
		p.OwnerID, p.DepartmentID, p.SupplierID, p.Name, p.Description,
		p.Price, p.Stock, p.Delivered, p.SKU, p.ImageURL,
	).Scan(&id)
	if err != nil {
		return 0, mapUniqueSKU(err)
	}
	return id, nil
}

func (r *txRepo) UpdateProduct(ctx context.Context, p Product) error {
	const query = `UPDATE products
		SET department_id = $1, supplier_id = $2, name = $3, description = NULLIF($4, ''),
			price = $5, stock = $6, delivered = $7, sku = $8, image_url = NULLIF($9, ''),
			updated_at = now()
		WHERE id = $10 AND user_id = $11`
	tag, err := r.tx.Exec(ctx, query,
		p.DepartmentID, p.SupplierID, p.Name, p.Description,
		p.Price, p.Stock, p.Delivered, p.SKU, p.ImageURL,
		p.ID, p.OwnerID,
	)
	if err != nil {
		return mapUniqueSKU(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepo) DeleteProduct(ctx context.Context, id, ownerID int64) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapUniqueSKU(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSKU
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
