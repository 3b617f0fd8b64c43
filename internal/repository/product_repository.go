package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

const productColumns = `id, legacy_id, title, description, brand, category, price, stock, thumbnail, created_at, updated_at`

// ProductRepository provides data access for products using pgx.
// Stock is only ever changed through Reserve and Release.
type ProductRepository struct {
	pool PoolInterface
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a new ProductRepository with a custom
// pool interface. This is primarily used for testing.
func NewProductRepositoryWithPool(pool PoolInterface) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.LegacyID, &p.Title, &p.Description, &p.Brand, &p.Category,
		&p.Price, &p.Stock, &p.Thumbnail, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByRef resolves a client-supplied product reference. The catalog
// UUID is tried first, then the numeric legacy id.
// Returns nil, nil if no product matches (service layer handles this).
func (r *ProductRepository) FindByRef(ctx context.Context, ref string) (*model.Product, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return r.getWhere(ctx, `id = $1`, ref)
	}
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil && n > 0 {
		return r.getWhere(ctx, `legacy_id = $1`, n)
	}
	return nil, nil
}

// GetByID retrieves a product by its catalog id.
// Returns nil, nil if the product is not found.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	return r.getWhere(ctx, `id = $1`, id)
}

func (r *ProductRepository) getWhere(ctx context.Context, where string, arg any) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List retrieves all products.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// Insert inserts a new product.
func (r *ProductRepository) Insert(ctx context.Context, p *model.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, legacy_id, title, description, brand, category, price, stock, thumbnail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.LegacyID, p.Title, p.Description, p.Brand, p.Category, p.Price, p.Stock, p.Thumbnail)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update rewrites a product's catalog fields. Stock is deliberately not
// part of this statement.
// Returns service.ErrProductNotFound if the product doesn't exist.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET title = $2, description = $3, brand = $4, category = $5,
			price = $6, thumbnail = $7, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Title, p.Description, p.Brand, p.Category, p.Price, p.Thumbnail)
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
// Returns service.ErrProductNotFound if the product doesn't exist.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrProductNotFound
	}
	return nil
}

// Reserve atomically decrements stock, guarded so it can never go
// negative. Two concurrent orders for the last unit cannot both succeed.
// Returns service.ErrInsufficientStock when the guard fails.
func (r *ProductRepository) Reserve(ctx context.Context, q database.TxQuerier, id string, quantity int) error {
	tag, err := q.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, id, quantity)
	if err != nil {
		return fmt.Errorf("reserve %d of product %s: %w", quantity, id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrInsufficientStock
	}
	return nil
}

// Release atomically returns previously reserved stock. Used by order
// deletion and by placement compensation.
func (r *ProductRepository) Release(ctx context.Context, q database.TxQuerier, id string, quantity int) error {
	_, err := q.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, quantity)
	if err != nil {
		return fmt.Errorf("release %d of product %s: %w", quantity, id, err)
	}
	return nil
}
