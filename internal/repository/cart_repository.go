package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

// CartRepository provides data access for per-account carts using pgx.
type CartRepository struct {
	pool PoolInterface
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithPool creates a new CartRepository with a custom pool
// interface. This is primarily used for testing.
func NewCartRepositoryWithPool(pool PoolInterface) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListItems retrieves the account's cart lines with product titles attached.
func (r *CartRepository) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ci.product_id, p.title, ci.quantity, ci.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY p.title`, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}
	return items, nil
}

// Add upserts a cart line. Adding an existing product accumulates the
// quantity; the unit-price snapshot from the first add is kept.
func (r *CartRepository) Add(ctx context.Context, userID, productID string, quantity int, unitPrice float64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity, unitPrice)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// SetQuantity overwrites a cart line quantity. Missing lines are ignored.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

// Remove deletes a single cart line.
func (r *CartRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// Clear empties the account's cart.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// RemoveMany deletes the cart lines for the given products. The order
// orchestrator calls this to drop just-purchased lines.
func (r *CartRepository) RemoveMany(ctx context.Context, q database.TxQuerier, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`,
		userID, productIDs)
	if err != nil {
		return fmt.Errorf("remove purchased cart items: %w", err)
	}
	return nil
}
