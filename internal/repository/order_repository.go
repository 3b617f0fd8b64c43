package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
)

const orderColumns = `seq_id, user_id, receiver_name, receiver_phone, items, applied_vouchers,
	original_total, discount, total, status, shipping_address, payment_method, note, created_at`

// OrderRepository provides data access for orders using pgx. Line items
// and applied vouchers are stored inline as JSONB snapshots so historical
// orders are immune to later catalog or voucher edits.
type OrderRepository struct {
	pool PoolInterface
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates a new OrderRepository with a custom
// pool interface. This is primarily used for testing.
func NewOrderRepositoryWithPool(pool PoolInterface) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NextSequenceID allocates the next human-readable order id. It scans the
// maximum numeric suffix across both the ORD-prefixed format and legacy
// bare-numeric ids, then zero-pads to at least three digits.
func (r *OrderRepository) NextSequenceID(ctx context.Context) (string, error) {
	var max int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(CASE
			WHEN seq_id ~ '^ORD[0-9]+$' THEN CAST(SUBSTRING(seq_id FROM 4) AS BIGINT)
			WHEN seq_id ~ '^[0-9]+$' THEN CAST(seq_id AS BIGINT)
			ELSE 0
		END), 0) FROM orders`).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("next sequence id: %w", err)
	}
	return fmt.Sprintf("ORD%03d", max+1), nil
}

// Insert inserts the immutable order record.
// Returns service.ErrSequenceConflict when the sequence id collided with
// a concurrent allocation; the caller retries with a fresh id.
func (r *OrderRepository) Insert(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	vouchers, err := json.Marshal(o.AppliedVouchers)
	if err != nil {
		return fmt.Errorf("marshal applied vouchers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (seq_id, user_id, receiver_name, receiver_phone, items, applied_vouchers,
			original_total, discount, total, status, shipping_address, payment_method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.SeqID, o.UserID, o.ReceiverName, o.ReceiverPhone, items, vouchers,
		o.OriginalTotal, o.Discount, o.Total, o.Status, o.ShippingAddress,
		o.PaymentMethod, o.Note, o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrSequenceConflict
		}
		return fmt.Errorf("insert order %s: %w", o.SeqID, err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var items, vouchers []byte
	err := row.Scan(
		&o.SeqID, &o.UserID, &o.ReceiverName, &o.ReceiverPhone, &items, &vouchers,
		&o.OriginalTotal, &o.Discount, &o.Total, &o.Status, &o.ShippingAddress,
		&o.PaymentMethod, &o.Note, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(vouchers, &o.AppliedVouchers); err != nil {
		return nil, fmt.Errorf("unmarshal applied vouchers: %w", err)
	}
	return &o, nil
}

// GetBySeqID retrieves an order by its sequence id.
// Returns nil, nil if the order is not found (service layer handles this).
func (r *OrderRepository) GetBySeqID(ctx context.Context, seqID string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE seq_id = $1`, seqID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", seqID, err)
	}
	return o, nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// List retrieves all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// ListByUser retrieves an account's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// UpdateStatus changes an order's status, the only mutation permitted
// after creation.
// Returns service.ErrOrderNotFound if the order doesn't exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, seqID string, status model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE seq_id = $1`, seqID, status)
	if err != nil {
		return fmt.Errorf("update order %s status: %w", seqID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrOrderNotFound
	}
	return nil
}

// Delete removes an order.
// Returns service.ErrOrderNotFound if the order doesn't exist.
func (r *OrderRepository) Delete(ctx context.Context, seqID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE seq_id = $1`, seqID)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", seqID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrOrderNotFound
	}
	return nil
}
