package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const voucherColumns = `id, code, receive_start_time, receive_end_time, validity_days,
	minimum_purchase, discount_amount, discount_percent, max_discount, description,
	total_quantity, claimed_count, used_count, is_active, created_at, updated_at`

// VoucherRepository provides data access for vouchers using pgx.
type VoucherRepository struct {
	pool PoolInterface
}

// NewVoucherRepository creates a new VoucherRepository with the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// NewVoucherRepositoryWithPool creates a new VoucherRepository with a custom
// pool interface. This is primarily used for testing.
func NewVoucherRepositoryWithPool(pool PoolInterface) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

func scanVoucher(row pgx.Row) (*model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(
		&v.ID, &v.Code, &v.ReceiveStartTime, &v.ReceiveEndTime, &v.ValidityDays,
		&v.MinimumPurchase, &v.DiscountAmount, &v.DiscountPercent, &v.MaxDiscount,
		&v.Description, &v.TotalQuantity, &v.ClaimedCount, &v.UsedCount,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert inserts a new voucher.
// Returns service.ErrVoucherExists if the code is already taken.
func (r *VoucherRepository) Insert(ctx context.Context, v *model.Voucher) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO vouchers (id, code, receive_start_time, receive_end_time, validity_days,
			minimum_purchase, discount_amount, discount_percent, max_discount, description,
			total_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		v.ID, v.Code, v.ReceiveStartTime, v.ReceiveEndTime, v.ValidityDays,
		v.MinimumPurchase, v.DiscountAmount, v.DiscountPercent, v.MaxDiscount,
		v.Description, v.TotalQuantity, v.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrVoucherExists
		}
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

// GetByID retrieves a voucher by its id.
// Returns nil, nil if the voucher is not found (service layer handles this).
func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*model.Voucher, error) {
	v, err := scanVoucher(r.pool.QueryRow(ctx,
		`SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher %s: %w", id, err)
	}
	return v, nil
}

// GetByCode retrieves a voucher by its case-normalized code.
// Returns nil, nil if the voucher is not found.
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	v, err := scanVoucher(r.pool.QueryRow(ctx,
		`SELECT `+voucherColumns+` FROM vouchers WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher by code %s: %w", code, err)
	}
	return v, nil
}

// GetForUpdate retrieves a voucher with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrVoucherNotFound if the voucher doesn't exist.
func (r *VoucherRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Voucher, error) {
	v, err := scanVoucher(tx.QueryRow(ctx,
		`SELECT `+voucherColumns+` FROM vouchers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrVoucherNotFound
		}
		return nil, fmt.Errorf("get voucher for update %s: %w", id, err)
	}
	return v, nil
}

func (r *VoucherRepository) list(ctx context.Context, query string, args ...any) ([]model.Voucher, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := []model.Voucher{}
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		vouchers = append(vouchers, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voucher rows: %w", err)
	}
	return vouchers, nil
}

// List retrieves all vouchers, newest first.
func (r *VoucherRepository) List(ctx context.Context) ([]model.Voucher, error) {
	return r.list(ctx, `SELECT `+voucherColumns+` FROM vouchers ORDER BY created_at DESC`)
}

// ListAvailable retrieves vouchers that can currently be claimed: active,
// inside their receive window, with claim quota remaining.
func (r *VoucherRepository) ListAvailable(ctx context.Context, now time.Time) ([]model.Voucher, error) {
	return r.list(ctx,
		`SELECT `+voucherColumns+` FROM vouchers
		WHERE is_active
			AND receive_start_time <= $1
			AND receive_end_time >= $1
			AND claimed_count < total_quantity
		ORDER BY receive_end_time`, now)
}

// Update rewrites a voucher's configurable fields. Claim and usage
// counters are deliberately not part of this statement.
// Returns service.ErrVoucherNotFound if the voucher doesn't exist and
// service.ErrVoucherExists when a code change collides.
func (r *VoucherRepository) Update(ctx context.Context, v *model.Voucher) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE vouchers SET code = $2, receive_start_time = $3, receive_end_time = $4,
			validity_days = $5, minimum_purchase = $6, discount_amount = $7,
			discount_percent = $8, max_discount = $9, description = $10,
			total_quantity = $11, is_active = $12, updated_at = now()
		WHERE id = $1`,
		v.ID, v.Code, v.ReceiveStartTime, v.ReceiveEndTime, v.ValidityDays,
		v.MinimumPurchase, v.DiscountAmount, v.DiscountPercent, v.MaxDiscount,
		v.Description, v.TotalQuantity, v.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrVoucherExists
		}
		return fmt.Errorf("update voucher %s: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrVoucherNotFound
	}
	return nil
}

// Delete removes a voucher.
// Returns service.ErrVoucherNotFound if the voucher doesn't exist.
func (r *VoucherRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete voucher %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrVoucherNotFound
	}
	return nil
}

// IncrementClaimed bumps the claim counter, guarded by the claim quota so
// two concurrent claims of the last unit cannot both succeed.
// Returns service.ErrVoucherExhausted when the quota is already reached.
func (r *VoucherRepository) IncrementClaimed(ctx context.Context, q database.TxQuerier, id string) error {
	tag, err := q.Exec(ctx,
		`UPDATE vouchers SET claimed_count = claimed_count + 1, updated_at = now()
		WHERE id = $1 AND claimed_count < total_quantity`, id)
	if err != nil {
		return fmt.Errorf("increment claimed for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrVoucherExhausted
	}
	return nil
}

// IncrementUsed bumps the usage counter, guarded by the number of claims.
func (r *VoucherRepository) IncrementUsed(ctx context.Context, q database.TxQuerier, id string) error {
	tag, err := q.Exec(ctx,
		`UPDATE vouchers SET used_count = used_count + 1, updated_at = now()
		WHERE id = $1 AND used_count < claimed_count`, id)
	if err != nil {
		return fmt.Errorf("increment used for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment used for %s: usage counter at claim count", id)
	}
	return nil
}

// DecrementUsed undoes a usage increment. Used by placement compensation.
func (r *VoucherRepository) DecrementUsed(ctx context.Context, q database.TxQuerier, id string) error {
	_, err := q.Exec(ctx,
		`UPDATE vouchers SET used_count = used_count - 1, updated_at = now()
		WHERE id = $1 AND used_count > 0`, id)
	if err != nil {
		return fmt.Errorf("decrement used for %s: %w", id, err)
	}
	return nil
}
