package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

// WalletRepository provides data access for per-account voucher wallets.
// A partial unique index on (user_id, voucher_id) over unused entries
// blocks duplicate unused claims at the storage layer.
type WalletRepository struct {
	pool PoolInterface
}

// NewWalletRepository creates a new WalletRepository with the given pool.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// NewWalletRepositoryWithPool creates a new WalletRepository with a custom
// pool interface. This is primarily used for testing.
func NewWalletRepositoryWithPool(pool PoolInterface) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// Insert inserts a new wallet entry within a transaction.
// Returns service.ErrAlreadyClaimed if the account already holds an
// unused entry for this voucher.
func (r *WalletRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, voucherID string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_vouchers (user_id, voucher_id) VALUES ($1, $2)`,
		userID, voucherID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrAlreadyClaimed
		}
		return fmt.Errorf("insert wallet entry: %w", err)
	}
	return nil
}

// ListByUser retrieves the account's wallet in claim order, each entry
// joined with its voucher.
func (r *WalletRepository) ListByUser(ctx context.Context, userID string) ([]model.WalletVoucher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT uv.id, uv.user_id, uv.voucher_id, uv.claimed_at, uv.is_used, `+prefixedVoucherColumns("v")+`
		FROM user_vouchers uv
		JOIN vouchers v ON v.id = uv.voucher_id
		WHERE uv.user_id = $1
		ORDER BY uv.claimed_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet for user %s: %w", userID, err)
	}
	defer rows.Close()

	wallet := []model.WalletVoucher{}
	for rows.Next() {
		var wv model.WalletVoucher
		err := rows.Scan(
			&wv.Entry.ID, &wv.Entry.UserID, &wv.Entry.VoucherID, &wv.Entry.ClaimedAt, &wv.Entry.IsUsed,
			&wv.Voucher.ID, &wv.Voucher.Code, &wv.Voucher.ReceiveStartTime, &wv.Voucher.ReceiveEndTime,
			&wv.Voucher.ValidityDays, &wv.Voucher.MinimumPurchase, &wv.Voucher.DiscountAmount,
			&wv.Voucher.DiscountPercent, &wv.Voucher.MaxDiscount, &wv.Voucher.Description,
			&wv.Voucher.TotalQuantity, &wv.Voucher.ClaimedCount, &wv.Voucher.UsedCount,
			&wv.Voucher.IsActive, &wv.Voucher.CreatedAt, &wv.Voucher.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet entry: %w", err)
		}
		wallet = append(wallet, wv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallet, nil
}

// MarkUsed flips an unused entry to used.
// Returns service.ErrVoucherNotOwned when the entry is missing or already
// used, so a wallet entry can never be spent twice.
func (r *WalletRepository) MarkUsed(ctx context.Context, q database.TxQuerier, entryID int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE user_vouchers SET is_used = TRUE WHERE id = $1 AND NOT is_used`, entryID)
	if err != nil {
		return fmt.Errorf("mark wallet entry %d used: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrVoucherNotOwned
	}
	return nil
}

// MarkUnused undoes MarkUsed. Used by placement compensation.
func (r *WalletRepository) MarkUnused(ctx context.Context, q database.TxQuerier, entryID int64) error {
	_, err := q.Exec(ctx,
		`UPDATE user_vouchers SET is_used = FALSE WHERE id = $1 AND is_used`, entryID)
	if err != nil {
		return fmt.Errorf("mark wallet entry %d unused: %w", entryID, err)
	}
	return nil
}

// prefixedVoucherColumns qualifies the voucher column list with an alias
// for use in joins.
func prefixedVoucherColumns(alias string) string {
	return alias + `.id, ` + alias + `.code, ` + alias + `.receive_start_time, ` + alias + `.receive_end_time, ` +
		alias + `.validity_days, ` + alias + `.minimum_purchase, ` + alias + `.discount_amount, ` +
		alias + `.discount_percent, ` + alias + `.max_discount, ` + alias + `.description, ` +
		alias + `.total_quantity, ` + alias + `.claimed_count, ` + alias + `.used_count, ` +
		alias + `.is_active, ` + alias + `.created_at, ` + alias + `.updated_at`
}
