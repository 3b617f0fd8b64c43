package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
)

// VoucherService provides business logic for voucher operations: CRUD,
// claiming into account wallets, and wallet queries.
type VoucherService struct {
	pool     TxBeginner
	vouchers VoucherRepositoryInterface
	wallet   WalletRepositoryInterface
	users    UserRepositoryInterface
	now      func() time.Time
}

// NewVoucherService creates a new VoucherService with the given pool and repositories.
func NewVoucherService(pool *pgxpool.Pool, vouchers VoucherRepositoryInterface, wallet WalletRepositoryInterface, users UserRepositoryInterface) *VoucherService {
	return &VoucherService{
		pool:     pool,
		vouchers: vouchers,
		wallet:   wallet,
		users:    users,
		now:      time.Now,
	}
}

// NewVoucherServiceWithTxBeginner creates a VoucherService with a custom
// TxBeginner and clock. Primarily used for testing.
func NewVoucherServiceWithTxBeginner(pool TxBeginner, vouchers VoucherRepositoryInterface, wallet WalletRepositoryInterface, users UserRepositoryInterface, now func() time.Time) *VoucherService {
	if now == nil {
		now = time.Now
	}
	return &VoucherService{
		pool:     pool,
		vouchers: vouchers,
		wallet:   wallet,
		users:    users,
		now:      now,
	}
}

// NormalizeCode upper-cases and trims a voucher code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateDiscountMode(amount, percent float64) error {
	if amount == 0 && percent == 0 {
		return fmt.Errorf("%w: voucher must have either discount_amount or discount_percent", ErrInvalidRequest)
	}
	if amount > 0 && percent > 0 {
		return fmt.Errorf("%w: voucher cannot have both discount_amount and discount_percent", ErrInvalidRequest)
	}
	return nil
}

// Create creates a new voucher from the request.
// Returns ErrVoucherExists if the code is already taken and
// ErrInvalidRequest for an inconsistent discount configuration.
func (s *VoucherService) Create(ctx context.Context, req *model.CreateVoucherRequest) (*model.Voucher, error) {
	if req == nil || req.TotalQuantity == nil {
		return nil, ErrInvalidRequest
	}
	if err := validateDiscountMode(req.DiscountAmount, req.DiscountPercent); err != nil {
		return nil, err
	}
	if !req.ReceiveEndTime.After(req.ReceiveStartTime) {
		return nil, fmt.Errorf("%w: receive_end_time must be after receive_start_time", ErrInvalidRequest)
	}

	v := &model.Voucher{
		ID:               uuid.NewString(),
		Code:             NormalizeCode(req.Code),
		ReceiveStartTime: req.ReceiveStartTime,
		ReceiveEndTime:   req.ReceiveEndTime,
		ValidityDays:     req.ValidityDays,
		MinimumPurchase:  req.MinimumPurchase,
		DiscountAmount:   req.DiscountAmount,
		DiscountPercent:  req.DiscountPercent,
		MaxDiscount:      req.MaxDiscount,
		Description:      req.Description,
		TotalQuantity:    *req.TotalQuantity,
		IsActive:         true,
	}
	if err := s.vouchers.Insert(ctx, v); err != nil {
		return nil, err
	}

	log.Info().
		Str("voucher_code", v.Code).
		Int("total_quantity", v.TotalQuantity).
		Msg("voucher created")
	return v, nil
}

// Update applies the non-nil fields of the request to a voucher. Claim
// and usage counters cannot be changed through this path.
func (s *VoucherService) Update(ctx context.Context, id string, req *model.UpdateVoucherRequest) (*model.Voucher, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	v, err := s.vouchers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	if v == nil {
		return nil, ErrVoucherNotFound
	}

	if req.Code != nil {
		v.Code = NormalizeCode(*req.Code)
	}
	if req.ReceiveStartTime != nil {
		v.ReceiveStartTime = *req.ReceiveStartTime
	}
	if req.ReceiveEndTime != nil {
		v.ReceiveEndTime = *req.ReceiveEndTime
	}
	if req.ValidityDays != nil {
		v.ValidityDays = *req.ValidityDays
	}
	if req.MinimumPurchase != nil {
		v.MinimumPurchase = *req.MinimumPurchase
	}
	if req.DiscountAmount != nil {
		v.DiscountAmount = *req.DiscountAmount
	}
	if req.DiscountPercent != nil {
		v.DiscountPercent = *req.DiscountPercent
	}
	if req.MaxDiscount != nil {
		v.MaxDiscount = *req.MaxDiscount
	}
	if req.Description != nil {
		v.Description = *req.Description
	}
	if req.TotalQuantity != nil {
		v.TotalQuantity = *req.TotalQuantity
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := validateDiscountMode(v.DiscountAmount, v.DiscountPercent); err != nil {
		return nil, err
	}
	if !v.ReceiveEndTime.After(v.ReceiveStartTime) {
		return nil, fmt.Errorf("%w: receive_end_time must be after receive_start_time", ErrInvalidRequest)
	}

	if err := s.vouchers.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a voucher.
func (s *VoucherService) Delete(ctx context.Context, id string) error {
	return s.vouchers.Delete(ctx, id)
}

// List retrieves all vouchers.
func (s *VoucherService) List(ctx context.Context) ([]model.Voucher, error) {
	return s.vouchers.List(ctx)
}

// ListAvailable retrieves vouchers currently open for claiming.
func (s *VoucherService) ListAvailable(ctx context.Context) ([]model.Voucher, error) {
	return s.vouchers.ListAvailable(ctx, s.now())
}

// GetByCode retrieves a voucher by its code.
// Returns ErrVoucherNotFound if no voucher carries the code.
func (s *VoucherService) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	v, err := s.vouchers.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	if v == nil {
		return nil, ErrVoucherNotFound
	}
	return v, nil
}

// GetByID retrieves a voucher by id.
// Returns ErrVoucherNotFound if the voucher doesn't exist.
func (s *VoucherService) GetByID(ctx context.Context, id string) (*model.Voucher, error) {
	v, err := s.vouchers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	if v == nil {
		return nil, ErrVoucherNotFound
	}
	return v, nil
}

// Claim atomically claims a voucher into an account's wallet.
// Uses SELECT FOR UPDATE to lock the voucher row during the transaction.
// Returns:
//   - ErrVoucherNotFound if the voucher doesn't exist
//   - ErrUserNotFound if the account doesn't exist
//   - ErrVoucherInactive / ErrVoucherExhausted / ErrVoucherNotClaimable
//     when the claim window or quota rules fail
//   - ErrAlreadyClaimed if the account already holds an unused entry
func (s *VoucherService) Claim(ctx context.Context, userID, voucherID string) (*model.ClaimVoucherResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the voucher row (SELECT FOR UPDATE)
	v, err := s.vouchers.GetForUpdate(ctx, tx, voucherID)
	if err != nil {
		if errors.Is(err, ErrVoucherNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("get voucher for update: %w", err)
	}

	// 2. Check the claim window and quota
	now := s.now()
	if !v.CanClaim(now) {
		switch {
		case !v.IsActive:
			return nil, ErrVoucherInactive
		case v.ClaimedCount >= v.TotalQuantity:
			return nil, ErrVoucherExhausted
		default:
			return nil, ErrVoucherNotClaimable
		}
	}

	// 3. Insert wallet entry (partial unique index catches duplicate unused claims)
	if err := s.wallet.Insert(ctx, tx, userID, v.ID); err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			return nil, ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("insert wallet entry: %w", err)
	}

	// 4. Bump the claim counter, guarded by the quota
	if err := s.vouchers.IncrementClaimed(ctx, tx, v.ID); err != nil {
		return nil, fmt.Errorf("increment claimed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	v.ClaimedCount++
	log.Info().
		Str("user_id", userID).
		Str("voucher_code", v.Code).
		Msg("voucher claimed")

	return &model.ClaimVoucherResponse{
		Message:   "voucher claimed successfully",
		Voucher:   v,
		ExpiresAt: now.AddDate(0, 0, v.ValidityDays),
	}, nil
}

// UserVouchers retrieves the account's unused, still-valid wallet entries.
func (s *VoucherService) UserVouchers(ctx context.Context, userID string) ([]model.WalletVoucher, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	wallet, err := s.wallet.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	now := s.now()
	valid := []model.WalletVoucher{}
	for _, wv := range wallet {
		if wv.Entry.IsUsed {
			continue
		}
		if !wv.Voucher.IsValid(now, wv.Entry.ClaimedAt) {
			continue
		}
		valid = append(valid, wv)
	}
	return valid, nil
}
