package model

import "time"

// Voucher represents a discount voucher. Exactly one discount mode is
// configured per voucher: a fixed amount, or a percentage with an
// optional cap.
type Voucher struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	ReceiveStartTime time.Time `json:"receive_start_time"`
	ReceiveEndTime   time.Time `json:"receive_end_time"`
	ValidityDays     int       `json:"validity_days"`
	MinimumPurchase  float64   `json:"minimum_purchase"`
	DiscountAmount   float64   `json:"discount_amount"`
	DiscountPercent  float64   `json:"discount_percent"`
	MaxDiscount      float64   `json:"max_discount"`
	Description      string    `json:"description"`
	TotalQuantity    int       `json:"total_quantity"`
	ClaimedCount     int       `json:"claimed_count"`
	UsedCount        int       `json:"used_count"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"-"` // Not exposed in API
	UpdatedAt        time.Time `json:"-"`
}

// CalculateDiscount returns the discount this voucher grants against the
// given order total. Returns 0 below the minimum purchase. Fixed-amount
// vouchers grant the full amount; percentage vouchers are capped at
// MaxDiscount when a cap is configured.
func (v *Voucher) CalculateDiscount(orderTotal float64) float64 {
	if orderTotal < v.MinimumPurchase {
		return 0
	}

	if v.DiscountAmount > 0 {
		return v.DiscountAmount
	}

	if v.DiscountPercent > 0 {
		discount := orderTotal * v.DiscountPercent / 100
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			return v.MaxDiscount
		}
		return discount
	}

	return 0
}

// IsValid reports whether the voucher can still be redeemed at now.
// When claimedAt is non-zero the per-claim validity window
// (claimedAt + ValidityDays, day granularity) is also checked.
func (v *Voucher) IsValid(now, claimedAt time.Time) bool {
	if !v.IsActive {
		return false
	}
	if v.ClaimedCount >= v.TotalQuantity {
		return false
	}
	if !claimedAt.IsZero() {
		expiry := claimedAt.AddDate(0, 0, v.ValidityDays)
		if now.After(expiry) {
			return false
		}
	}
	return true
}

// CanClaim reports whether the voucher may be claimed at now: it must be
// active, within its receive window, and not yet exhausted.
func (v *Voucher) CanClaim(now time.Time) bool {
	return v.IsActive &&
		!now.Before(v.ReceiveStartTime) &&
		!now.After(v.ReceiveEndTime) &&
		v.ClaimedCount < v.TotalQuantity
}

// WalletEntry is a user's personal, single-use claim of a voucher.
type WalletEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	VoucherID string    `json:"voucher_id"`
	ClaimedAt time.Time `json:"claimed_at"`
	IsUsed    bool      `json:"is_used"`
}

// WalletVoucher pairs a wallet entry with the voucher it refers to.
type WalletVoucher struct {
	Entry   WalletEntry `json:"entry"`
	Voucher Voucher     `json:"voucher"`
}

// CreateVoucherRequest is the DTO for creating a voucher.
type CreateVoucherRequest struct {
	Code             string    `json:"code" validate:"required,notblank,max=64"`
	ReceiveStartTime time.Time `json:"receive_start_time" validate:"required"`
	ReceiveEndTime   time.Time `json:"receive_end_time" validate:"required"`
	ValidityDays     int       `json:"validity_days" validate:"required,gte=1"`
	MinimumPurchase  float64   `json:"minimum_purchase" validate:"gte=0"`
	DiscountAmount   float64   `json:"discount_amount" validate:"gte=0"`
	DiscountPercent  float64   `json:"discount_percent" validate:"gte=0,lte=100"`
	MaxDiscount      float64   `json:"max_discount" validate:"gte=0"`
	Description      string    `json:"description"`
	TotalQuantity    *int      `json:"total_quantity" validate:"required,gte=0"`
}

// UpdateVoucherRequest is the DTO for updating voucher parameters.
// Claim and usage counters are never writable through the API.
type UpdateVoucherRequest struct {
	Code             *string    `json:"code" validate:"omitempty,notblank,max=64"`
	ReceiveStartTime *time.Time `json:"receive_start_time"`
	ReceiveEndTime   *time.Time `json:"receive_end_time"`
	ValidityDays     *int       `json:"validity_days" validate:"omitempty,gte=1"`
	MinimumPurchase  *float64   `json:"minimum_purchase" validate:"omitempty,gte=0"`
	DiscountAmount   *float64   `json:"discount_amount" validate:"omitempty,gte=0"`
	DiscountPercent  *float64   `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	MaxDiscount      *float64   `json:"max_discount" validate:"omitempty,gte=0"`
	Description      *string    `json:"description"`
	TotalQuantity    *int       `json:"total_quantity" validate:"omitempty,gte=0"`
	IsActive         *bool      `json:"is_active"`
}

// ClaimVoucherResponse is returned after a successful claim.
type ClaimVoucherResponse struct {
	Message   string    `json:"message"`
	Voucher   *Voucher  `json:"voucher"`
	ExpiresAt time.Time `json:"expires_at"`
}
