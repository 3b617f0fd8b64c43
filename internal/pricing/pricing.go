// Package pricing computes order totals. It is a pure calculation layer:
// no clock, no storage, no side effects.
package pricing

import "github.com/fairyhunter13/ecommerce-order-system/internal/model"

// Quote is the priced outcome of a cart of line items with zero or more
// vouchers applied.
type Quote struct {
	OriginalTotal float64
	Discount      float64
	Total         float64
	Applied       []model.OrderVoucher
}

// OriginalTotal sums unit price times quantity over the line items.
func OriginalTotal(items []model.OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// Compute applies the vouchers, in the order given, against the original
// total. Stacking is additive: every voucher's minimum-purchase check and
// percentage base use the same original total, never a progressively
// discounted one. The final total is clamped at zero.
func Compute(items []model.OrderItem, vouchers []model.Voucher) Quote {
	q := Quote{
		OriginalTotal: OriginalTotal(items),
		Applied:       []model.OrderVoucher{},
	}

	for i := range vouchers {
		v := &vouchers[i]
		discount := v.CalculateDiscount(q.OriginalTotal)
		q.Discount += discount
		q.Applied = append(q.Applied, model.OrderVoucher{
			VoucherID: v.ID,
			Code:      v.Code,
			Discount:  discount,
		})
	}

	q.Total = q.OriginalTotal - q.Discount
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}
