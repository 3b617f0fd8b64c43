package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/pricing"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

const (
	defaultPaymentMethod = "cod"

	// Bounded retries when a concurrently allocated sequence id collides.
	seqAllocAttempts = 3
)

var phonePattern = regexp.MustCompile(`^[0-9]{9,11}$`)

// OrderService orchestrates order placement and owns the order ledger.
//
// Placement is a multi-document sequence without a cross-document
// transaction: order insert, per-product stock reservation, voucher
// wallet/usage mutation, cart cleanup. Every committed step registers a
// compensating action; if a later step fails the compensations run in
// reverse so no stock or voucher is silently lost. Cart cleanup is the
// one best-effort step and runs last.
type OrderService struct {
	db       database.TxQuerier
	orders   OrderRepositoryInterface
	products ProductRepositoryInterface
	vouchers VoucherRepositoryInterface
	wallet   WalletRepositoryInterface
	users    UserRepositoryInterface
	carts    CartRepositoryInterface
	now      func() time.Time
}

// NewOrderService creates a new OrderService with the given pool and repositories.
func NewOrderService(pool *pgxpool.Pool, orders OrderRepositoryInterface, products ProductRepositoryInterface,
	vouchers VoucherRepositoryInterface, wallet WalletRepositoryInterface,
	users UserRepositoryInterface, carts CartRepositoryInterface) *OrderService {
	return &OrderService{
		db:       pool,
		orders:   orders,
		products: products,
		vouchers: vouchers,
		wallet:   wallet,
		users:    users,
		carts:    carts,
		now:      time.Now,
	}
}

// NewOrderServiceWithQuerier creates an OrderService with a custom querier
// and clock. Primarily used for testing.
func NewOrderServiceWithQuerier(db database.TxQuerier, orders OrderRepositoryInterface, products ProductRepositoryInterface,
	vouchers VoucherRepositoryInterface, wallet WalletRepositoryInterface,
	users UserRepositoryInterface, carts CartRepositoryInterface, now func() time.Time) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		db:       db,
		orders:   orders,
		products: products,
		vouchers: vouchers,
		wallet:   wallet,
		users:    users,
		carts:    carts,
		now:      now,
	}
}

// voucherSelection is a wallet entry chosen for an order, resolved before
// any side effect is committed.
type voucherSelection struct {
	entryID int64
	voucher model.Voucher
}

// PlaceOrder validates the request against live inventory and the
// account's voucher wallet, computes the final charge, persists the
// immutable order record and commits the dependent mutations.
//
// Validation failures return one of the rejected-request sentinels
// (ErrReceiverInvalid, ErrItemsRequired, ErrInvalidQuantity,
// ErrProductNotFound, ErrInsufficientStock, ErrVoucherNotOwned,
// ErrVoucherExpired, ErrBelowMinimum, ErrUserNotFound), each wrapped
// with a message naming the first violation.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req *model.PlaceOrderRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	// 1. Receiver fields
	receiverName := strings.TrimSpace(req.ReceiverName)
	receiverPhone := stripSpaces(req.ReceiverPhone)
	if receiverName == "" || receiverPhone == "" {
		return nil, ErrReceiverInvalid
	}
	if !phonePattern.MatchString(receiverPhone) {
		return nil, fmt.Errorf("%w: phone must be 9-11 digits", ErrReceiverInvalid)
	}
	if len(req.Items) == 0 {
		return nil, ErrItemsRequired
	}

	// 2. Resolve the account
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// 3. Resolve products, snapshot line items, accumulate the original total
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w for product %s", ErrInvalidQuantity, line.ProductID)
		}
		ref := strings.TrimSpace(string(line.ProductID))
		if ref == "" {
			return nil, fmt.Errorf("%w: empty product reference", ErrProductNotFound)
		}
		p, err := s.products.FindByRef(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", ref, err)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, ref)
		}
		if p.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s has %d left, requested %d",
				ErrInsufficientStock, p.Title, p.Stock, line.Quantity)
		}
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		})
	}
	originalTotal := pricing.OriginalTotal(items)

	// 4. Validate requested vouchers against the wallet and the
	// pre-discount total. Any failure rejects the whole order.
	selections, err := s.selectVouchers(ctx, userID, req.VoucherCodes, originalTotal)
	if err != nil {
		return nil, err
	}

	selected := make([]model.Voucher, len(selections))
	for i, sel := range selections {
		selected[i] = sel.voucher
	}
	quote := pricing.Compute(items, selected)

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	order := &model.Order{
		UserID:          userID,
		ReceiverName:    receiverName,
		ReceiverPhone:   receiverPhone,
		Items:           items,
		AppliedVouchers: quote.Applied,
		OriginalTotal:   quote.OriginalTotal,
		Discount:        quote.Discount,
		Total:           quote.Total,
		Status:          model.StatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   paymentMethod,
		Note:            req.Note,
		CreatedAt:       s.now(),
	}

	// 5. Allocate the sequence id and persist the immutable record.
	// Collisions with concurrent placements retry with a fresh id.
	if err := s.insertWithSequenceID(ctx, order); err != nil {
		return nil, err
	}

	// Committed steps register compensations, run in reverse on failure.
	var undos []func(context.Context)
	fail := func(cause error) (*model.OrderResponse, error) {
		log.Warn().
			Err(cause).
			Str("order_id", order.SeqID).
			Msg("order placement failed mid-sequence, compensating committed steps")
		for i := len(undos) - 1; i >= 0; i-- {
			undos[i](ctx)
		}
		return nil, cause
	}
	undos = append(undos, func(ctx context.Context) {
		if err := s.orders.Delete(ctx, order.SeqID); err != nil {
			log.Error().Err(err).Str("order_id", order.SeqID).Msg("compensation: delete order failed")
		}
	})

	// 6. Reserve stock per product, each an atomic conditional decrement.
	for _, it := range items {
		it := it
		if err := s.products.Reserve(ctx, s.db, it.ProductID, it.Quantity); err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				err = fmt.Errorf("%w: %s has fewer than %d left", ErrInsufficientStock, it.Title, it.Quantity)
			}
			return fail(err)
		}
		undos = append(undos, func(ctx context.Context) {
			if err := s.products.Release(ctx, s.db, it.ProductID, it.Quantity); err != nil {
				log.Error().Err(err).Str("product_id", it.ProductID).Msg("compensation: release stock failed")
			}
		})
	}

	// 7. Spend the wallet entries and bump voucher usage counters.
	for _, sel := range selections {
		sel := sel
		if err := s.wallet.MarkUsed(ctx, s.db, sel.entryID); err != nil {
			if errors.Is(err, ErrVoucherNotOwned) {
				err = fmt.Errorf("%w: %s", ErrVoucherNotOwned, sel.voucher.Code)
			}
			return fail(err)
		}
		undos = append(undos, func(ctx context.Context) {
			if err := s.wallet.MarkUnused(ctx, s.db, sel.entryID); err != nil {
				log.Error().Err(err).Int64("wallet_entry", sel.entryID).Msg("compensation: unmark wallet entry failed")
			}
		})

		if err := s.vouchers.IncrementUsed(ctx, s.db, sel.voucher.ID); err != nil {
			return fail(fmt.Errorf("increment voucher usage: %w", err))
		}
		undos = append(undos, func(ctx context.Context) {
			if err := s.vouchers.DecrementUsed(ctx, s.db, sel.voucher.ID); err != nil {
				log.Error().Err(err).Str("voucher_id", sel.voucher.ID).Msg("compensation: decrement voucher usage failed")
			}
		})
	}

	// 8. Drop the purchased lines from the cart. Best effort: the order
	// stands even if this fails.
	productIDs := make([]string, len(items))
	for i, it := range items {
		productIDs[i] = it.ProductID
	}
	if err := s.carts.RemoveMany(ctx, s.db, userID, productIDs); err != nil {
		log.Warn().Err(err).Str("order_id", order.SeqID).Msg("failed to clear purchased cart lines")
	}

	log.Info().
		Str("order_id", order.SeqID).
		Str("user_id", userID).
		Float64("total", order.Total).
		Int("items", len(order.Items)).
		Int("vouchers", len(order.AppliedVouchers)).
		Msg("order placed")

	summary := user.Summary()
	return &model.OrderResponse{Order: *order, User: &summary}, nil
}

// selectVouchers maps requested codes to unused wallet entries and
// validates each against the pre-discount total. The first failing code
// determines the returned error.
func (s *OrderService) selectVouchers(ctx context.Context, userID string, codes []string, originalTotal float64) ([]voucherSelection, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	wallet, err := s.wallet.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	now := s.now()
	taken := map[int64]bool{}
	selections := make([]voucherSelection, 0, len(codes))
	for _, raw := range codes {
		code := NormalizeCode(raw)
		if code == "" {
			return nil, fmt.Errorf("%w: empty voucher code", ErrVoucherNotOwned)
		}

		var match *model.WalletVoucher
		for i := range wallet {
			wv := &wallet[i]
			if wv.Voucher.Code == code && !wv.Entry.IsUsed && !taken[wv.Entry.ID] {
				match = wv
				break
			}
		}
		if match == nil {
			return nil, fmt.Errorf("%w: %s", ErrVoucherNotOwned, code)
		}
		if !match.Voucher.IsValid(now, match.Entry.ClaimedAt) {
			return nil, fmt.Errorf("%w: %s", ErrVoucherExpired, code)
		}
		if originalTotal < match.Voucher.MinimumPurchase {
			return nil, fmt.Errorf("voucher %s %w of %.2f", code, ErrBelowMinimum, match.Voucher.MinimumPurchase)
		}

		taken[match.Entry.ID] = true
		selections = append(selections, voucherSelection{
			entryID: match.Entry.ID,
			voucher: match.Voucher,
		})
	}
	return selections, nil
}

// insertWithSequenceID allocates a sequence id and inserts the order,
// retrying on id collisions with concurrent placements.
func (s *OrderService) insertWithSequenceID(ctx context.Context, order *model.Order) error {
	var err error
	for attempt := 0; attempt < seqAllocAttempts; attempt++ {
		order.SeqID, err = s.orders.NextSequenceID(ctx)
		if err != nil {
			return fmt.Errorf("allocate order id: %w", err)
		}
		err = s.orders.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSequenceConflict) {
			return fmt.Errorf("insert order: %w", err)
		}
	}
	return fmt.Errorf("insert order after %d attempts: %w", seqAllocAttempts, err)
}

// GetOrder retrieves an order. Non-admin callers may only read their own.
func (s *OrderService) GetOrder(ctx context.Context, seqID, callerID string, isAdmin bool) (*model.OrderResponse, error) {
	o, err := s.orders.GetBySeqID(ctx, seqID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && o.UserID != callerID {
		return nil, ErrForbidden
	}

	resp := &model.OrderResponse{Order: *o}
	if user, err := s.users.GetByID(ctx, o.UserID); err == nil && user != nil {
		summary := user.Summary()
		resp.User = &summary
	}
	return resp, nil
}

// ListOrders retrieves all orders.
func (s *OrderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

// ListUserOrders retrieves an account's orders. Non-admin callers may
// only read their own.
func (s *OrderService) ListUserOrders(ctx context.Context, userID, callerID string, isAdmin bool) ([]model.Order, error) {
	if !isAdmin && userID != callerID {
		return nil, ErrForbidden
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus changes an order's status, the only permitted
// post-creation mutation.
// Returns ErrInvalidStatus for a status outside the enumerated set and
// ErrOrderNotFound if the order doesn't exist.
func (s *OrderService) UpdateStatus(ctx context.Context, seqID, status string) (*model.Order, error) {
	st := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.orders.UpdateStatus(ctx, seqID, st); err != nil {
		return nil, err
	}
	o, err := s.orders.GetBySeqID(ctx, seqID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// DeleteOrder removes an order. Unless the order was already cancelled,
// stock for every line item is restored first; restoration is best
// effort and never blocks the delete.
func (s *OrderService) DeleteOrder(ctx context.Context, seqID string) error {
	o, err := s.orders.GetBySeqID(ctx, seqID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return ErrOrderNotFound
	}

	if o.Status != model.StatusCancelled {
		for _, it := range o.Items {
			if err := s.products.Release(ctx, s.db, it.ProductID, it.Quantity); err != nil {
				log.Error().
					Err(err).
					Str("order_id", seqID).
					Str("product_id", it.ProductID).
					Msg("failed to restore stock on order delete")
			}
		}
	}

	return s.orders.Delete(ctx, seqID)
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
