package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
)

// CartService provides business logic for per-account carts.
type CartService struct {
	carts    CartRepositoryInterface
	products ProductRepositoryInterface
}

// NewCartService creates a new CartService with the given repositories.
func NewCartService(carts CartRepositoryInterface, products ProductRepositoryInterface) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get retrieves the account's cart. An account with no lines gets an
// empty cart, not an error.
func (s *CartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	items, err := s.carts.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return buildCart(userID, items), nil
}

// Add puts a product into the cart, snapshotting its current unit price.
// Adding a product already in the cart accumulates the quantity.
// Returns ErrProductNotFound if the reference doesn't resolve.
func (s *CartService) Add(ctx context.Context, userID string, ref string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w for product %s", ErrInvalidQuantity, ref)
	}
	p, err := s.resolveProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Add(ctx, userID, p.ID, quantity, p.Price); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateItem overwrites a cart line quantity. A quantity of zero or less
// removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID string, ref string, quantity int) (*model.Cart, error) {
	p, err := s.resolveProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		if err := s.carts.Remove(ctx, userID, p.ID); err != nil {
			return nil, err
		}
	} else if err := s.carts.SetQuantity(ctx, userID, p.ID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID string, ref string) (*model.Cart, error) {
	p, err := s.resolveProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Remove(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Clear empties the account's cart.
func (s *CartService) Clear(ctx context.Context, userID string) (*model.Cart, error) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return buildCart(userID, []model.CartItem{}), nil
}

func (s *CartService) resolveProduct(ctx context.Context, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)
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
	return p, nil
}

func buildCart(userID string, items []model.CartItem) *model.Cart {
	cart := &model.Cart{UserID: userID, Items: items}
	for _, it := range items {
		cart.Total += it.UnitPrice * float64(it.Quantity)
	}
	return cart
}
