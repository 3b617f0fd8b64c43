package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
	appvalidator "github.com/fairyhunter13/ecommerce-order-system/internal/validator"
)

// mockCartService is a mock implementation of CartServiceInterface.
type mockCartService struct {
	getFn        func(ctx context.Context, userID string) (*model.Cart, error)
	addFn        func(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error)
	updateItemFn func(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error)
	removeItemFn func(ctx context.Context, userID, ref string) (*model.Cart, error)
	clearFn      func(ctx context.Context, userID string) (*model.Cart, error)
}

func (m *mockCartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

func (m *mockCartService) Add(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, ref, quantity)
	}
	return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

func (m *mockCartService) UpdateItem(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error) {
	if m.updateItemFn != nil {
		return m.updateItemFn(ctx, userID, ref, quantity)
	}
	return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, ref string) (*model.Cart, error) {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, userID, ref)
	}
	return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

func (m *mockCartService) Clear(ctx context.Context, userID string) (*model.Cart, error) {
	if m.clearFn != nil {
		return m.clearFn(ctx, userID)
	}
	return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

func setupCartApp(mockSvc *mockCartService) *fiber.App {
	app := fiber.New()
	h := NewCartHandler(mockSvc, appvalidator.New())
	auth := asUser("user-1", model.RoleUser)
	app.Get("/api/cart", auth, h.GetCart)
	app.Post("/api/cart/add", auth, h.AddItem)
	app.Put("/api/cart/update", auth, h.UpdateItem)
	app.Delete("/api/cart/remove", auth, h.RemoveItem)
	app.Delete("/api/cart/clear", auth, h.ClearCart)
	return app
}

func TestGetCart_ReturnsCallerCart(t *testing.T) {
	mockSvc := &mockCartService{
		getFn: func(ctx context.Context, userID string) (*model.Cart, error) {
			assert.Equal(t, "user-1", userID)
			return &model.Cart{
				UserID: userID,
				Items:  []model.CartItem{{ProductID: "p-1", Title: "Mug", Quantity: 2, UnitPrice: 40}},
				Total:  80,
			}, nil
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cart model.Cart
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cart))
	assert.Equal(t, 80.0, cart.Total)
}

func TestAddCartItem_Success(t *testing.T) {
	var gotRef string
	var gotQty int
	mockSvc := &mockCartService{
		addFn: func(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error) {
			gotRef = ref
			gotQty = quantity
			return &model.Cart{UserID: userID}, nil
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/cart/add", `{"productId": "p-1", "quantity": 2}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "p-1", gotRef)
	assert.Equal(t, 2, gotQty)
}

func TestAddCartItem_NumericRef(t *testing.T) {
	var gotRef string
	mockSvc := &mockCartService{
		addFn: func(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error) {
			gotRef = ref
			return &model.Cart{UserID: userID}, nil
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/cart/add", `{"productId": 17, "quantity": 1}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "17", gotRef)
}

func TestAddCartItem_RejectsZeroQuantity(t *testing.T) {
	app := setupCartApp(&mockCartService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/cart/add", `{"productId": "p-1", "quantity": 0}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request: productId and a positive quantity are required", decodeError(t, resp))
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	mockSvc := &mockCartService{
		addFn: func(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error) {
			return nil, service.ErrProductNotFound
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/cart/add", `{"productId": "missing", "quantity": 1}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "product not found", decodeError(t, resp))
}

func TestUpdateCartItem_ZeroQuantityAccepted(t *testing.T) {
	var gotQty int
	mockSvc := &mockCartService{
		updateItemFn: func(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error) {
			gotQty = quantity
			return &model.Cart{UserID: userID}, nil
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/cart/update", `{"productId": "p-1", "quantity": 0}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, gotQty, "zero means remove the line, not a validation error")
}

func TestUpdateCartItem_MissingQuantity(t *testing.T) {
	app := setupCartApp(&mockCartService{})

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/cart/update", `{"productId": "p-1"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request: productId and quantity are required", decodeError(t, resp))
}

func TestRemoveCartItem_Success(t *testing.T) {
	var gotRef string
	mockSvc := &mockCartService{
		removeItemFn: func(ctx context.Context, userID, ref string) (*model.Cart, error) {
			gotRef = ref
			return &model.Cart{UserID: userID}, nil
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/cart/remove", `{"productId": "p-1"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "p-1", gotRef)
}

func TestClearCart_Success(t *testing.T) {
	cleared := false
	mockSvc := &mockCartService{
		clearFn: func(ctx context.Context, userID string) (*model.Cart, error) {
			cleared = true
			return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
		},
	}
	app := setupCartApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/cart/clear", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, cleared)
}
