package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/ecommerce-order-system/internal/middleware"
	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
)

// CartServiceInterface defines the interface for cart business logic.
type CartServiceInterface interface {
	Get(ctx context.Context, userID string) (*model.Cart, error)
	Add(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error)
	UpdateItem(ctx context.Context, userID, ref string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, ref string) (*model.Cart, error)
	Clear(ctx context.Context, userID string) (*model.Cart, error)
}

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

func (h *CartHandler) respond(c *fiber.Ctx, cart *model.Cart, err error) error {
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product not found"})
		}
		if errors.Is(err, service.ErrInvalidQuantity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid quantity"})
		}
		log.Error().Err(err).Str("user_id", middleware.UserID(c)).Msg("cart operation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(cart)
}

// GetCart handles GET /api/cart requests.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.service.Get(c.Context(), middleware.UserID(c))
	return h.respond(c, cart, err)
}

// AddItem handles POST /api/cart/add requests.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req model.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: productId and a positive quantity are required"})
	}
	cart, err := h.service.Add(c.Context(), middleware.UserID(c), string(req.ProductID), req.Quantity)
	return h.respond(c, cart, err)
}

// UpdateItem handles PUT /api/cart/update requests.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var req model.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil || req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: productId and quantity are required"})
	}
	cart, err := h.service.UpdateItem(c.Context(), middleware.UserID(c), string(req.ProductID), *req.Quantity)
	return h.respond(c, cart, err)
}

// RemoveItem handles DELETE /api/cart/remove requests.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	var req model.RemoveCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: productId is required"})
	}
	cart, err := h.service.RemoveItem(c.Context(), middleware.UserID(c), string(req.ProductID))
	return h.respond(c, cart, err)
}

// ClearCart handles DELETE /api/cart/clear requests.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	cart, err := h.service.Clear(c.Context(), middleware.UserID(c))
	return h.respond(c, cart, err)
}
