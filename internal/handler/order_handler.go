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

// OrderServiceInterface defines the interface for order business logic.
type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, userID string, req *model.PlaceOrderRequest) (*model.OrderResponse, error)
	GetOrder(ctx context.Context, seqID, callerID string, isAdmin bool) (*model.OrderResponse, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListUserOrders(ctx context.Context, userID, callerID string, isAdmin bool) ([]model.Order, error)
	UpdateStatus(ctx context.Context, seqID, status string) (*model.Order, error)
	DeleteOrder(ctx context.Context, seqID string) error
}

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service   OrderServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given service and validator.
func NewOrderHandler(svc OrderServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// formatOrderValidationError converts validator errors to stable messages
// naming the first violated field.
func formatOrderValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Field() {
			case "Items":
				return "invalid request: items are required"
			case "ProductID":
				return "invalid request: every item needs a product id"
			case "Quantity":
				return "invalid request: quantity must be greater than zero"
			case "ReceiverName":
				return "invalid request: receiver name is required"
			case "ReceiverPhone":
				if fe.Tag() == "required" {
					return "invalid request: receiver phone is required"
				}
				return "invalid request: receiver phone must be 9-11 digits"
			default:
				return "invalid request: " + fe.Field() + " is invalid"
			}
		}
	}
	return "invalid request"
}

// isPlacementRejection reports whether err is a rejected-request outcome
// of order placement rather than an infrastructure failure.
func isPlacementRejection(err error) bool {
	for _, target := range []error{
		service.ErrInvalidRequest,
		service.ErrReceiverInvalid,
		service.ErrItemsRequired,
		service.ErrInvalidQuantity,
		service.ErrProductNotFound,
		service.ErrInsufficientStock,
		service.ErrVoucherNotOwned,
		service.ErrVoucherExpired,
		service.ErrBelowMinimum,
		service.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CreateOrder handles POST /api/orders requests to place an order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req model.PlaceOrderRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatOrderValidationError(err)})
	}

	userID := middleware.UserID(c)
	order, err := h.service.PlaceOrder(c.Context(), userID, &req)
	if err != nil {
		if isPlacementRejection(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", userID).
			Msg("failed to place order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// ListOrders handles GET /api/orders requests.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(orders)
}

// GetOrder handles GET /api/orders/:id requests.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Context(), c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		log.Error().Err(err).Str("order_id", c.Params("id")).Msg("failed to get order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(order)
}

// ListUserOrders handles GET /api/orders/user/:userId requests.
func (h *OrderHandler) ListUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(c.Context(), c.Params("userId"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		log.Error().Err(err).Str("user_id", c.Params("userId")).Msg("failed to list user orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(orders)
}

// UpdateOrder handles PUT /api/orders/:id requests. Only the status can
// change after creation.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	var req model.UpdateOrderStatusRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: status is required"})
	}

	order, err := h.service.UpdateStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order not found"})
		}
		if errors.Is(err, service.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("order_id", c.Params("id")).Msg("failed to update order status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(order)
}

// DeleteOrder handles DELETE /api/orders/:id requests. Stock is restored
// for non-cancelled orders before the record is removed.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order not found"})
		}
		log.Error().Err(err).Str("order_id", c.Params("id")).Msg("failed to delete order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"message": "order deleted successfully"})
}
