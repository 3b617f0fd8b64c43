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

// VoucherServiceInterface defines the interface for voucher business logic.
type VoucherServiceInterface interface {
	Create(ctx context.Context, req *model.CreateVoucherRequest) (*model.Voucher, error)
	Update(ctx context.Context, id string, req *model.UpdateVoucherRequest) (*model.Voucher, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Voucher, error)
	ListAvailable(ctx context.Context) ([]model.Voucher, error)
	GetByID(ctx context.Context, id string) (*model.Voucher, error)
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	Claim(ctx context.Context, userID, voucherID string) (*model.ClaimVoucherResponse, error)
	UserVouchers(ctx context.Context, userID string) ([]model.WalletVoucher, error)
}

// VoucherHandler handles HTTP requests for voucher operations.
type VoucherHandler struct {
	service   VoucherServiceInterface
	validator *validator.Validate
}

// NewVoucherHandler creates a new VoucherHandler with the given service and validator.
func NewVoucherHandler(svc VoucherServiceInterface, v *validator.Validate) *VoucherHandler {
	return &VoucherHandler{service: svc, validator: v}
}

// formatVoucherValidationError converts validator errors to stable messages.
func formatVoucherValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			if fe.Tag() == "required" {
				return "invalid request: " + field + " is required"
			}
			return "invalid request: " + field + " is invalid"
		}
	}
	return "invalid request"
}

// ListVouchers handles GET /api/vouchers requests.
func (h *VoucherHandler) ListVouchers(c *fiber.Ctx) error {
	vouchers, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list vouchers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(vouchers)
}

// ListAvailable handles GET /api/vouchers/available requests.
func (h *VoucherHandler) ListAvailable(c *fiber.Ctx) error {
	vouchers, err := h.service.ListAvailable(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list available vouchers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(vouchers)
}

// GetVoucher handles GET /api/vouchers/:id requests.
func (h *VoucherHandler) GetVoucher(c *fiber.Ctx) error {
	voucher, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		}
		log.Error().Err(err).Str("voucher_id", c.Params("id")).Msg("failed to get voucher")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(voucher)
}

// GetVoucherByCode handles GET /api/vouchers/code/:code requests.
func (h *VoucherHandler) GetVoucherByCode(c *fiber.Ctx) error {
	voucher, err := h.service.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		}
		log.Error().Err(err).Str("voucher_code", c.Params("code")).Msg("failed to get voucher by code")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(voucher)
}

// CreateVoucher handles POST /api/vouchers requests.
func (h *VoucherHandler) CreateVoucher(c *fiber.Ctx) error {
	var req model.CreateVoucherRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatVoucherValidationError(err)})
	}

	voucher, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrVoucherExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "voucher code already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("voucher_code", req.Code).Msg("failed to create voucher")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(voucher)
}

// UpdateVoucher handles PUT /api/vouchers/:id requests.
func (h *VoucherHandler) UpdateVoucher(c *fiber.Ctx) error {
	var req model.UpdateVoucherRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatVoucherValidationError(err)})
	}

	voucher, err := h.service.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		}
		if errors.Is(err, service.ErrVoucherExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "voucher code already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("voucher_id", c.Params("id")).Msg("failed to update voucher")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(voucher)
}

// DeleteVoucher handles DELETE /api/vouchers/:id requests.
func (h *VoucherHandler) DeleteVoucher(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		}
		log.Error().Err(err).Str("voucher_id", c.Params("id")).Msg("failed to delete voucher")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"message": "voucher deleted successfully"})
}

// ClaimVoucher handles POST /api/vouchers/:id/claim requests.
func (h *VoucherHandler) ClaimVoucher(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	resp, err := h.service.Claim(c.Context(), userID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user not found"})
		case errors.Is(err, service.ErrAlreadyClaimed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "you have already claimed this voucher"})
		case errors.Is(err, service.ErrVoucherInactive),
			errors.Is(err, service.ErrVoucherExhausted),
			errors.Is(err, service.ErrVoucherNotClaimable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", userID).
			Str("voucher_id", c.Params("id")).
			Msg("failed to claim voucher")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("user_id", userID).
		Str("voucher_code", resp.Voucher.Code).
		Msg("voucher claimed successfully")
	return c.JSON(resp)
}

// UserVouchers handles GET /api/vouchers/user requests: the caller's
// unused, still-valid wallet entries.
func (h *VoucherHandler) UserVouchers(c *fiber.Ctx) error {
	wallet, err := h.service.UserVouchers(c.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user not found"})
		}
		log.Error().Err(err).Msg("failed to list user vouchers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(wallet)
}
