package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
	appvalidator "github.com/fairyhunter13/ecommerce-order-system/internal/validator"
)

// mockUserService is a mock implementation of UserServiceInterface.
type mockUserService struct {
	registerFn func(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	loginFn    func(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

func (m *mockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return &model.User{}, nil
}

func (m *mockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return &model.AuthResponse{}, nil
}

func setupAuthApp(mockSvc *mockUserService) *fiber.App {
	app := fiber.New()
	h := NewAuthHandler(mockSvc, appvalidator.New())
	app.Post("/api/auth/register", h.Register)
	app.Post("/api/auth/login", h.Login)
	return app
}

func TestRegister_Success(t *testing.T) {
	mockSvc := &mockUserService{
		registerFn: func(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Email:        req.Email,
				Username:     req.Username,
				PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
				Role:         model.RoleUser,
			}, nil
		},
	}
	app := setupAuthApp(mockSvc)

	body := `{"email": "jane@example.com", "username": "jane", "password": "hunter22"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", body))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "jane@example.com", result["email"])
	assert.Equal(t, "jane", result["username"])
	assert.NotContains(t, result, "password_hash", "the hash never reaches clients")
}

func TestRegister_ValidationMessages(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "missing_email",
			body:     `{"username": "jane", "password": "hunter22"}`,
			expected: "invalid request: email is required",
		},
		{
			name:     "malformed_email",
			body:     `{"email": "not-an-email", "username": "jane", "password": "hunter22"}`,
			expected: "invalid request: email is invalid",
		},
		{
			name:     "blank_username",
			body:     `{"email": "jane@example.com", "username": "   ", "password": "hunter22"}`,
			expected: "invalid request: username is required",
		},
		{
			name:     "short_password",
			body:     `{"email": "jane@example.com", "username": "jane", "password": "abc"}`,
			expected: "invalid request: password must be at least 6 characters",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := setupAuthApp(&mockUserService{})

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", tc.body))
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.expected, decodeError(t, resp))
		})
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	mockSvc := &mockUserService{
		registerFn: func(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
			return nil, service.ErrEmailTaken
		},
	}
	app := setupAuthApp(mockSvc)

	body := `{"email": "jane@example.com", "username": "jane", "password": "hunter22"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", body))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email has been used", decodeError(t, resp))
}

func TestLogin_Success(t *testing.T) {
	mockSvc := &mockUserService{
		loginFn: func(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
			return &model.AuthResponse{
				Token: "signed.jwt.token",
				User:  model.UserSummary{ID: "user-1", Email: req.Email, Username: "jane"},
			}, nil
		},
	}
	app := setupAuthApp(mockSvc)

	body := `{"email": "jane@example.com", "password": "hunter22"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", body))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result model.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "signed.jwt.token", result.Token)
	assert.Equal(t, "user-1", result.User.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockSvc := &mockUserService{
		loginFn: func(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
			return nil, service.ErrInvalidCredentials
		},
	}
	app := setupAuthApp(mockSvc)

	body := `{"email": "jane@example.com", "password": "wrong"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", body))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid email or password", decodeError(t, resp))
}

func TestLogin_MissingPassword(t *testing.T) {
	app := setupAuthApp(&mockUserService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", `{"email": "jane@example.com"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request: password is required", decodeError(t, resp))
}
