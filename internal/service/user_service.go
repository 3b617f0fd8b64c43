package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/ecommerce-order-system/internal/auth"
	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
)

// UserService provides business logic for accounts: registration, login
// and the idempotent admin bootstrap.
type UserService struct {
	users  UserRepositoryInterface
	tokens *auth.TokenIssuer
}

// NewUserService creates a new UserService with the given repository and
// token issuer.
func NewUserService(users UserRepositoryInterface, tokens *auth.TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates a new account.
// Returns ErrEmailTaken if the email is already registered.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsVerified:   true,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues a bearer token.
// Returns ErrInvalidCredentials when email or password do not match.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: u.Summary()}, nil
}

// EnsureAdmin provisions the administrative account if it does not exist
// yet. Called once at startup; safe to call on every boot.
func (s *UserService) EnsureAdmin(ctx context.Context, email, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := s.users.EnsureAdmin(ctx, u); err != nil {
		return err
	}
	log.Info().Str("admin_email", u.Email).Msg("admin account ensured")
	return nil
}
