package model

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account. The password hash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Address      string    `json:"address,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// UserSummary is the compact account shape attached to order responses.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Summary returns the compact shape of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Username: u.Username}
}

// RegisterRequest is the DTO for account registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the DTO for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the bearer token issued on login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
