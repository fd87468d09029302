package dto

import (
	"time"

	"github.com/spec-kit/cook-api/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest payload for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is returned by login and refresh.
type LoginResponse struct {
	UserID        int64     `json:"userId"`
	AccessToken   string    `json:"accessToken"`
	RefreshToken  string    `json:"refreshToken"`
	AccessExpiry  time.Time `json:"accessExpiry"`
	RefreshExpiry time.Time `json:"refreshExpiry"`
}

// UserResponse is the public view of a principal.
type UserResponse struct {
	ID       int64       `json:"id"`
	Fullname string      `json:"fullname"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// NewLoginResponse maps a login result.
func NewLoginResponse(result *domain.LoginResult) LoginResponse {
	return LoginResponse{
		UserID:        result.UserID,
		AccessToken:   result.AccessToken,
		RefreshToken:  result.RefreshToken,
		AccessExpiry:  result.AccessExpiresAt,
		RefreshExpiry: result.RefreshExpiresAt,
	}
}

// NewUserResponse maps a user record; the password hash never leaves the service.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Fullname: user.Fullname,
		Username: user.Username,
		Role:     user.Role,
	}
}
