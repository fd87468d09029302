package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cook-api/internal/api/dto"
	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/service"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

// AuthHandler exposes registration, login, refresh and current-user endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.auth.Register(c.UserContext(), req.Username, req.Fullname, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User registered successfully"})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLoginResponse(result))
}

// Refresh handles POST /api/auth/refresh-token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLoginResponse(result))
}

// Me handles GET /api/auth.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.auth.CurrentUser(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}
