package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// PrincipalLookup is the slice of the credential store the resolver needs.
type PrincipalLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthMiddleware resolves bearer tokens into request principals.
type AuthMiddleware struct {
	tokens *TokenService
	users  PrincipalLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenService, users PrincipalLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// ResolveCurrentPrincipal validates the Authorization header value as an
// access token and loads the caller. Every failure wraps ErrUnauthorized;
// an expired token additionally wraps ErrTokenExpired.
func (m *AuthMiddleware) ResolveCurrentPrincipal(ctx context.Context, authHeader string) (domain.AuthenticatedPrincipal, error) {
	if authHeader == "" {
		return domain.AuthenticatedPrincipal{}, fmt.Errorf("%w: missing authorization header", ErrUnauthorized)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return domain.AuthenticatedPrincipal{}, fmt.Errorf("%w: invalid authorization header", ErrUnauthorized)
	}

	claims, err := m.tokens.AccessClaims(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.AuthenticatedPrincipal{}, errors.Join(ErrUnauthorized, err)
	}

	user, err := m.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AuthenticatedPrincipal{}, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
		}
		return domain.AuthenticatedPrincipal{}, err
	}
	if user.ID != claims.UserID {
		return domain.AuthenticatedPrincipal{}, fmt.Errorf("%w: subject does not match user id", ErrUnauthorized)
	}

	return domain.AuthenticatedPrincipal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.ResolveCurrentPrincipal(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return unauthorizedError(err)
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func unauthorizedError(err error) error {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeTokenExpired, "token expired", http.StatusUnauthorized, err)
	case errors.Is(err, ErrUnauthorized):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "invalid or missing bearer token", http.StatusUnauthorized, err)
	default:
		return apperrors.NewInternalError(err)
	}
}

// PrincipalFromContext retrieves the principal stored by Handle.
func PrincipalFromContext(c *fiber.Ctx) (domain.AuthenticatedPrincipal, bool) {
	principal, ok := c.Locals(principalKey).(domain.AuthenticatedPrincipal)
	return principal, ok
}

// RequirePrincipal returns the principal or a 401 error for handlers mounted
// behind Handle.
func RequirePrincipal(c *fiber.Ctx) (domain.AuthenticatedPrincipal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return domain.AuthenticatedPrincipal{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
