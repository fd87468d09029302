package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *TokenService, *repository.InMemoryUserRepository, *domain.User, *fakeClock) {
	t.Helper()
	tokens, clock := newTestTokenService(t)
	users := repository.NewInMemoryUserRepository()
	user := &domain.User{Username: "carol", Fullname: "Carol Cook", PasswordHash: "x", Role: domain.RoleUser}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return NewAuthMiddleware(tokens, users), tokens, users, user, clock
}

func TestResolveCurrentPrincipal(t *testing.T) {
	m, tokens, _, user, _ := newTestMiddleware(t)
	pair, err := tokens.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}

	principal, err := m.ResolveCurrentPrincipal(context.Background(), "Bearer "+pair.AccessToken)
	if err != nil {
		t.Fatalf("ResolveCurrentPrincipal() error: %v", err)
	}
	if principal.UserID != user.ID || principal.Username != "carol" || principal.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	for name, header := range map[string]string{
		"missing":       "",
		"no scheme":     pair.AccessToken,
		"basic scheme":  "Basic " + pair.AccessToken,
		"empty bearer":  "Bearer ",
		"refresh token": "Bearer " + pair.RefreshToken,
		"garbage":       "Bearer not-a-token",
	} {
		if _, err := m.ResolveCurrentPrincipal(context.Background(), header); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestResolveCurrentPrincipalExpired(t *testing.T) {
	m, tokens, _, user, clock := newTestMiddleware(t)
	access, err := tokens.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}
	clock.now = clock.now.Add(time.Hour)

	_, err = m.ResolveCurrentPrincipal(context.Background(), "Bearer "+access.Token)
	if !errors.Is(err, ErrUnauthorized) || !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrUnauthorized and ErrTokenExpired, got %v", err)
	}
}

func TestResolveCurrentPrincipalDeletedUser(t *testing.T) {
	m, tokens, users, user, _ := newTestMiddleware(t)
	access, err := tokens.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	if err := users.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := m.ResolveCurrentPrincipal(context.Background(), "Bearer "+access.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("deleted user: expected ErrUnauthorized, got %v", err)
	}

	// Same username, new id: the old token must not resolve.
	again := &domain.User{Username: user.Username, Fullname: user.Fullname, PasswordHash: "x", Role: domain.RoleUser}
	if err := users.Create(context.Background(), again); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := m.ResolveCurrentPrincipal(context.Background(), "Bearer "+access.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("re-registered user: expected ErrUnauthorized, got %v", err)
	}
}

func TestHandle(t *testing.T) {
	m, tokens, _, user, clock := newTestMiddleware(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	app.Get("/me", m.Handle, func(c *fiber.Ctx) error {
		principal, err := RequirePrincipal(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"username": principal.Username})
	})
	app.Get("/open", func(c *fiber.Ctx) error {
		_, err := RequirePrincipal(c)
		return err
	})

	access, err := tokens.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	do := func(path, header string) int {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test() error: %v", err)
		}
		return resp.StatusCode
	}

	if status := do("/me", "Bearer "+access.Token); status != fiber.StatusOK {
		t.Fatalf("valid token: status %d", status)
	}
	if status := do("/me", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("missing token: status %d", status)
	}
	if status := do("/open", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("no principal: status %d", status)
	}

	clock.now = clock.now.Add(time.Hour)
	if status := do("/me", "Bearer "+access.Token); status != fiber.StatusUnauthorized {
		t.Fatalf("expired token: status %d", status)
	}
}
