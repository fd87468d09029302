package service

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/events"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("service-test-signing-key-0123456789"))

func newTokenService(t *testing.T, accessTTL time.Duration) *auth.TokenService {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret)
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}
	return auth.NewTokenService(codec, accessTTL, 24*time.Hour)
}

type authFixture struct {
	svc        *AuthService
	users      *repository.InMemoryUserRepository
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := repository.NewInMemoryUserRepository()
	tokens := newTokenService(t, 15*time.Minute)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewAuthService(AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		BcryptCost: bcrypt.MinCost,
	})
	return authFixture{svc: svc, users: users, tokens: tokens, dispatcher: dispatcher}
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, domainErr.Code, err)
	}
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func difficultyPtr(d domain.Difficulty) *domain.Difficulty {
	return &d
}
