package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/events"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

var errInvalidCredentials = apperrors.NewDomainError(
	apperrors.CodeInvalidCredentials, "invalid username or password", http.StatusBadRequest, nil)

// AuthService coordinates registration, login and token refresh.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenService
	Dispatcher events.Dispatcher
	BcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// Register creates a USER principal and returns its id.
func (s *AuthService) Register(ctx context.Context, username, fullname, password string) (int64, error) {
	username = strings.TrimSpace(username)
	fullname = strings.TrimSpace(fullname)
	if err := validateRegistration(username, fullname, password); err != nil {
		return 0, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, usernameTaken(repository.ErrUsernameTaken)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return 0, err
	}

	user := &domain.User{
		Fullname:     fullname,
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrUsernameTaken) {
			return 0, usernameTaken(err)
		}
		return 0, err
	}

	s.publish(ctx, events.New(events.EventUserRegistered, actorOf(user), nil))
	return user.ID, nil
}

func validateRegistration(username, fullname, password string) error {
	details := map[string]any{}
	if username == "" {
		details["username"] = "username is required"
	}
	if n := utf8.RuneCountInString(fullname); n < 3 || n > 50 {
		details["fullname"] = "full name must be between 3 and 50 characters"
	}
	switch {
	case utf8.RuneCountInString(password) < 3:
		details["password"] = "password must be at least 3 characters"
	case len(password) > auth.MaxPasswordBytes:
		details["password"] = "password must be at most 72 bytes"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration request", details)
	}
	return nil
}

func usernameTaken(cause error) error {
	return apperrors.Wrap(apperrors.CodeUsernameTaken, "username is already in use", http.StatusBadRequest, cause)
}

// Login verifies credentials and issues a token pair. Unknown usernames and
// wrong passwords produce the same error and take the same time.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		auth.BurnPasswordCheck(password, s.bcryptCost)
		s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{Username: username}, nil))
		return nil, errInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{Username: username}, nil))
		return nil, errInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventUserLoggedIn, actorOf(user), nil))
	return &domain.LoginResult{UserID: user.ID, TokenPair: pair}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.LoginResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.NewValidationError("refreshToken is required", nil)
	}

	if err := s.tokens.ValidateRefreshToken(refreshToken); err != nil {
		if errors.Is(err, auth.ErrWrongTokenType) {
			return nil, apperrors.Wrap(apperrors.CodeWrongTokenType, "refresh token required", http.StatusBadRequest, err)
		}
		return nil, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid refresh token", http.StatusBadRequest, err)
	}

	username, err := s.tokens.ExtractUsername(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid refresh token", http.StatusBadRequest, err)
	}
	userID, err := s.tokens.ExtractUserID(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid refresh token", http.StatusBadRequest, err)
	}
	refreshExpiry, err := s.tokens.ExtractExpiry(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid refresh token", http.StatusBadRequest, err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(err)
		}
		return nil, err
	}
	// A username re-registered after deletion must not inherit old tokens.
	if user.ID != userID {
		return nil, userNotFound(repository.ErrNotFound)
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventTokenRefreshed, actorOf(user), nil))
	return &domain.LoginResult{
		UserID: user.ID,
		TokenPair: domain.TokenPair{
			AccessToken:      access.Token,
			RefreshToken:     refreshToken,
			AccessExpiresAt:  access.ExpiresAt,
			RefreshExpiresAt: refreshExpiry,
		},
	}, nil
}

// CurrentUser loads the full record for the resolved principal.
func (s *AuthService) CurrentUser(ctx context.Context, principal domain.AuthenticatedPrincipal) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(err)
		}
		return nil, err
	}
	return user, nil
}

func userNotFound(cause error) error {
	return apperrors.Wrap(apperrors.CodeUserNotFound, "user not found", http.StatusNotFound, cause)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Username: user.Username}
}
