package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/cook-api/internal/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// IssuedToken is a signed token together with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService issues access/refresh pairs and classifies inbound tokens.
// The tokenType claim is the only thing that separates the two kinds, so every
// entry point that accepts one kind checks it explicitly.
type TokenService struct {
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a service; zero TTLs fall back to 15m / 7d.
func NewTokenService(codec *TokenCodec, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GenerateAccessToken issues a short-lived ACCESS token for user.
func (s *TokenService) GenerateAccessToken(user *domain.User) (IssuedToken, error) {
	return s.generate(user, domain.TokenTypeAccess, s.accessTTL)
}

// GenerateRefreshToken issues a long-lived REFRESH token for user.
func (s *TokenService) GenerateRefreshToken(user *domain.User) (IssuedToken, error) {
	return s.generate(user, domain.TokenTypeRefresh, s.refreshTTL)
}

// GenerateTokenPair issues both tokens.
func (s *TokenService) GenerateTokenPair(user *domain.User) (domain.TokenPair, error) {
	access, err := s.GenerateAccessToken(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.GenerateRefreshToken(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *TokenService) generate(user *domain.User, tokenType domain.TokenType, ttl time.Duration) (IssuedToken, error) {
	if user == nil {
		return IssuedToken{}, errors.New("generate token: nil user")
	}
	signed, claims, err := s.codec.Encode(Claims{
		Subject:   user.Username,
		UserID:    user.ID,
		TokenType: tokenType,
	}, ttl)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ValidateAccessToken reports whether token is a live ACCESS token for
// expectedUsername. Only expiry is reported as an error; every other failure
// is a plain false.
func (s *TokenService) ValidateAccessToken(token, expectedUsername string) (bool, error) {
	claims, err := s.AccessClaims(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return false, ErrTokenExpired
		}
		return false, nil
	}
	return claims.Subject == expectedUsername, nil
}

// ValidateRefreshToken returns nil only for a decodable REFRESH token.
func (s *TokenService) ValidateRefreshToken(token string) error {
	_, err := s.claimsOfType(token, domain.TokenTypeRefresh)
	return err
}

// AccessClaims decodes token and requires it to be an ACCESS token.
func (s *TokenService) AccessClaims(token string) (*Claims, error) {
	return s.claimsOfType(token, domain.TokenTypeAccess)
}

func (s *TokenService) claimsOfType(token string, want domain.TokenType) (*Claims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrWrongTokenType, want, claims.TokenType)
	}
	return claims, nil
}

// ExtractUsername returns the subject of a valid token of either type.
func (s *TokenService) ExtractUsername(token string) (string, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractUserID returns the userId claim of a valid token of either type.
func (s *TokenService) ExtractUserID(token string) (int64, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ExtractExpiry returns the exp claim of a valid token of either type.
func (s *TokenService) ExtractExpiry(token string) (time.Time, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}
