package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/cook-api/internal/domain"
)

const minSecretBytes = 32

func init() {
	// Sub-second TTLs must survive the round trip through iat/exp.
	jwt.TimePrecision = time.Millisecond
}

// Claims is the complete payload of every token the service issues.
type Claims struct {
	Subject   string           `json:"sub"`
	UserID    int64            `json:"userId"`
	TokenType domain.TokenType `json:"tokenType"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return "", nil }
func (c *Claims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Validate checks that every claim is present and consistent. The jwt parser
// calls it after the signature has been verified.
func (c *Claims) Validate() error {
	switch {
	case c.Subject == "":
		return errors.New("missing sub claim")
	case c.UserID <= 0:
		return errors.New("missing userId claim")
	case !c.TokenType.Valid():
		return fmt.Errorf("unknown tokenType %q", c.TokenType)
	case c.IssuedAt == nil:
		return errors.New("missing iat claim")
	case c.ExpiresAt == nil:
		return errors.New("missing exp claim")
	case !c.ExpiresAt.After(c.IssuedAt.Time):
		return errors.New("exp must be after iat")
	}
	return nil
}

// UnmarshalJSON rejects claims the service never issues.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*c = Claims(p)
	// iat/exp travel as float seconds; snap them back onto the issuing grid.
	c.IssuedAt = roundNumericDate(c.IssuedAt)
	c.ExpiresAt = roundNumericDate(c.ExpiresAt)
	return nil
}

func roundNumericDate(d *jwt.NumericDate) *jwt.NumericDate {
	if d == nil {
		return nil
	}
	return jwt.NewNumericDate(d.Time.Round(jwt.TimePrecision))
}

// TokenCodec signs and verifies HS256 tokens with a single process-wide key.
type TokenCodec struct {
	key     []byte
	nowFunc func() time.Time
}

// NewTokenCodec derives the signing key from a base64 encoded secret.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(key) < minSecretBytes {
		return nil, ErrWeakSecret
	}
	return &TokenCodec{key: key, nowFunc: time.Now}, nil
}

func (c *TokenCodec) now() time.Time {
	return c.nowFunc()
}

// Encode stamps iat/exp onto claims and signs them.
func (c *TokenCodec) Encode(claims Claims, ttl time.Duration) (string, Claims, error) {
	if ttl <= 0 {
		return "", Claims{}, fmt.Errorf("encode token: non-positive ttl %s", ttl)
	}
	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if err := claims.Validate(); err != nil {
		return "", Claims{}, fmt.Errorf("encode token: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Decode verifies the signature, structure and expiry of token.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(token, claims, c.keyFunc); err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	return c.key, nil
}

// classify maps jwt errors onto the codec's taxonomy. Signature failures win
// over expiry because the parser verifies the signature first.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
