package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors returned by Verify. Both keep the underlying jwt error in
// their chain so errors.Is against the library sentinels still works.
var (
	ErrInvalid = errors.New("token invalid")
	ErrExpired = errors.New("token expired")
)

// Codec issues and verifies signed identity tokens. The signing secret and
// validity window are fixed at construction and never mutated.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// Claims is the payload carried by an identity token: the user id plus the
// registered issued-at/expiry timestamps.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured validity window.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for userID valid for the configured window.
func (c *Codec) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.secret)
	return s, exp, err
}

// Verify parses and validates a raw token. It returns ErrExpired when the
// validity window has passed and ErrInvalid for any signature or format
// problem.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
