// Package token signs and verifies the self-contained session tokens issued
// on signup and login. A token embeds the identity claim and the bcrypt hash
// of the password at issuance time, so verification never needs a second
// repository read to compare credentials.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the expiry claim has elapsed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload embedded in a session token.
type Claims struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies session tokens with a single HMAC-SHA256 secret.
// Verification is stateless: the signature and expiry are checked against the
// token itself, nothing else.
type Codec struct {
	secret  []byte
	ttl     time.Duration
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// NewCodec creates a Codec for the given signing secret and token lifetime.
func NewCodec(secret []byte, ttl time.Duration, options ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewCodec] signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewCodec] token ttl must be positive")
	}

	codec := &Codec{
		secret:  secret,
		ttl:     ttl,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(codec)
	}

	return codec, nil
}

// Sign issues a new token for the username and password hash with a fresh
// expiry window. Each token carries a unique jti, so two tokens signed for
// the same claim never compare equal.
func (c *Codec) Sign(username, passwordHash string) (string, error) {
	now := c.nowTime()
	claims := Claims{
		Username:     username,
		PasswordHash: passwordHash,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.New().String(),
		},
	}

	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the token's signature and expiry and returns the embedded
// claims. Malformed structure or a signature mismatch yields ErrInvalidToken;
// an elapsed expiry yields ErrTokenExpired. No other detail is exposed.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwtlib.ParseWithClaims(tokenString, claims,
		func(t *jwtlib.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return c.nowTime() }),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
