package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Codec signs and verifies compact HS256 tokens over flat string-keyed
// claims. The signing secret is fixed at construction; every encoded token
// carries iat and exp with the codec's TTL.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode stamps iat/exp over the payload and signs it. Returns the compact
// token and its issued-at timestamp in unix seconds.
func (c *Codec) Encode(payload map[string]any) (string, int64, error) {
	const op = "jwt.Encode"

	issued := time.Now().Unix()

	claims := jwt.MapClaims{
		"iat": issued,
		"exp": issued + int64(c.ttl.Seconds()),
	}
	for k, v := range payload {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	return signed, issued, nil
}

// Decode verifies signature and expiry and returns the claims. Malformed,
// tampered and expired tokens are all reported as ErrInvalidToken; the
// caller cannot tell them apart.
func (c *Codec) Decode(tokenStr string) (map[string]any, error) {
	const op = "jwt.Decode"

	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}
