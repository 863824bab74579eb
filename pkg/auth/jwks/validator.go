// Package jwks validates bearer tokens against the identity provider's
// published key set, fetched from the well-known JWKS endpoint and cached
// for a fixed TTL.
package jwks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

// Validator verifies token signatures against the cached key set and decodes
// the payload into typed claims. Expiry is enforced here, against the
// injected clock, and nowhere else; library claim validation is disabled so
// two clock sources cannot disagree.
type Validator struct {
	keys *KeySetCache
	now  func() time.Time
}

type validatorConfig struct {
	JwksURL            string `json:"jwksUrl"`
	CacheTTLSeconds    int    `json:"cacheTtlSeconds,omitempty"`
	HTTPTimeoutSeconds int    `json:"httpTimeoutSeconds,omitempty"`
}

// NewValidator creates a JWKS validator.
func NewValidator(cfg auth.Config) (*Validator, error) {
	if cfg.JwksURL == "" {
		return nil, errors.New("jwksUrl is required")
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Validator{
		keys: NewKeySetCache(cfg.JwksURL, cfg.CacheTTL, &http.Client{Timeout: timeout}),
		now:  time.Now,
	}, nil
}

// Validate verifies the token and returns its claims, or a typed *auth.Error.
func (v *Validator) Validate(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, auth.ErrMissingToken
	}

	ks, err := v.keys.Get(ctx)
	if err != nil {
		return nil, err
	}

	// Read the key identifier from the unverified header. A header that
	// cannot be parsed is indistinguishable from an unknown key.
	kid, err := peekKeyID(tokenString)
	if err != nil {
		return nil, auth.ErrKeyNotFound
	}
	key, ok := ks.Key(kid)
	if !ok {
		return nil, auth.ErrKeyNotFound
	}

	pub, err := key.RSAPublicKey()
	if err != nil {
		return nil, auth.ErrValidation
	}

	methods := []string{"RS256"}
	if key.Alg != "" {
		methods = []string{key.Alg}
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods(methods),
		jwt.WithoutClaimsValidation(),
	)

	claims := &auth.Claims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return pub, nil
	}); err != nil {
		return nil, auth.ErrInvalidToken
	}

	if err := claims.CheckRequired(); err != nil {
		return nil, auth.ErrValidation
	}
	if claims.ExpiresAt <= v.now().Unix() {
		return nil, auth.ErrTokenExpired
	}

	claims.Roles()
	return claims, nil
}

func peekKeyID(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", errors.New("token is not a compact JWS")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", err
	}
	var header struct {
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", err
	}
	if header.Kid == "" {
		return "", errors.New("missing kid in token header")
	}
	return header.Kid, nil
}

func init() {
	auth.RegisterProvider("jwks", func(raw json.RawMessage) (auth.Validator, error) {
		var cfg validatorConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		return NewValidator(auth.Config{
			JwksURL:     cfg.JwksURL,
			CacheTTL:    time.Duration(cfg.CacheTTLSeconds) * time.Second,
			HTTPTimeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		})
	})
}
