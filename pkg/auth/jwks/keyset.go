package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/OpreaAngel-Freelance/oil/internal/metrics"
	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

// DefaultCacheTTL bounds key-set staleness. Provider key rotation is rare
// and the endpoint is rate-limited, so one hour is the accepted trade-off.
const DefaultCacheTTL = time.Hour

// JWK is a single public signing key from the provider's key-set document.
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// RSAPublicKey builds the verification key from the JWK's modulus and
// exponent (base64url, unpadded).
func (k JWK) RSAPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// KeySet is one fetched key-set document.
type KeySet struct {
	Keys []JWK `json:"keys"`
}

// Key returns the RSA key with the given key identifier.
func (ks *KeySet) Key(kid string) (JWK, bool) {
	for _, k := range ks.Keys {
		if k.Kid == kid && k.Kty == "RSA" {
			return k, true
		}
	}
	return JWK{}, false
}

// KeySetCache holds a single process-wide key set, refreshed lazily when
// older than the TTL. The mutex is held across the refresh, so concurrent
// callers that observe a stale cache wait for one in-flight fetch instead of
// issuing duplicates. A failed refresh keeps the previous cache, even if
// stale; only the very first fetch can fail the caller.
type KeySetCache struct {
	url    string
	ttl    time.Duration
	client *http.Client
	now    func() time.Time

	mu        sync.Mutex
	cached    *KeySet
	fetchedAt time.Time
}

func NewKeySetCache(url string, ttl time.Duration, client *http.Client) *KeySetCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeySetCache{
		url:    url,
		ttl:    ttl,
		client: client,
		now:    time.Now,
	}
}

// Get returns the cached key set when fetched less than TTL ago, otherwise
// refreshes it. A set fetched at T is fresh on [T, T+TTL) and stale at T+TTL.
func (c *KeySetCache) Get(ctx context.Context) (*KeySet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}

	ks, err := c.fetch(ctx)
	if err != nil {
		if c.cached != nil {
			// Serve the stale set; a transient provider outage must not
			// break validation that worked a moment ago.
			metrics.JWKSFetchesTotal.WithLabelValues("stale").Inc()
			return c.cached, nil
		}
		metrics.JWKSFetchesTotal.WithLabelValues("error").Inc()
		return nil, auth.ErrKeySetUnavailable
	}

	metrics.JWKSFetchesTotal.WithLabelValues("success").Inc()
	c.cached = ks
	c.fetchedAt = c.now()
	return ks, nil
}

func (c *KeySetCache) fetch(ctx context.Context) (*KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var ks KeySet
	if err := json.Unmarshal(body, &ks); err != nil {
		return nil, fmt.Errorf("parse jwks document: %w", err)
	}
	return &ks, nil
}
