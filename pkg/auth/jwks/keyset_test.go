package jwks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

func newKeySetServer(t *testing.T, fetches *atomic.Int64, status *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		if code := status.Load(); code != 0 && code != http.StatusOK {
			w.WriteHeader(int(code))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]any{
				{"kty": "RSA", "kid": "key-1", "n": "AQAB", "e": "AQAB"},
			},
		})
	}))
}

func TestKeySetCacheIdempotentWithinTTL(t *testing.T) {
	var fetches, status atomic.Int64
	srv := newKeySetServer(t, &fetches, &status)
	defer srv.Close()

	cache := NewKeySetCache(srv.URL, time.Hour, srv.Client())

	first, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first != second {
		t.Error("expected the same cached KeySet instance within the TTL")
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", n)
	}
}

func TestKeySetCacheStaleAtTTLBoundary(t *testing.T) {
	var fetches, status atomic.Int64
	srv := newKeySetServer(t, &fetches, &status)
	defer srv.Close()

	cache := NewKeySetCache(srv.URL, time.Hour, srv.Client())
	base := time.Unix(1700000000, 0)
	now := base
	cache.now = func() time.Time { return now }

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("initial get: %v", err)
	}

	// One second before the TTL the cache is still fresh.
	now = base.Add(time.Hour - time.Second)
	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("get before boundary: %v", err)
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("expected no refetch before the boundary, got %d fetches", n)
	}

	// At exactly T+TTL the cache is stale.
	now = base.Add(time.Hour)
	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("get at boundary: %v", err)
	}
	if n := fetches.Load(); n != 2 {
		t.Errorf("expected a refetch at the boundary, got %d fetches", n)
	}
}

func TestKeySetCacheFirstFetchFailure(t *testing.T) {
	var fetches, status atomic.Int64
	status.Store(http.StatusInternalServerError)
	srv := newKeySetServer(t, &fetches, &status)
	defer srv.Close()

	cache := NewKeySetCache(srv.URL, time.Hour, srv.Client())

	_, err := cache.Get(context.Background())
	if err == nil {
		t.Fatal("expected error when the first fetch fails")
	}
	var authErr *auth.Error
	if !errors.As(err, &authErr) || authErr.Kind != auth.KindUnavailable {
		t.Errorf("expected unavailable-kind auth error, got %v", err)
	}
}

func TestKeySetCacheKeepsStaleOnRefreshFailure(t *testing.T) {
	var fetches, status atomic.Int64
	srv := newKeySetServer(t, &fetches, &status)
	defer srv.Close()

	cache := NewKeySetCache(srv.URL, time.Hour, srv.Client())
	base := time.Unix(1700000000, 0)
	now := base
	cache.now = func() time.Time { return now }

	first, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("initial get: %v", err)
	}

	// Make the cache stale and the endpoint unhealthy.
	now = base.Add(2 * time.Hour)
	status.Store(http.StatusServiceUnavailable)

	got, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("expected the stale set to be served, got error: %v", err)
	}
	if got != first {
		t.Error("expected the previous KeySet to survive the failed refresh")
	}
}

func TestJWKRSAPublicKey(t *testing.T) {
	n := base64.RawURLEncoding.EncodeToString([]byte{0xde, 0xad, 0xbe, 0xef})
	e := base64.RawURLEncoding.EncodeToString([]byte{0x01, 0x00, 0x01})

	pub, err := JWK{Kid: "k", Kty: "RSA", N: n, E: e}.RSAPublicKey()
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	if pub.E != 65537 {
		t.Errorf("expected exponent 65537, got %d", pub.E)
	}

	if _, err := (JWK{N: "!!", E: e}).RSAPublicKey(); err == nil {
		t.Error("expected error for invalid modulus encoding")
	}
}
