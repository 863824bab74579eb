package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newLimiter(t *testing.T) *TokenBucketLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenBucketLimiter(rdb)
}

func TestAllowDisabledBucket(t *testing.T) {
	lim := newLimiter(t)

	dec, err := lim.Allow(context.Background(), "write", "user-1", Bucket{})
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("expected allowed when bucket disabled")
	}
}

func TestAllowNilLimiter(t *testing.T) {
	var lim *TokenBucketLimiter
	dec, err := lim.Allow(context.Background(), "write", "user-1", Bucket{RequestsPerMinute: 1, BurstSize: 1})
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("nil limiter should allow everything")
	}
}

func TestAllowBlocksAfterBurst(t *testing.T) {
	lim := newLimiter(t)
	bucket := Bucket{RequestsPerMinute: 60, BurstSize: 1} // 1 token/sec, burst=1

	dec1, err := lim.Allow(context.Background(), "write", "user-1", bucket)
	if err != nil {
		t.Fatalf("allow 1: %v", err)
	}
	if !dec1.Allowed {
		t.Fatal("expected first request to be allowed")
	}

	dec2, err := lim.Allow(context.Background(), "write", "user-1", bucket)
	if err != nil {
		t.Fatalf("allow 2: %v", err)
	}
	if dec2.Allowed {
		t.Fatal("expected second request to be rate limited")
	}
	if dec2.RetryAfter <= 0 {
		t.Fatal("expected retryAfter to be set")
	}

	decOther, err := lim.Allow(context.Background(), "write", "user-2", bucket)
	if err != nil {
		t.Fatalf("allow other: %v", err)
	}
	if !decOther.Allowed {
		t.Fatal("expected other subject to have an independent bucket")
	}
}

func TestAllowScopesAreIndependent(t *testing.T) {
	lim := newLimiter(t)
	bucket := Bucket{RequestsPerMinute: 60, BurstSize: 1}

	if dec, err := lim.Allow(context.Background(), "write", "user-1", bucket); err != nil || !dec.Allowed {
		t.Fatalf("write scope: dec=%+v err=%v", dec, err)
	}
	if dec, err := lim.Allow(context.Background(), "upload", "user-1", bucket); err != nil || !dec.Allowed {
		t.Fatalf("upload scope should not share the write bucket: dec=%+v err=%v", dec, err)
	}
}
