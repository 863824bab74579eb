package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/OpreaAngel-Freelance/oil/internal/ratelimit"
)

func rateLimitedRouter(t *testing.T, bucket ratelimit.Bucket, userID string) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	lim := ratelimit.NewTokenBucketLimiter(rdb)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/oil",
		func(c *gin.Context) { c.Set(UserIDKey, userID) },
		RateLimitWrite(lim, bucket),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)
	return r
}

func postOil(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oil", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitWriteBlocksAfterBurst(t *testing.T) {
	r := rateLimitedRouter(t, ratelimit.Bucket{RequestsPerMinute: 60, BurstSize: 1}, "user-1")

	if w := postOil(r); w.Code != http.StatusCreated {
		t.Fatalf("first request = %d, want 201", w.Code)
	}
	w := postOil(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}

func TestRateLimitWriteDisabledBucket(t *testing.T) {
	r := rateLimitedRouter(t, ratelimit.Bucket{}, "user-1")
	for i := 0; i < 5; i++ {
		if w := postOil(r); w.Code != http.StatusCreated {
			t.Fatalf("request %d = %d, want 201", i, w.Code)
		}
	}
}

func TestRateLimitWriteSkipsAnonymous(t *testing.T) {
	r := rateLimitedRouter(t, ratelimit.Bucket{RequestsPerMinute: 60, BurstSize: 1}, "")
	for i := 0; i < 3; i++ {
		if w := postOil(r); w.Code != http.StatusCreated {
			t.Fatalf("request %d = %d, want 201 for unauthenticated pass-through", i, w.Code)
		}
	}
}
