package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/pkg/app"
	_ "github.com/OpreaAngel-Freelance/oil/pkg/auth/static" // Register static auth provider.
	"github.com/OpreaAngel-Freelance/oil/pkg/config"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

const (
	benchToken = "bench-admin-token"
	benchSub   = "bench-admin"
)

func newBenchApp(b *testing.B) *app.Application {
	b.Helper()
	gin.SetMode(gin.ReleaseMode)

	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis start: %v", err)
	}
	b.Cleanup(mr.Close)

	cfg, err := config.LoadConfig("")
	if err != nil {
		b.Fatalf("config: %v", err)
	}
	cfg.Env = "dev"
	cfg.LogLevel = "error"
	cfg.LogFormat = "json"
	cfg.RedisAddr = mr.Addr()
	// Benchmarks always run against the in-memory repository.
	cfg.DatabaseURL = ""

	// Benchmarks keep rate limiting disabled.
	cfg.RateLimitWrite = config.RateLimitBucket{}

	authCfg, _ := json.Marshal(map[string]any{
		"token":   benchToken,
		"subject": benchSub,
		"email":   "bench@oil.local",
		"roles":   []string{"ROLE_ADMIN", "ROLE_USER"},
	})
	cfg.AuthProvider = "static"
	cfg.AuthConfig = string(authCfg)

	a, err := app.NewApplication(context.Background(), cfg)
	if err != nil {
		b.Fatalf("app init: %v", err)
	}
	app.SetupMappings(a)
	b.Cleanup(func() {
		_ = a.TracingShutdown(context.Background())
		a.Repo.Close()
	})
	return a
}

func doJSONRequest(b *testing.B, h http.Handler, method, path string, body []byte) (int, []byte) {
	b.Helper()

	var rbody *bytes.Reader
	if body == nil {
		rbody = bytes.NewReader([]byte{})
	} else {
		rbody = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rbody)
	req.Header.Set("Authorization", "Bearer "+benchToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func BenchmarkHTTP_CreateGetDelete(b *testing.B) {
	a := newBenchApp(b)

	createBody := []byte(`{"date":"2026-01-15","price":7.45,"type":"DIESEL"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		status, resp := doJSONRequest(b, a.Engine, http.MethodPost, "/api/v1/oil", createBody)
		if status != http.StatusCreated {
			b.Fatalf("create status %d body=%s", status, string(resp))
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(resp, &created); err != nil || created.ID == "" {
			b.Fatalf("create parse failed: err=%v body=%s", err, string(resp))
		}

		status, resp = doJSONRequest(b, a.Engine, http.MethodGet, "/api/v1/oil/"+created.ID, nil)
		if status != http.StatusOK {
			b.Fatalf("get status %d body=%s", status, string(resp))
		}

		status, resp = doJSONRequest(b, a.Engine, http.MethodDelete, "/api/v1/oil/"+created.ID, nil)
		if status != http.StatusNoContent {
			b.Fatalf("delete status %d body=%s", status, string(resp))
		}
	}
}

func BenchmarkHTTP_ListPage(b *testing.B) {
	a := newBenchApp(b)

	const prefill = 200
	createBody := []byte(`{"date":"2026-01-15","price":7.45}`)
	for i := 0; i < prefill; i++ {
		status, resp := doJSONRequest(b, a.Engine, http.MethodPost, "/api/v1/oil", createBody)
		if status != http.StatusCreated {
			b.Fatalf("prefill create status %d body=%s", status, string(resp))
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		status, resp := doJSONRequest(b, a.Engine, http.MethodGet, "/api/v1/oil?limit=50", nil)
		if status != http.StatusOK {
			b.Fatalf("list status %d body=%s", status, string(resp))
		}
	}
}

func BenchmarkService_CreateGetDelete(b *testing.B) {
	a := newBenchApp(b)
	ctx := context.Background()

	req := domain.OilCreate{Date: "2026-01-15", Price: 7.45, Type: domain.OilTypeDiesel}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		created, err := a.Oil.Create(ctx, req, benchSub, "bench@oil.local")
		if err != nil {
			b.Fatalf("Create: %v", err)
		}
		if _, err := a.Oil.Get(ctx, created.ID); err != nil {
			b.Fatalf("Get: %v", err)
		}
		if err := a.Oil.Delete(ctx, created.ID); err != nil {
			b.Fatalf("Delete: %v", err)
		}
	}
}
