package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpreaAngel-Freelance/oil/internal/middleware"
	"github.com/OpreaAngel-Freelance/oil/internal/repository"
	"github.com/OpreaAngel-Freelance/oil/internal/services"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

type fakeStorage struct{}

func (fakeStorage) GetUploadURL(_ context.Context, key string, metadata map[string]string) (*domain.UploadURLResponse, error) {
	if key == "" {
		key = "uploads/" + uuid.NewString()
	}
	return &domain.UploadURLResponse{
		URL:       "https://r2.example.com/" + key + "?sig=abc",
		Method:    "PUT",
		Key:       key,
		Metadata:  metadata,
		ExpiresIn: 20,
		PublicURL: "https://cdn.example.com/" + key,
	}, nil
}

func (fakeStorage) DeleteFile(context.Context, string) error { return nil }

func newRouter(t *testing.T) (*gin.Engine, services.OilService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryOilRepository()
	svc := services.NewOilService(repo, fakeStorage{}, nil, 50, 100)

	identity := func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
		c.Set(middleware.UserEmailKey, "user@example.com")
	}

	r := gin.New()
	r.POST("/oil", identity, NewCreateOilController(svc).Handle)
	r.GET("/oil", NewListOilController(svc).Handle)
	r.GET("/oil/:id", NewGetOilController(svc).Handle)
	r.PUT("/oil/:id", NewUpdateOilController(svc).Handle)
	r.DELETE("/oil/:id", NewDeleteOilController(svc).Handle)
	r.POST("/oil/upload-url", NewUploadURLController(svc).Handle)
	r.GET("/healthz", NewHealthController().Handle)
	r.GET("/readyz", NewReadyController(repo).Handle)
	return r, svc
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateOil(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodPost, "/oil", map[string]any{"date": "2024-01-15", "price": 1.89, "type": "DIESEL"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	oil := decode[domain.OilResource](t, w)
	if oil.Type != domain.OilTypeDiesel || oil.UserID != "user-1" || oil.Email != "user@example.com" {
		t.Errorf("oil = %+v", oil)
	}
}

func TestCreateOilInvalidBody(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodPost, "/oil", map[string]any{"price": 1.89})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing date", w.Code)
	}
	w = do(t, r, http.MethodPost, "/oil", map[string]any{"date": "2024-13-99", "price": 1.89})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad date", w.Code)
	}
}

func TestGetOil(t *testing.T) {
	r, svc := newRouter(t)
	oil, err := svc.Create(context.Background(), domain.OilCreate{Date: "2024-01-15", Price: 1.89}, "user-1", "u@e.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := do(t, r, http.MethodGet, "/oil/"+oil.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[domain.OilResource](t, w)
	if got.ID != oil.ID {
		t.Errorf("id = %v, want %v", got.ID, oil.ID)
	}
}

func TestGetOilNotFound(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/oil/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["status"] != float64(404) || body["message"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestGetOilBadID(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/oil/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListOil(t *testing.T) {
	r, svc := newRouter(t)
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), domain.OilCreate{Date: "2024-01-15", Price: float64(i)}, "u", "u@e.com"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	w := do(t, r, http.MethodGet, "/oil?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	page := decode[domain.CursorPage](t, w)
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Errorf("page = %+v", page)
	}

	w = do(t, r, http.MethodGet, "/oil?limit=2&cursor="+page.NextCursor, nil)
	page2 := decode[domain.CursorPage](t, w)
	if len(page2.Items) != 1 || page2.NextCursor != "" {
		t.Errorf("page2 = %+v", page2)
	}
}

func TestListOilBadLimit(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/oil?limit=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateOil(t *testing.T) {
	r, svc := newRouter(t)
	oil, err := svc.Create(context.Background(), domain.OilCreate{Date: "2024-01-15", Price: 1.89}, "u", "u@e.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := do(t, r, http.MethodPut, "/oil/"+oil.ID.String(), map[string]any{"price": 2.5})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	got := decode[domain.OilResource](t, w)
	if got.Price != 2.5 || got.Date != "2024-01-15" {
		t.Errorf("got = %+v", got)
	}
}

func TestDeleteOil(t *testing.T) {
	r, svc := newRouter(t)
	oil, err := svc.Create(context.Background(), domain.OilCreate{Date: "2024-01-15", Price: 1.89}, "u", "u@e.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := do(t, r, http.MethodDelete, "/oil/"+oil.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	w = do(t, r, http.MethodDelete, "/oil/"+oil.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestUploadURL(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodPost, "/oil/upload-url", map[string]any{
		"key":      "report.pdf",
		"metadata": map[string]string{"content-type": "application/pdf"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	resp := decode[domain.UploadURLResponse](t, w)
	if resp.Method != "PUT" || resp.URL == "" || resp.PublicURL == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUploadURLEmptyBody(t *testing.T) {
	r, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/oil/upload-url", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	resp := decode[domain.UploadURLResponse](t, w)
	if resp.Key == "" {
		t.Error("key should be generated")
	}
}

func TestHealthAndReady(t *testing.T) {
	r, _ := newRouter(t)
	if w := do(t, r, http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/readyz", nil); w.Code != http.StatusOK {
		t.Errorf("readyz = %d", w.Code)
	}
}
