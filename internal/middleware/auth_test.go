package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

type stubValidator struct {
	claims *auth.Claims
	err    error
	token  string
}

func (s *stubValidator) Validate(_ context.Context, token string) (*auth.Claims, error) {
	s.token = token
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func userClaims(roles ...string) *auth.Claims {
	return &auth.Claims{
		Subject:     "user-1",
		Email:       "user@example.com",
		RealmAccess: auth.RoleSet{Roles: roles},
	}
}

func authRouter(v auth.Validator, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(v)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	r.GET("/protected", chain...)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func assertErrorBody(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d", w.Code, status)
	}
	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body %q: %v", w.Body.String(), err)
	}
	if body.Status != status || body.Message != message {
		t.Errorf("body = %+v, want {%d %q}", body, status, message)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	r := authRouter(&stubValidator{claims: userClaims("ROLE_USER")})
	w := doRequest(t, r, "")
	assertErrorBody(t, w, http.StatusUnauthorized, "missing authorization header")
}

func TestAuthMalformedHeader(t *testing.T) {
	r := authRouter(&stubValidator{claims: userClaims("ROLE_USER")})
	for _, header := range []string{"Bearer", "Token abc", "Bearer a b"} {
		w := doRequest(t, r, header)
		assertErrorBody(t, w, http.StatusUnauthorized, "invalid authorization header format")
	}
}

func TestAuthLowercaseBearerAccepted(t *testing.T) {
	v := &stubValidator{claims: userClaims("ROLE_USER")}
	r := authRouter(v)
	w := doRequest(t, r, "bearer some-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if v.token != "some-token" {
		t.Errorf("validator saw token %q", v.token)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r := authRouter(&stubValidator{err: auth.ErrInvalidToken})
	w := doRequest(t, r, "Bearer bad")
	assertErrorBody(t, w, http.StatusUnauthorized, "invalid authentication token")
}

func TestAuthExpiredToken(t *testing.T) {
	r := authRouter(&stubValidator{err: auth.ErrTokenExpired})
	w := doRequest(t, r, "Bearer old")
	assertErrorBody(t, w, http.StatusUnauthorized, "token has expired")
}

func TestAuthKeySetUnavailable(t *testing.T) {
	r := authRouter(&stubValidator{err: auth.ErrKeySetUnavailable})
	w := doRequest(t, r, "Bearer token")
	assertErrorBody(t, w, http.StatusServiceUnavailable, "failed to fetch JWKS from authentication server")
}

func TestAuthSetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(&stubValidator{claims: userClaims("ROLE_USER")}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": c.GetString(UserIDKey),
			"email":  c.GetString(UserEmailKey),
		})
	})
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["userId"] != "user-1" || body["email"] != "user@example.com" {
		t.Errorf("body = %v", body)
	}
}

func TestRequireRoleAllows(t *testing.T) {
	r := authRouter(&stubValidator{claims: userClaims("ROLE_USER", "ROLE_ADMIN")}, RequireRole("ROLE_ADMIN"))
	w := doRequest(t, r, "Bearer token")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRequireRoleDenies(t *testing.T) {
	r := authRouter(&stubValidator{claims: userClaims("ROLE_USER")}, RequireRole("ROLE_ADMIN"))
	w := doRequest(t, r, "Bearer token")
	assertErrorBody(t, w, http.StatusForbidden, "access denied")
}

func TestRequireAnyRole(t *testing.T) {
	r := authRouter(&stubValidator{claims: userClaims("ROLE_USER")}, RequireAnyRole("ROLE_ADMIN", "ROLE_USER"))
	w := doRequest(t, r, "Bearer token")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireRole("ROLE_ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when auth middleware did not run", w.Code)
	}
}
