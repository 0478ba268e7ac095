package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qarilive-service/internal/pkg/identity"
	"qarilive-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var testSecret = []byte("middleware-test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, sub string, roles []string, meta map[string]interface{}) string {
	t.Helper()
	tok, err := jwt.NewGenerator(testSecret, "", time.Minute).Generate(sub, sub+"@example.com", roles, meta)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.GET("/guarded", append(handlers, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, p)
	})...)
	return engine
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	auth := NewAuthMiddleware(jwt.NewVerifier(testSecret, 0))
	engine := newEngine(auth.Auth())

	other, err := jwt.NewGenerator([]byte("other"), "", time.Minute).Generate("u1", "", nil, nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for name, header := range map[string]string{
		"missing":      "",
		"bearer only":  "Bearer ",
		"garbage":      "Bearer not-a-token",
		"wrong secret": "Bearer " + other,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			body := decode(t, w)
			if body["ok"] != false || body["error"] != "Unauthorized" {
				t.Fatalf("unexpected envelope %v", body)
			}
		})
	}
}

func TestAuthResolvesPrincipal(t *testing.T) {
	auth := NewAuthMiddleware(jwt.NewVerifier(testSecret, 0))
	engine := newEngine(auth.Auth())

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "bearer "+sign(t, "u1", []string{"agent"}, map[string]interface{}{
		"role":           "agent",
		"parent_ma_code": "ma897",
	}))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var p identity.Principal
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.UserID != "u1" || p.Role != identity.RoleAgent || p.ParentMACode != "MA897" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := NewAuthMiddleware(jwt.NewVerifier(testSecret, 0))
	engine := newEngine(auth.AdminOnly()...)

	tests := []struct {
		name  string
		roles []string
		meta  map[string]interface{}
		want  int
	}{
		{name: "admin", roles: []string{"admin"}, want: http.StatusOK},
		{name: "master agent", meta: map[string]interface{}{"role": "master_agent"}, want: http.StatusForbidden},
		{name: "master agent with admin in list", roles: []string{"admin"}, meta: map[string]interface{}{"role": "master_agent"}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			req.Header.Set("Authorization", "Bearer "+sign(t, "u1", tt.roles, tt.meta))
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.want == http.StatusForbidden && decode(t, w)["error"] != "Forbidden (admin only)" {
				t.Fatalf("unexpected denial %s", w.Body.String())
			}
		})
	}
}

func TestAuthRejectsBannedAccount(t *testing.T) {
	auth := NewAuthMiddleware(jwt.NewVerifier(testSecret, 0))
	engine := newEngine(auth.Auth())

	claims := &jwt.Claims{
		AppMetadata: jwt.AppMetadata{Roles: []string{"agent"}, Banned: true},
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a disabled account, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["error"] != "Account disabled" {
		t.Fatalf("unexpected envelope %v", body)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(LoggingMiddleware(zap.NewNop()), RecoveryMiddleware(zap.NewNop()))
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decode(t, w); body["ok"] != false {
		t.Fatalf("unexpected envelope %v", body)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestLoggingMiddlewareKeepsIncomingRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(LoggingMiddleware(zap.NewNop()))
	engine.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Body.String() != "req-123" || w.Header().Get("X-Request-ID") != "req-123" {
		t.Fatalf("expected incoming id to be kept, got body=%q header=%q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}
}

func TestCORSMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(CORSMiddleware([]string{"https://app.example"}))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected unknown origin to get no allow header, got %q", got)
	}
}

func TestScopeMACode(t *testing.T) {
	auth := NewAuthMiddleware(jwt.NewVerifier(testSecret, 0))
	engine := gin.New()
	engine.GET("/roster", auth.Auth(), func(c *gin.Context) {
		code, ok := ScopeMACode(c, c.Query("ma_code"))
		if !ok {
			return
		}
		c.String(http.StatusOK, code)
	})

	ma := sign(t, "m1", nil, map[string]interface{}{"role": "master_agent", "ma_code": "ma897"})
	agent := sign(t, "g1", nil, map[string]interface{}{"role": "agent", "parent_ma_code": "ma897"})
	admin := sign(t, "a1", []string{"admin"}, nil)

	tests := []struct {
		name     string
		token    string
		query    string
		wantCode int
		wantBody string
	}{
		{name: "owner default", token: ma, wantCode: http.StatusOK, wantBody: "MA897"},
		{name: "owner explicit lower case", token: ma, query: "?ma_code=ma897", wantCode: http.StatusOK, wantBody: "MA897"},
		{name: "owner other code", token: ma, query: "?ma_code=MA1", wantCode: http.StatusForbidden},
		{name: "agent under owner", token: agent, query: "?ma_code=MA897", wantCode: http.StatusForbidden},
		{name: "agent without code", token: agent, wantCode: http.StatusBadRequest},
		{name: "admin any code", token: admin, query: "?ma_code=ma1", wantCode: http.StatusOK, wantBody: "MA1"},
		{name: "admin without code", token: admin, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/roster"+tt.query, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Fatalf("expected %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}
