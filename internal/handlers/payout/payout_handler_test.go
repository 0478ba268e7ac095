package payout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qarilive-service/internal/domain/payout"
	"qarilive-service/internal/middleware"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/jwt"
	"qarilive-service/internal/repository/redisstore"
	service "qarilive-service/internal/service/payout"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var secret = []byte("payout-handler-secret")

type memStore struct {
	rows map[payout.Kind]map[string]*payout.Profile
}

func newMemStore() *memStore {
	return &memStore{rows: map[payout.Kind]map[string]*payout.Profile{
		payout.KindMasterAgent: {},
		payout.KindAgent:       {},
	}}
}

func (m *memStore) Get(_ context.Context, kind payout.Kind, ownerID string) (*payout.Profile, error) {
	if p, ok := m.rows[kind][ownerID]; ok {
		return p, nil
	}
	return nil, xerrors.ErrNotFound
}

func (m *memStore) Upsert(_ context.Context, kind payout.Kind, p *payout.Profile) error {
	p.UpdatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m.rows[kind][p.OwnerID] = p
	return nil
}

func (m *memStore) FindByOwnerOrCode(_ context.Context, kind payout.Kind, key string) (*payout.Profile, error) {
	if p, ok := m.rows[kind][key]; ok {
		return p, nil
	}
	for _, p := range m.rows[kind] {
		if p.MACode != nil && strings.EqualFold(*p.MACode, key) {
			return p, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func newEngine(t *testing.T, store *memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := NewPayoutHandler(service.NewPayoutService(store, redisstore.NewCardStore(client), zap.NewNop()))
	auth := middleware.NewAuthMiddleware(jwt.NewVerifier(secret, 0))

	engine := gin.New()
	engine.GET("/api/ma/card", h.GetCard)
	engine.GET("/api/ma/payout", auth.Auth(), h.GetMasterAgentPayout)
	engine.POST("/api/ma/payout", auth.Auth(), h.SetMasterAgentPayout)
	engine.GET("/api/agent/payout", auth.Auth(), h.GetAgentPayout)
	engine.POST("/api/agent/payout", auth.Auth(), h.SetAgentPayout)
	engine.GET("/api/admin/bank", append(auth.AdminOnly(), h.GetBank)...)
	return engine
}

func token(t *testing.T, sub string, roles []string, meta map[string]interface{}) string {
	t.Helper()
	tok, err := jwt.NewGenerator(secret, "", time.Minute).Generate(sub, sub+"@example.com", roles, meta)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func do(engine *gin.Engine, method, path, bearer, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestMasterAgentPayoutRoundTripPublishesCard(t *testing.T) {
	engine := newEngine(t, newMemStore())
	ma := token(t, "ma-1", nil, map[string]interface{}{"role": "master_agent", "ma_code": "ma897", "full_name": "Siti"})

	w, body := do(engine, http.MethodGet, "/api/ma/payout", ma, "")
	if w.Code != http.StatusOK || body["data"] != nil {
		t.Fatalf("expected empty profile, got %d %v", w.Code, body)
	}

	w, _ = do(engine, http.MethodPost, "/api/ma/payout", ma,
		`{"full_name":" Siti ","whatsapp":"60123","bank_name":"Maybank","bank_account_name":"Siti","bank_account_number":"1234"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected save to succeed, got %d: %s", w.Code, w.Body.String())
	}

	w, body = do(engine, http.MethodGet, "/api/ma/payout", ma, "")
	data, _ := body["data"].(map[string]interface{})
	if w.Code != http.StatusOK || data["full_name"] != "Siti" || data["ma_code"] != "MA897" {
		t.Fatalf("unexpected profile %d %v", w.Code, body)
	}

	w, body = do(engine, http.MethodGet, "/api/ma/card?ref=ma897", "", "")
	card, _ := body["data"].(map[string]interface{})
	if w.Code != http.StatusOK || card["whatsapp"] != "60123" {
		t.Fatalf("unexpected card %d %v", w.Code, body)
	}
	if _, leaked := card["bank_account_number"]; leaked {
		t.Fatalf("card must not carry bank details: %v", card)
	}
}

func TestAgentPayoutRequiresBankFields(t *testing.T) {
	engine := newEngine(t, newMemStore())
	ag := token(t, "ag-1", []string{"agent"}, map[string]interface{}{"parent_ma_code": "MA1"})

	w, body := do(engine, http.MethodPost, "/api/agent/payout", ag, `{"bank_name":"CIMB"}`)
	if w.Code != http.StatusBadRequest || body["error"] != "Missing bank fields." {
		t.Fatalf("expected missing bank fields, got %d %v", w.Code, body)
	}
}

func TestPayoutRequiresToken(t *testing.T) {
	engine := newEngine(t, newMemStore())
	if w, _ := do(engine, http.MethodGet, "/api/agent/payout", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminBankLookup(t *testing.T) {
	store := newMemStore()
	code := "MA5"
	store.rows[payout.KindMasterAgent]["ma-5"] = &payout.Profile{OwnerID: "ma-5", MACode: &code, BankName: "RHB"}
	engine := newEngine(t, store)
	admin := token(t, "admin-1", []string{"admin"}, nil)

	tests := []struct {
		name      string
		query     string
		bearer    string
		wantCode  int
		wantBank  bool
		wantError string
	}{
		{name: "by code", query: "?type=master_agent&id=ma5", bearer: admin, wantCode: http.StatusOK, wantBank: true},
		{name: "miss", query: "?type=agent&id=nobody", bearer: admin, wantCode: http.StatusOK},
		{name: "missing id", query: "?type=agent", bearer: admin, wantCode: http.StatusBadRequest, wantError: "Missing type or id"},
		{name: "bad type", query: "?type=boss&id=x", bearer: admin, wantCode: http.StatusBadRequest, wantError: "Invalid type"},
		{name: "not admin", query: "?type=agent&id=x", bearer: token(t, "ag", []string{"agent"}, nil), wantCode: http.StatusForbidden, wantError: "Forbidden (admin only)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(engine, http.MethodGet, "/api/admin/bank"+tt.query, tt.bearer, "")
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Fatalf("expected %q, got %v", tt.wantError, body)
			}
			if tt.wantCode == http.StatusOK && (body["bank"] != nil) != tt.wantBank {
				t.Fatalf("unexpected bank %v", body["bank"])
			}
		})
	}
}

func TestCardMiss(t *testing.T) {
	engine := newEngine(t, newMemStore())

	w, body := do(engine, http.MethodGet, "/api/ma/card?ref=ma404", "", "")
	if w.Code != http.StatusNotFound || body["error"] != "Master Agent not found for REF: MA404" {
		t.Fatalf("expected 404, got %d %v", w.Code, body)
	}
	w, body = do(engine, http.MethodGet, "/api/ma/card", "", "")
	if w.Code != http.StatusBadRequest || body["error"] != "Missing ref" {
		t.Fatalf("expected 400, got %d %v", w.Code, body)
	}
}
