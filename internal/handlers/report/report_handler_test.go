package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qarilive-service/internal/domain/account"
	"qarilive-service/internal/domain/agent"
	"qarilive-service/internal/domain/submission"
	service "qarilive-service/internal/service/report"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	users []account.User
}

func (f *fakeDirectory) ListAllUsers(context.Context) ([]account.User, error) { return f.users, nil }

type emptyRegistry struct{}

func (emptyRegistry) ListAll(context.Context) ([]agent.RegistryEntry, error) { return nil, nil }

type fakeTotals struct {
	totals map[submission.Target]*submission.Totals
	asked  []submission.Target
}

func (f *fakeTotals) ApprovedTotals(_ context.Context, target submission.Target) (*submission.Totals, error) {
	f.asked = append(f.asked, target)
	if t, ok := f.totals[target]; ok {
		return t, nil
	}
	return &submission.Totals{TotalRM: decimal.Zero}, nil
}

func newEngine(dir *fakeDirectory, totals *fakeTotals) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReportHandler(service.NewReportService(dir, emptyRegistry{}, totals, zap.NewNop()))

	engine := gin.New()
	engine.GET("/api/admin/agent-stats", h.AgentStats)
	engine.GET("/api/admin/earnings", h.Earnings)
	engine.POST("/api/admin/payout-batches", h.CreatePayoutBatch)
	return engine
}

func do(engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func ma897Totals() *fakeTotals {
	return &fakeTotals{totals: map[submission.Target]*submission.Totals{
		{Kind: submission.TargetMasterAgent, ID: "MA897"}: {ApprovedCount: 2, TotalRM: decimal.RequireFromString("125.00")},
	}}
}

func TestAgentStats(t *testing.T) {
	dir := &fakeDirectory{users: []account.User{
		{ID: "m1", UserMetadata: map[string]interface{}{"role": "master_agent", "ma_code": "MA2"}},
		{ID: "g1", UserMetadata: map[string]interface{}{"role": "agent", "parent_ma_code": "ma1"}},
		{ID: "g2", UserMetadata: map[string]interface{}{"role": "agent", "parent_ma": "MA1"}},
	}}
	engine := newEngine(dir, &fakeTotals{})

	w, body := do(engine, http.MethodGet, "/api/admin/agent-stats?include_empty=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["totalUsers"] != float64(3) || body["totalAgents"] != float64(2) {
		t.Fatalf("unexpected totals %v", body)
	}
	rows, _ := body["byMasterAgent"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected MA1 and the empty MA2, got %v", rows)
	}
	first := rows[0].(map[string]interface{})
	if first["ma_code"] != "MA1" || first["agent_count"] != float64(2) {
		t.Fatalf("unexpected first row %v", first)
	}
}

func TestEarnings(t *testing.T) {
	engine := newEngine(&fakeDirectory{}, ma897Totals())

	w, body := do(engine, http.MethodGet, "/api/admin/earnings?type=master_agent&id=ma897", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["approved_count"] != float64(2) || body["total_rm"] != float64(125) {
		t.Fatalf("unexpected earnings %v", body)
	}
	if v, ok := body["commission_pct"]; !ok || v != nil {
		t.Fatalf("expected commission_pct null, got %v", body)
	}

	w, body = do(engine, http.MethodGet, "/api/admin/earnings?type=master_agent", "")
	if w.Code != http.StatusBadRequest || body["error"] != "Missing type or id" {
		t.Fatalf("expected 400, got %d %v", w.Code, body)
	}

	w, body = do(engine, http.MethodGet, "/api/admin/earnings?type=boss&id=x", "")
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid type" {
		t.Fatalf("expected 400 invalid type, got %d %v", w.Code, body)
	}
}

func TestCreatePayoutBatch(t *testing.T) {
	engine := newEngine(&fakeDirectory{}, ma897Totals())

	w, body := do(engine, http.MethodPost, "/api/admin/payout-batches", `{"type":"master_agent","id":"MA897","commission_pct":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["payout_amount_rm"] != 12.5 || body["total_rm"] != float64(125) || body["commission_pct"] != float64(10) {
		t.Fatalf("unexpected amounts %v", body)
	}
	batchID, _ := body["batch_id"].(string)
	if !strings.HasPrefix(batchID, "PB-") {
		t.Fatalf("unexpected batch id %q", batchID)
	}
	lines := strings.Split(body["csv"].(string), "\n")
	if len(lines) != 2 || lines[0] != service.CSVHeader {
		t.Fatalf("unexpected csv %q", body["csv"])
	}
	if !strings.HasPrefix(lines[1], batchID+",master_agent,MA897,2,125.00,10.00,12.50,") {
		t.Fatalf("unexpected csv row %q", lines[1])
	}
}

func TestCreatePayoutBatchRejectsPct(t *testing.T) {
	engine := newEngine(&fakeDirectory{}, ma897Totals())

	for _, raw := range []string{
		`{"type":"master_agent","id":"MA897","commission_pct":150}`,
		`{"type":"master_agent","id":"MA897","commission_pct":"-1"}`,
		`{"type":"master_agent","id":"MA897","commission_pct":100.0001}`,
		`{"type":"master_agent","id":"MA897"}`,
		``,
	} {
		w, body := do(engine, http.MethodPost, "/api/admin/payout-batches", raw)
		if w.Code != http.StatusBadRequest || body["error"] != "commission_pct must be between 0 and 100" {
			t.Fatalf("%s: expected pct rejection, got %d %v", raw, w.Code, body)
		}
	}

	w, body := do(engine, http.MethodPost, "/api/admin/payout-batches", `{"type":"boss","id":"MA897","commission_pct":10}`)
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid type" {
		t.Fatalf("expected invalid type, got %d %v", w.Code, body)
	}

	for _, raw := range []string{
		`{"type":" agent ","id":"a1","commission_pct":0}`,
		`{"type":"agent","id":"a1","commission_pct":"100"}`,
	} {
		if w, body := do(engine, http.MethodPost, "/api/admin/payout-batches", raw); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %v", raw, w.Code, body)
		}
	}
}
