package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "qarilive-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, h gin.HandlerFunc) (int, map[string]interface{}, http.Header) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w.Code, body, w.Header()
}

func TestSuccessMergesPayload(t *testing.T) {
	code, body, header := run(t, func(c *gin.Context) {
		Success(c, 0, gin.H{"count": 2, "ok": "ignored"})
	})
	if code != http.StatusOK || body["ok"] != true || body["count"] != float64(2) {
		t.Fatalf("unexpected reply %d %v", code, body)
	}
	if header.Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store, got %q", header.Get("Cache-Control"))
	}
}

func TestErrorOmitsEmptyDetail(t *testing.T) {
	_, body, _ := run(t, func(c *gin.Context) { NotFound(c, "Not found") })
	if _, ok := body["detail"]; ok {
		t.Fatalf("expected no detail key, got %v", body)
	}
	if body["ok"] != false || body["error"] != "Not found" {
		t.Fatalf("unexpected envelope %v", body)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail string
	}{
		{
			name:       "validation surfaces its message",
			err:        xerrors.Validation("Missing id"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing id",
		},
		{
			name:       "internal keeps fallback",
			err:        errors.New("pq: password authentication failed"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to load",
		},
		{
			name:       "upstream relabelled",
			err:        xerrors.Relabel(&xerrors.UpstreamError{Op: "invite", Status: 422, Body: `{"msg":"exists"}`}, "Invite failed"),
			wantStatus: 422,
			wantError:  "Invite failed",
			wantDetail: `{"msg":"exists"}`,
		},
		{
			name:       "timeout",
			err:        xerrors.FromContext(fmt.Errorf("list users: %w", context.DeadlineExceeded)),
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "upstream timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, _ := run(t, func(c *gin.Context) { FromError(c, tt.err, "Failed to load") })
			if code != tt.wantStatus || body["error"] != tt.wantError {
				t.Fatalf("expected %d %q, got %d %v", tt.wantStatus, tt.wantError, code, body)
			}
			detail, _ := body["detail"].(string)
			if detail != tt.wantDetail {
				t.Fatalf("expected detail %q, got %q", tt.wantDetail, detail)
			}
		})
	}
}
