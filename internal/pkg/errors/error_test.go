package xerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: Validation("Missing %s", "id"), want: http.StatusBadRequest},
		{name: "unauthenticated", err: Unauthenticated("Unauthorized"), want: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("Forbidden"), want: http.StatusForbidden},
		{name: "not found wrapped", err: fmt.Errorf("lookup: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "upstream passthrough", err: &UpstreamError{Op: "invite", Status: 422}, want: 422},
		{name: "upstream without status", err: &UpstreamError{Op: "invite"}, want: http.StatusBadGateway},
		{name: "deadline", err: FromContext(fmt.Errorf("get: %w", context.DeadlineExceeded)), want: http.StatusGatewayTimeout},
		{name: "anything else", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestKindErrorsCarryOnlyTheMessage(t *testing.T) {
	err := Validation("Invalid role")
	if err.Error() != "Invalid role" {
		t.Fatalf("unexpected text %q", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation kind")
	}
}

func TestRelabel(t *testing.T) {
	upstream := &UpstreamError{Op: "invite user", Status: 400, Body: "bad"}
	err := Relabel(fmt.Errorf("create: %w", upstream), "Invite failed")

	var got *UpstreamError
	if !errors.As(err, &got) || got.Message != "Invite failed" {
		t.Fatalf("expected relabelled upstream error, got %v", err)
	}

	plain := errors.New("plain")
	if Relabel(plain, "x") != plain {
		t.Fatalf("expected other errors to pass through")
	}
}

func TestDetailIsCapped(t *testing.T) {
	err := &UpstreamError{Op: "list", Status: 500, Body: strings.Repeat("x", 800)}
	if got := Detail(err); len(got) != 500 {
		t.Fatalf("expected 500 bytes, got %d", len(got))
	}
	if Detail(errors.New("other")) != "" {
		t.Fatalf("expected no detail for non-upstream errors")
	}
}

func TestFromContextLeavesOtherErrors(t *testing.T) {
	err := errors.New("connection refused")
	if FromContext(err) != err {
		t.Fatalf("expected passthrough")
	}
	if FromContext(nil) != nil {
		t.Fatalf("expected nil")
	}
}
