package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	xerrors "qarilive-service/internal/pkg/errors"
)

func TestParse(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(png)

	p, err := Parse("data:image/PNG;base64,"+encoded, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.MIMEType != "image/png" {
		t.Fatalf("expected image/png, got %q", p.MIMEType)
	}
	if string(p.Data) != string(png) {
		t.Fatalf("payload mismatch")
	}
}

func TestParseAcceptsUnpaddedBase64(t *testing.T) {
	raw := base64.RawStdEncoding.EncodeToString([]byte("hello!!"))
	p, err := Parse("data:image/jpeg;base64,"+raw, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(p.Data) != "hello!!" {
		t.Fatalf("unexpected payload %q", p.Data)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no scheme", input: "image/png;base64,AAAA"},
		{name: "no base64 marker", input: "data:image/png,AAAA"},
		{name: "no mime subtype", input: "data:image;base64,AAAA"},
		{name: "bad alphabet", input: "data:image/png;base64,@@@@"},
		{name: "empty payload", input: "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, 0)
			if !errors.Is(err, xerrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseEnforcesCeilingBeforeDecoding(t *testing.T) {
	// Invalid base64 past the ceiling must still report the size problem.
	input := "data:image/png;base64," + strings.Repeat("@", 64)

	_, err := Parse(input, 32)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "receipt.JPG", want: "receipt"},
		{in: "my receipt (1).png", want: "my_receipt_1_"},
		{in: "../../etc/passwd", want: ".._.._etc_passwd"},
		{in: "", want: "proof"},
		{in: ".png", want: "proof"},
		{in: strings.Repeat("a", 200), want: strings.Repeat("a", 120)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	if got := ExtensionFor("image/webp"); got != "webp" {
		t.Fatalf("expected webp, got %q", got)
	}
	if got := ExtensionFor("application/pdf"); got != "jpg" {
		t.Fatalf("expected jpg fallback, got %q", got)
	}
}
