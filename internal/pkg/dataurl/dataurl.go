// Package dataurl decodes base64 data URIs of the form
// data:image/png;base64,AAAA and prepares storage file names.
package dataurl

import (
	"encoding/base64"
	"regexp"
	"strings"

	xerrors "qarilive-service/internal/pkg/errors"
)

// DefaultMaxBytes bounds the encoded data URI.
const DefaultMaxBytes = 10 * 1024 * 1024

// TooLargeMessage is the reply to a proof over the size ceiling.
const TooLargeMessage = "Image too large. Please upload a smaller image."

const maxFilenameLen = 120

var (
	dataURLPattern  = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,(.+)$`)
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]+`)
	imageExtPattern = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|gif)$`)
)

var extByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Payload is a decoded data URI.
type Payload struct {
	MIMEType string
	Data     []byte
}

// Parse checks the encoded length against maxBytes before decoding anything.
func Parse(raw string, maxBytes int) (*Payload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(raw) > maxBytes {
		return nil, xerrors.Validation(TooLargeMessage)
	}

	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, xerrors.Validation("Invalid proof_data_url format.")
	}

	encoded := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, m[2])

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	}
	if err != nil || len(data) == 0 {
		return nil, xerrors.Validation("Invalid proof_data_url format.")
	}

	return &Payload{
		MIMEType: strings.ToLower(m[1]),
		Data:     data,
	}, nil
}

// ExtensionFor maps an image MIME type to a file extension, jpg by default.
func ExtensionFor(mimeType string) string {
	if ext, ok := extByMIME[strings.ToLower(mimeType)]; ok {
		return ext
	}
	return "jpg"
}

// SanitizeFilename drops a known image extension, replaces every run of
// characters outside [A-Za-z0-9_.-] with "_" and caps the length.
func SanitizeFilename(name string) string {
	name = imageExtPattern.ReplaceAllString(strings.TrimSpace(name), "")
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	if name == "" {
		return "proof"
	}
	return name
}
