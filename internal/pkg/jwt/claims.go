// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// AppMetadata is the provider-controlled part of the token.
type AppMetadata struct {
	Roles    []string `json:"roles,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Banned   bool     `json:"banned,omitempty"`
}

// Claims represents the identity provider's JWT claims
type Claims struct {
	Email        string                 `json:"email,omitempty"`
	AppMetadata  AppMetadata            `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}
