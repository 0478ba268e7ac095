// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	secret  []byte
	subject string
	Ttl     time.Duration
}

func NewGenerator(secret []byte, subject string, ttl time.Duration) *Generator {
	return &Generator{
		secret:  secret,
		subject: subject,
		Ttl:     ttl,
	}
}

// Generate signs a token for the given subject
func (g *Generator) Generate(subject, email string, roles []string, userMetadata map[string]interface{}) (string, error) {
	if len(g.secret) == 0 {
		return "", fmt.Errorf("jwt generator has no secret")
	}

	now := time.Now()
	claims := &Claims{
		Email:        email,
		AppMetadata:  AppMetadata{Roles: roles},
		UserMetadata: userMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(g.Ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(g.secret)
}

// AdminToken mints the short-lived operator token the identity admin API
// accepts in place of a static admin token.
func (g *Generator) AdminToken() (string, error) {
	return g.Generate(g.subject, "", []string{"admin"}, nil)
}
