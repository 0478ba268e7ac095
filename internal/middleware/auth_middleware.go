// internal/middleware/auth_middleware.go
package middleware

import (
	"qarilive-service/internal/pkg/authz"
	"qarilive-service/internal/pkg/identity"
	"qarilive-service/internal/pkg/jwt"
	"qarilive-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Auth validates the bearer token and stores the resolved principal.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := jwt.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c, "Unauthorized")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		// disabled accounts keep a valid token until it expires
		if claims.AppMetadata.Banned {
			response.Forbidden(c, "Account disabled")
			return
		}

		p := identity.Resolve(claims.Subject, claims.Email, claims.UserMetadata, claims.AppMetadata.Roles)
		c.Set(principalKey, p)
		c.Set("user_id", p.UserID)
		c.Set("role", string(p.Role))

		c.Next()
	}
}

// Require aborts unless the principal satisfies req.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) Require(req authz.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		if err := authz.Authorize(p, req); err != nil {
			response.FromError(c, err, "Forbidden")
			return
		}
		c.Next()
	}
}

// RequireAdmin is Require(authz.IsAdmin()).
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.Require(authz.IsAdmin())
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireAdmin)
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireAdmin(),
	}
}
