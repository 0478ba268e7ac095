// internal/middleware/helpers.go
package middleware

import (
	"qarilive-service/internal/pkg/authz"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"
	"qarilive-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// GetPrincipal returns the caller resolved by Auth().
func GetPrincipal(c *gin.Context) (*identity.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}

	p, ok := v.(*identity.Principal)
	return p, ok && p != nil
}

// MustGetPrincipal gets the principal from context or panics
func MustGetPrincipal(c *gin.Context) *identity.Principal {
	p, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found in context")
	}
	return p
}

// RequestID returns the id LoggingMiddleware assigned to the request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// ScopeMACode picks the master-agent code a roster or submissions request is
// about: the requested one, else the caller's own. Only the owning master
// agent or an admin may read it. On failure the reply is already written.
func ScopeMACode(c *gin.Context, requested string) (string, bool) {
	p, _ := GetPrincipal(c)

	code := identity.NormalizeCode(requested)
	if code == "" && p != nil && p.Role == identity.RoleMasterAgent {
		code = p.MACode
	}
	if code == "" {
		response.FromError(c, xerrors.Validation("Missing ma_code. Example: ?ma_code=MA897"), "Missing ma_code")
		return "", false
	}

	if err := authz.Authorize(p, authz.AnyOf(authz.IsAdmin(), authz.OwnsMACode(code))); err != nil {
		response.FromError(c, err, "Forbidden")
		return "", false
	}
	return code, true
}
