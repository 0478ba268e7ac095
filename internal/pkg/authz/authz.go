// Package authz is the single authorization gate every handler goes through.
package authz

import (
	"strings"

	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"
)

type kind int

const (
	kindAuthenticated kind = iota
	kindAdmin
	kindOwnsMACode
	kindSelf
	kindAnyOf
)

// Requirement is one capability a request needs.
type Requirement struct {
	kind  kind
	value string
	anyOf []Requirement
}

func IsAuthenticated() Requirement { return Requirement{kind: kindAuthenticated} }

func IsAdmin() Requirement { return Requirement{kind: kindAdmin} }

// OwnsMACode holds when the caller is the master agent owning code.
func OwnsMACode(code string) Requirement {
	return Requirement{kind: kindOwnsMACode, value: identity.NormalizeCode(code)}
}

// IsSelf holds when the caller's user id equals userID.
func IsSelf(userID string) Requirement {
	return Requirement{kind: kindSelf, value: strings.TrimSpace(userID)}
}

// AnyOf holds when at least one of reqs holds.
func AnyOf(reqs ...Requirement) Requirement {
	return Requirement{kind: kindAnyOf, anyOf: reqs}
}

// Authorize returns nil, an ErrUnauthenticated for a missing principal, or an
// ErrForbidden when the principal lacks the capability.
func Authorize(p *identity.Principal, req Requirement) error {
	if p == nil || p.UserID == "" {
		return xerrors.Unauthenticated("Unauthorized")
	}
	if holds(p, req) {
		return nil
	}
	return xerrors.Forbidden(denialMessage(req))
}

func holds(p *identity.Principal, req Requirement) bool {
	switch req.kind {
	case kindAuthenticated:
		return true
	case kindAdmin:
		return p.IsAdmin()
	case kindOwnsMACode:
		return req.value != "" && p.Role == identity.RoleMasterAgent && p.MACode == req.value
	case kindSelf:
		return req.value != "" && p.UserID == req.value
	case kindAnyOf:
		for _, r := range req.anyOf {
			if holds(p, r) {
				return true
			}
		}
	}
	return false
}

func denialMessage(req Requirement) string {
	switch req.kind {
	case kindAdmin:
		return "Forbidden (admin only)"
	case kindOwnsMACode:
		return "Forbidden. ma_code does not match your account."
	case kindSelf:
		return "Forbidden. Not your account."
	case kindAnyOf:
		if len(req.anyOf) > 0 {
			return denialMessage(req.anyOf[len(req.anyOf)-1])
		}
	}
	return "Forbidden"
}
