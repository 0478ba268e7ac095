// Package identity derives a caller's role and master-agent codes from
// identity-provider metadata. Token claims and directory user records share
// the same resolution rules.
package identity

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleMasterAgent Role = "master_agent"
	RoleAgent       Role = "agent"
	RoleUnknown     Role = "unknown"
)

// Metadata keys in precedence order. Changing either list changes which
// agents are counted under which master agent.
var (
	MACodeKeys       = []string{"ma_code", "parent_ma_code", "ma_ref", "ref", "parent_ma"}
	ParentMACodeKeys = []string{"parent_ma_code", "ma_code", "parent_ma"}
)

// roleListPriority is consulted when user_metadata.role is absent or unknown.
var roleListPriority = []Role{RoleMasterAgent, RoleAgent, RoleAdmin}

// Principal is the resolved view of an account.
type Principal struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email,omitempty"`
	Name         string   `json:"name,omitempty"`
	Role         Role     `json:"role"`
	Roles        []string `json:"roles,omitempty"`
	MACode       string   `json:"ma_code,omitempty"`
	ParentMACode string   `json:"parent_ma_code,omitempty"`
}

// IsAdmin holds when the resolved role is admin or admin appears in the
// raw roles list.
func (p *Principal) IsAdmin() bool {
	if p == nil {
		return false
	}
	if p.Role == RoleAdmin {
		return true
	}
	for _, r := range p.Roles {
		if strings.EqualFold(strings.TrimSpace(r), string(RoleAdmin)) {
			return true
		}
	}
	return false
}

// Code returns the master-agent code the principal belongs to: its own code
// for a master agent, the parent code for an agent.
func (p *Principal) Code() string {
	if p == nil {
		return ""
	}
	if p.Role == RoleMasterAgent {
		return p.MACode
	}
	return p.ParentMACode
}

// Resolve builds a Principal from raw metadata. Nil maps are fine.
func Resolve(userID, email string, userMeta map[string]interface{}, roles []string) *Principal {
	p := &Principal{
		UserID: strings.TrimSpace(userID),
		Email:  strings.TrimSpace(email),
		Name:   DisplayName(userMeta),
		Role:   ResolveRole(userMeta, roles),
		Roles:  roles,
	}

	switch p.Role {
	case RoleMasterAgent:
		p.MACode = ResolveMACode(userMeta)
	case RoleAgent:
		p.ParentMACode = ResolveParentMACode(userMeta)
	}

	return p
}

// ResolveRole reads user_metadata.role first, then the roles list.
func ResolveRole(userMeta map[string]interface{}, roles []string) Role {
	if r, ok := parseRole(metaString(userMeta, "role")); ok {
		return r
	}

	for _, candidate := range roleListPriority {
		for _, r := range roles {
			if parsed, ok := parseRole(r); ok && parsed == candidate {
				return candidate
			}
		}
	}

	return RoleUnknown
}

// ResolveMACode returns a master agent's own code.
func ResolveMACode(userMeta map[string]interface{}) string {
	return firstCode(userMeta, MACodeKeys)
}

// ResolveParentMACode returns the code of an agent's master agent.
func ResolveParentMACode(userMeta map[string]interface{}) string {
	return firstCode(userMeta, ParentMACodeKeys)
}

// NormalizeCode trims and upper-cases a master-agent code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName prefers full_name over name.
func DisplayName(userMeta map[string]interface{}) string {
	if v := metaString(userMeta, "full_name"); v != "" {
		return v
	}
	return metaString(userMeta, "name")
}

func parseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMasterAgent:
		return RoleMasterAgent, true
	case RoleAgent:
		return RoleAgent, true
	}
	return "", false
}

func firstCode(meta map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if v := NormalizeCode(metaString(meta, k)); v != "" {
			return v
		}
	}
	return ""
}

// metaString reads a scalar metadata value as a trimmed string.
func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	switch v := meta[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
