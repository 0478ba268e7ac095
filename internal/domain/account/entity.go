// internal/domain/account/entity.go
package account

// User is an identity-provider record as returned by the admin API.
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	LastLogin    string                 `json:"last_login,omitempty"`
	ConfirmedAt  string                 `json:"confirmed_at,omitempty"`
}

// Roles reads app_metadata.roles, skipping non-string entries.
func (u *User) Roles() []string {
	raw, ok := u.AppMetadata["roles"].([]interface{})
	if !ok {
		if roles, ok := u.AppMetadata["roles"].([]string); ok {
			return roles
		}
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// Disabled reports app_metadata.banned.
func (u *User) Disabled() bool {
	banned, _ := u.AppMetadata["banned"].(bool)
	return banned
}

// Patch is a partial metadata update. Keys are merged into the existing
// metadata maps, never replacing them wholesale.
type Patch struct {
	UserMetadata map[string]interface{}
	AppMetadata  map[string]interface{}
}
