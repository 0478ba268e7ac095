// internal/domain/account/dto.go
package account

import (
	"encoding/json"
	"strings"
)

type CreateUserRequest struct {
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Name     string `json:"name" binding:"max=255"`
	Role     string `json:"role" binding:"omitempty,oneof=master_agent agent"`
	ParentMA string `json:"parent_ma" binding:"max=50"`
}

// UnmarshalJSON trims and case-folds the fields before the binding rules
// see them.
func (r *CreateUserRequest) UnmarshalJSON(b []byte) error {
	type plain CreateUserRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = CreateUserRequest(p)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.ParentMA = strings.ToUpper(strings.TrimSpace(r.ParentMA))
	return nil
}

func (r *CreateUserRequest) BindingMessages() map[string]string {
	return map[string]string{
		"email":     "Invalid email",
		"name":      "Invalid name",
		"role":      "Invalid role",
		"parent_ma": "Invalid parent_ma",
	}
}

type UserIDRequest struct {
	ID string `json:"id"`
}

// Summary is the admin list row.
type Summary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ParentMA string `json:"parent_ma"`
	MACode   string `json:"ma_code,omitempty"`
	Disabled bool   `json:"disabled"`
}

type CreateUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RosterAgent is an agent as listed to its master agent.
type RosterAgent struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	WhatsApp  string `json:"whatsapp"`
	MARef     string `json:"ma_ref"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login"`
}
