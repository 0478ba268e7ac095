// internal/domain/agent/entity.go
package agent

import "time"

// RegistryEntry is the denormalized agents row used for roster listing
// without a call to the identity provider.
type RegistryEntry struct {
	UserID    string     `json:"user_id"`
	MACode    string     `json:"ma_code"`
	FullName  string     `json:"full_name"`
	WhatsApp  string     `json:"whatsapp"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
