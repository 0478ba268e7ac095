// internal/domain/agent/dto.go
package agent

type RegisterRequest struct {
	MACode   string `json:"ma_code"`
	FullName string `json:"full_name"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
}

type RosterQuery struct {
	MACode string `form:"ma_code"`
	Source string `form:"source"`
}
