// internal/domain/payout/dto.go
package payout

type SetProfileRequest struct {
	FullName          string `json:"full_name"`
	WhatsApp          string `json:"whatsapp"`
	BankName          string `json:"bank_name"`
	BankAccountName   string `json:"bank_account_name"`
	BankAccountNumber string `json:"bank_account_number"`
}

type LookupQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=master_agent agent"`
	ID   string `form:"id" binding:"max=100"`
}

func (q *LookupQuery) BindingMessages() map[string]string {
	return map[string]string{"type": "Invalid type", "id": "Invalid id"}
}

// Card is the public face of a master agent behind a shared referral link.
// It never carries bank details.
type Card struct {
	MACode   string `json:"ma_code"`
	FullName string `json:"full_name"`
	WhatsApp string `json:"whatsapp"`
}
