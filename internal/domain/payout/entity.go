// internal/domain/payout/entity.go
package payout

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects which payout table a profile lives in.
type Kind string

const (
	KindMasterAgent Kind = "master_agent"
	KindAgent       Kind = "agent"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case KindMasterAgent:
		return KindMasterAgent, nil
	case KindAgent:
		return KindAgent, nil
	}
	return "", fmt.Errorf("invalid type %q", s)
}

// Profile is one owner's bank and contact details. OwnerID is the upsert key.
type Profile struct {
	OwnerID           string    `json:"user_id"`
	MACode            *string   `json:"ma_code"`
	FullName          string    `json:"full_name"`
	WhatsApp          string    `json:"whatsapp"`
	BankName          string    `json:"bank_name"`
	BankAccountName   string    `json:"bank_account_name"`
	BankAccountNumber string    `json:"bank_account_number"`
	UpdatedAt         time.Time `json:"updated_at"`
}
