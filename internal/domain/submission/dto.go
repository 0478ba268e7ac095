// internal/domain/submission/dto.go
package submission

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type CreateRequest struct {
	MACode           string     `json:"ma_code"`
	AgentEmail       string     `json:"agent_email" binding:"max=255"`
	AgentName        string     `json:"agent_name"`
	CustomerName     string     `json:"customer_name"`
	CustomerPhone    string     `json:"customer_phone"`
	CustomerAddress  string     `json:"customer_address"`
	PurchaseAmountRM NumberText `json:"purchase_amount_rm"`
	PurchaseDate     string     `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	Notes            string     `json:"notes"`
	ProofDataURL     string     `json:"proof_data_url"`
	ProofFilename    string     `json:"proof_filename"`
}

// UnmarshalJSON trims purchase_date before the binding rules see it.
func (r *CreateRequest) UnmarshalJSON(b []byte) error {
	type plain CreateRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = CreateRequest(p)
	r.PurchaseDate = strings.TrimSpace(r.PurchaseDate)
	return nil
}

func (r *CreateRequest) BindingMessages() map[string]string {
	return map[string]string{
		"purchase_date": "Invalid purchase_date (expected YYYY-MM-DD)",
		"agent_email":   "Invalid agent_email",
	}
}

type CreateResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProofURL  string    `json:"proof_url"`
}

type ListQuery struct {
	MACode string `form:"ma_code"`
	Status string `form:"status"`
}

// NumberText holds a JSON number or string as its literal text, so amounts
// keep their exact digits until they are parsed as decimals.
type NumberText string

func (n *NumberText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NumberText(num.String())
	return nil
}
