// internal/domain/submission/entity.go
package submission

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Submission is an agent's commission claim. Only its status ever changes,
// and not through this service.
type Submission struct {
	ID               int64     `json:"id"`
	MACode           string    `json:"ma_code"`
	AgentUserID      string    `json:"agent_user_id"`
	AgentName        string    `json:"agent_name"`
	AgentEmail       string    `json:"agent_email"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	CustomerAddress  string    `json:"customer_address"`
	PurchaseAmountRM *string   `json:"purchase_amount_rm"`
	PurchaseDate     *string   `json:"purchase_date"`
	Notes            *string   `json:"notes"`
	ProofURL         string    `json:"proof_url"`
	ProofFileID      string    `json:"proof_file_id,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// TargetKind says whether a Target.ID is a master-agent code or an agent id.
type TargetKind string

const (
	TargetMasterAgent TargetKind = "master_agent"
	TargetAgent       TargetKind = "agent"
)

// Target scopes an aggregate to one master agent or one agent.
type Target struct {
	Kind TargetKind
	ID   string
}

// Totals is the approved-submission aggregate for a target.
type Totals struct {
	ApprovedCount int64
	TotalRM       decimal.Decimal
}
