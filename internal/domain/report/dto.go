package report

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type StatsQuery struct {
	Source       string `form:"source"`
	IncludeEmpty bool   `form:"include_empty"`
}

type TargetQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=master_agent agent"`
	ID   string `form:"id" binding:"max=100"`
}

func (q *TargetQuery) BindingMessages() map[string]string {
	return map[string]string{"type": "Invalid type", "id": "Invalid id"}
}

type PayoutBatchRequest struct {
	Type          string           `json:"type" binding:"omitempty,oneof=master_agent agent"`
	ID            string           `json:"id" binding:"max=100"`
	CommissionPct *decimal.Decimal `json:"commission_pct" binding:"required,gte=0,lte=100"`
}

// UnmarshalJSON trims type and id before the binding rules see them.
func (r *PayoutBatchRequest) UnmarshalJSON(b []byte) error {
	type plain PayoutBatchRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = PayoutBatchRequest(p)
	r.Type = strings.TrimSpace(r.Type)
	r.ID = strings.TrimSpace(r.ID)
	return nil
}

func (r *PayoutBatchRequest) BindingMessages() map[string]string {
	return map[string]string{
		"type":           "Invalid type",
		"id":             "Invalid id",
		"commission_pct": CommissionPctMessage,
	}
}

// CommissionPctMessage is the reply to a missing or out-of-range percentage.
const CommissionPctMessage = "commission_pct must be between 0 and 100"
