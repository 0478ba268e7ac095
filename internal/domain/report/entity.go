// internal/domain/report/entity.go
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// MasterAgentCount is one row of the grouped agent count.
type MasterAgentCount struct {
	MACode     string `json:"ma_code"`
	AgentCount int    `json:"agent_count"`
}

type AgentStats struct {
	TotalUsers    int                `json:"totalUsers"`
	TotalAgents   int                `json:"totalAgents"`
	ByMasterAgent []MasterAgentCount `json:"byMasterAgent"`
}

// PayoutBatch is computed per request and never stored.
type PayoutBatch struct {
	BatchID        string
	Type           string
	ID             string
	ApprovedCount  int64
	TotalRM        decimal.Decimal
	CommissionPct  decimal.Decimal
	PayoutAmountRM decimal.Decimal
	CreatedAt      time.Time
	CSV            string
}
