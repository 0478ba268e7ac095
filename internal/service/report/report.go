// internal/service/report/report.go
package report

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"qarilive-service/internal/domain/account"
	"qarilive-service/internal/domain/agent"
	"qarilive-service/internal/domain/report"
	"qarilive-service/internal/domain/submission"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SourceRegistry counts agents from the agents table instead of the
// identity directory.
const SourceRegistry = "registry"

// CSVHeader is the first line of every payout batch export.
const CSVHeader = "batch_id,type,identifier,approved_count,total_sales_rm,commission_pct,payout_amount_rm,created_at"

var hundred = decimal.NewFromInt(100)

type Directory interface {
	ListAllUsers(ctx context.Context) ([]account.User, error)
}

type Registry interface {
	ListAll(ctx context.Context) ([]agent.RegistryEntry, error)
}

type TotalsStore interface {
	ApprovedTotals(ctx context.Context, target submission.Target) (*submission.Totals, error)
}

type ReportService struct {
	directory Directory
	registry  Registry
	totals    TotalsStore
	now       func() time.Time
	logger    *zap.Logger
}

func NewReportService(directory Directory, registry Registry, totals TotalsStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		directory: directory,
		registry:  registry,
		totals:    totals,
		now:       time.Now,
		logger:    logger,
	}
}

// AgentStats counts agents per master-agent code.
func (s *ReportService) AgentStats(ctx context.Context, q *report.StatsQuery) (*report.AgentStats, error) {
	var (
		totalUsers int
		parents    []string
		known      []string
		users      []account.User
		err        error
	)

	if q.Source == SourceRegistry {
		entries, err := s.registry.ListAll(ctx)
		if err != nil {
			s.logger.Error("failed to list agent registry", zap.Error(err))
			return nil, err
		}
		totalUsers = len(entries)
		for _, e := range entries {
			parents = append(parents, identity.NormalizeCode(e.MACode))
		}
	}

	if q.Source != SourceRegistry || q.IncludeEmpty {
		users, err = s.directory.ListAllUsers(ctx)
		if err != nil {
			s.logger.Error("failed to list users for agent stats", zap.Error(err))
			return nil, xerrors.Relabel(err, "Failed to fetch users")
		}
	}

	for i := range users {
		u := &users[i]
		p := identity.Resolve(u.ID, u.Email, u.UserMetadata, u.Roles())
		switch p.Role {
		case identity.RoleAgent:
			if q.Source != SourceRegistry {
				parents = append(parents, p.ParentMACode)
			}
		case identity.RoleMasterAgent:
			if q.IncludeEmpty && p.MACode != "" {
				known = append(known, p.MACode)
			}
		}
	}
	if q.Source != SourceRegistry {
		totalUsers = len(users)
	}

	return &report.AgentStats{
		TotalUsers:    totalUsers,
		TotalAgents:   len(parents),
		ByMasterAgent: GroupAgentCounts(parents, known),
	}, nil
}

// GroupAgentCounts counts parent codes, skipping blanks. Every code in known
// gets a row even with no agents. Rows are ordered by count descending, then
// code ascending.
func GroupAgentCounts(parents, known []string) []report.MasterAgentCount {
	counts := make(map[string]int)
	for _, code := range known {
		if code != "" {
			counts[code] += 0
		}
	}
	for _, code := range parents {
		if code != "" {
			counts[code]++
		}
	}

	rows := make([]report.MasterAgentCount, 0, len(counts))
	for code, n := range counts {
		rows = append(rows, report.MasterAgentCount{MACode: code, AgentCount: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AgentCount != rows[j].AgentCount {
			return rows[i].AgentCount > rows[j].AgentCount
		}
		return rows[i].MACode < rows[j].MACode
	})
	return rows
}

// ParseTarget validates a type/id pair. Master-agent codes are upper-cased;
// agent ids are used as given.
func ParseTarget(typ, id string) (submission.Target, error) {
	typ = strings.TrimSpace(typ)
	id = strings.TrimSpace(id)
	if typ == "" || id == "" {
		return submission.Target{}, xerrors.Validation("Missing type or id")
	}

	switch submission.TargetKind(typ) {
	case submission.TargetMasterAgent:
		return submission.Target{Kind: submission.TargetMasterAgent, ID: strings.ToUpper(id)}, nil
	case submission.TargetAgent:
		return submission.Target{Kind: submission.TargetAgent, ID: id}, nil
	}
	return submission.Target{}, xerrors.Validation("Invalid type")
}

// Earnings returns the approved count and total for one target.
func (s *ReportService) Earnings(ctx context.Context, q *report.TargetQuery) (*submission.Totals, error) {
	target, err := ParseTarget(q.Type, q.ID)
	if err != nil {
		return nil, err
	}

	totals, err := s.totals.ApprovedTotals(ctx, target)
	if err != nil {
		s.logger.Error("failed to aggregate earnings", zap.String("type", string(target.Kind)), zap.String("id", target.ID), zap.Error(err))
		return nil, err
	}
	return totals, nil
}

// CreatePayoutBatch computes a one-off payout for a target. Nothing is stored.
func (s *ReportService) CreatePayoutBatch(ctx context.Context, req *report.PayoutBatchRequest) (*report.PayoutBatch, error) {
	target, err := ParseTarget(req.Type, req.ID)
	if err != nil {
		return nil, err
	}
	if req.CommissionPct == nil {
		return nil, xerrors.Validation(report.CommissionPctMessage)
	}
	pct := *req.CommissionPct

	totals, err := s.totals.ApprovedTotals(ctx, target)
	if err != nil {
		s.logger.Error("failed to aggregate payout batch", zap.String("type", string(target.Kind)), zap.String("id", target.ID), zap.Error(err))
		return nil, err
	}

	batch := &report.PayoutBatch{
		BatchID:        "PB-" + ulid.Make().String(),
		Type:           string(target.Kind),
		ID:             target.ID,
		ApprovedCount:  totals.ApprovedCount,
		TotalRM:        totals.TotalRM,
		CommissionPct:  pct,
		PayoutAmountRM: PayoutAmount(totals.TotalRM, pct),
		CreatedAt:      s.now().UTC(),
	}
	batch.CSV = RenderCSV(batch)

	s.logger.Info("payout batch computed",
		zap.String("batch_id", batch.BatchID),
		zap.String("type", batch.Type),
		zap.String("id", batch.ID),
		zap.String("payout_amount_rm", batch.PayoutAmountRM.StringFixed(2)),
	)
	return batch, nil
}

// PayoutAmount is total * pct / 100 rounded to 2 places.
func PayoutAmount(total, pct decimal.Decimal) decimal.Decimal {
	return total.Mul(pct).Div(hundred).Round(2)
}

// RenderCSV emits the header and one data row. Fields are never quoted, so
// separators inside values are replaced with spaces.
func RenderCSV(b *report.PayoutBatch) string {
	row := []string{
		csvField(b.BatchID),
		csvField(b.Type),
		csvField(b.ID),
		strconv.FormatInt(b.ApprovedCount, 10),
		b.TotalRM.StringFixed(2),
		b.CommissionPct.StringFixed(2),
		b.PayoutAmountRM.StringFixed(2),
		b.CreatedAt.Format(time.RFC3339),
	}
	return CSVHeader + "\n" + strings.Join(row, ",")
}

var csvReplacer = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")

func csvField(s string) string {
	return csvReplacer.Replace(s)
}
