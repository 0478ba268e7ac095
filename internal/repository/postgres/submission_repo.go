// internal/repository/postgres/submission_repo.go
package postgres

import (
	"context"
	"fmt"

	"qarilive-service/internal/domain/submission"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ListLimit caps every submission listing.
const ListLimit = 500

const submissionColumns = `
	id, ma_code, COALESCE(agent_user_id, ''), COALESCE(agent_name, ''), COALESCE(agent_email, ''),
	COALESCE(customer_name, ''), COALESCE(customer_phone, ''), COALESCE(customer_address, ''),
	purchase_amount_rm::text, purchase_date::text, notes,
	COALESCE(proof_url, ''), COALESCE(proof_file_id, ''), COALESCE(status, 'pending'), created_at
`

type SubmissionRepository struct {
	db *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts the claim and fills in ID, Status and CreatedAt.
func (r *SubmissionRepository) Create(ctx context.Context, s *submission.Submission) error {
	query := `
		INSERT INTO agent_submissions (
			ma_code, agent_user_id, agent_email, agent_name,
			customer_name, customer_phone, customer_address,
			purchase_amount_rm, purchase_date, notes,
			proof_url, proof_file_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::date, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	if s.Status == "" {
		s.Status = submission.StatusPending
	}

	err := r.db.QueryRow(ctx, query,
		s.MACode, s.AgentUserID, s.AgentEmail, s.AgentName,
		s.CustomerName, s.CustomerPhone, s.CustomerAddress,
		s.PurchaseAmountRM, s.PurchaseDate, s.Notes,
		s.ProofURL, s.ProofFileID, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// ListByAgent returns the agent's own claims, newest first.
func (r *SubmissionRepository) ListByAgent(ctx context.Context, agentUserID string) ([]submission.Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM agent_submissions
		WHERE agent_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, agentUserID, ListLimit)
}

// ListByMACode returns the master agent's claims, newest first. An empty
// status matches every status.
func (r *SubmissionRepository) ListByMACode(ctx context.Context, maCode, status string) ([]submission.Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM agent_submissions
		WHERE ma_code = $1
		  AND ($2 = '' OR COALESCE(status, 'pending') = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	return r.list(ctx, query, maCode, status, ListLimit)
}

// ApprovedTotals counts and sums approved claims for one target. A null
// status counts as pending.
func (r *SubmissionRepository) ApprovedTotals(ctx context.Context, target submission.Target) (*submission.Totals, error) {
	var query string
	switch target.Kind {
	case submission.TargetMasterAgent:
		query = `
			SELECT COUNT(*), COALESCE(SUM(purchase_amount_rm), 0)::text
			FROM agent_submissions
			WHERE ma_code = $1
			  AND COALESCE(status, 'pending') = 'approved'
		`
	case submission.TargetAgent:
		query = `
			SELECT COUNT(*), COALESCE(SUM(purchase_amount_rm), 0)::text
			FROM agent_submissions
			WHERE agent_user_id = $1
			  AND COALESCE(status, 'pending') = 'approved'
		`
	default:
		return nil, fmt.Errorf("unknown aggregate target %q", target.Kind)
	}

	var (
		totals submission.Totals
		sum    string
	)
	if err := r.db.QueryRow(ctx, query, target.ID).Scan(&totals.ApprovedCount, &sum); err != nil {
		return nil, fmt.Errorf("failed to aggregate submissions: %w", err)
	}

	total, err := decimal.NewFromString(sum)
	if err != nil {
		return nil, fmt.Errorf("failed to parse submission total %q: %w", sum, err)
	}
	totals.TotalRM = total
	return &totals, nil
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]submission.Submission, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := []submission.Submission{}
	for rows.Next() {
		var s submission.Submission
		if err := rows.Scan(
			&s.ID, &s.MACode, &s.AgentUserID, &s.AgentName, &s.AgentEmail,
			&s.CustomerName, &s.CustomerPhone, &s.CustomerAddress,
			&s.PurchaseAmountRM, &s.PurchaseDate, &s.Notes,
			&s.ProofURL, &s.ProofFileID, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return subs, nil
}
