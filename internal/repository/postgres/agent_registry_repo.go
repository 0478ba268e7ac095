// internal/repository/postgres/agent_registry_repo.go
package postgres

import (
	"context"
	"fmt"

	"qarilive-service/internal/domain/agent"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRegistryRepository struct {
	db *pgxpool.Pool
}

func NewAgentRegistryRepository(db *pgxpool.Pool) *AgentRegistryRepository {
	return &AgentRegistryRepository{db: db}
}

// Upsert records the agent and touches last_login. created_at is only ever
// set by the first insert.
func (r *AgentRegistryRepository) Upsert(ctx context.Context, e *agent.RegistryEntry) error {
	query := `
		INSERT INTO agents (user_id, ma_code, full_name, whatsapp, email, last_login)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			ma_code = EXCLUDED.ma_code,
			full_name = EXCLUDED.full_name,
			whatsapp = EXCLUDED.whatsapp,
			email = EXCLUDED.email,
			last_login = NOW()
		RETURNING created_at, last_login
	`

	err := r.db.QueryRow(ctx, query,
		e.UserID, e.MACode, e.FullName, e.WhatsApp, e.Email,
	).Scan(&e.CreatedAt, &e.LastLogin)
	if err != nil {
		return fmt.Errorf("failed to upsert agent: %w", err)
	}
	return nil
}

// ListByMACode returns the master agent's roster, newest first.
func (r *AgentRegistryRepository) ListByMACode(ctx context.Context, maCode string) ([]agent.RegistryEntry, error) {
	query := `
		SELECT user_id, ma_code, COALESCE(full_name, ''), COALESCE(whatsapp, ''),
		       COALESCE(email, ''), created_at, last_login
		FROM agents
		WHERE ma_code = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, maCode)
}

// ListAll returns every registered agent.
func (r *AgentRegistryRepository) ListAll(ctx context.Context) ([]agent.RegistryEntry, error) {
	query := `
		SELECT user_id, ma_code, COALESCE(full_name, ''), COALESCE(whatsapp, ''),
		       COALESCE(email, ''), created_at, last_login
		FROM agents
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

func (r *AgentRegistryRepository) CountByMACode(ctx context.Context, maCode string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM agents WHERE ma_code = $1`, maCode).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}
	return count, nil
}

func (r *AgentRegistryRepository) list(ctx context.Context, query string, args ...interface{}) ([]agent.RegistryEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	entries := []agent.RegistryEntry{}
	for rows.Next() {
		var e agent.RegistryEntry
		if err := rows.Scan(
			&e.UserID, &e.MACode, &e.FullName, &e.WhatsApp,
			&e.Email, &e.CreatedAt, &e.LastLogin,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agents: %w", err)
	}
	return entries, nil
}
