// internal/repository/postgres/payout_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qarilive-service/internal/domain/payout"
	xerrors "qarilive-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// payoutQueries holds the statements for one payout table. Table and key
// column names are fixed here, never taken from input.
type payoutQueries struct {
	byOwner string
	byCode  string
	upsert  string
}

var payoutSQL = map[payout.Kind]payoutQueries{
	payout.KindMasterAgent: {
		byOwner: `
			SELECT user_id, ma_code, COALESCE(full_name, ''), COALESCE(whatsapp, ''),
			       COALESCE(bank_name, ''), COALESCE(bank_account_name, ''),
			       COALESCE(bank_account_number, ''), updated_at
			FROM ma_payout
			WHERE user_id = $1
			LIMIT 1
		`,
		byCode: `
			SELECT user_id, ma_code, COALESCE(full_name, ''), COALESCE(whatsapp, ''),
			       COALESCE(bank_name, ''), COALESCE(bank_account_name, ''),
			       COALESCE(bank_account_number, ''), updated_at
			FROM ma_payout
			WHERE ma_code = $1
			ORDER BY updated_at DESC
			LIMIT 1
		`,
		upsert: `
			INSERT INTO ma_payout (
				user_id, ma_code, full_name, whatsapp,
				bank_name, bank_account_name, bank_account_number, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				ma_code = COALESCE(EXCLUDED.ma_code, ma_payout.ma_code),
				full_name = EXCLUDED.full_name,
				whatsapp = EXCLUDED.whatsapp,
				bank_name = EXCLUDED.bank_name,
				bank_account_name = EXCLUDED.bank_account_name,
				bank_account_number = EXCLUDED.bank_account_number,
				updated_at = NOW()
			RETURNING ma_code, updated_at
		`,
	},
	payout.KindAgent: {
		byOwner: `
			SELECT agent_user_id, ma_code, COALESCE(full_name, ''), COALESCE(whatsapp, ''),
			       COALESCE(bank_name, ''), COALESCE(bank_account_name, ''),
			       COALESCE(bank_account_number, ''), updated_at
			FROM agent_payout_details
			WHERE agent_user_id = $1
			LIMIT 1
		`,
		upsert: `
			INSERT INTO agent_payout_details (
				agent_user_id, ma_code, full_name, whatsapp,
				bank_name, bank_account_name, bank_account_number, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (agent_user_id) DO UPDATE SET
				ma_code = COALESCE(EXCLUDED.ma_code, agent_payout_details.ma_code),
				full_name = EXCLUDED.full_name,
				whatsapp = EXCLUDED.whatsapp,
				bank_name = EXCLUDED.bank_name,
				bank_account_name = EXCLUDED.bank_account_name,
				bank_account_number = EXCLUDED.bank_account_number,
				updated_at = NOW()
			RETURNING ma_code, updated_at
		`,
	},
}

type PayoutRepository struct {
	db *pgxpool.Pool
}

func NewPayoutRepository(db *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func queriesFor(kind payout.Kind) (payoutQueries, error) {
	q, ok := payoutSQL[kind]
	if !ok {
		return payoutQueries{}, fmt.Errorf("unknown payout kind %q", kind)
	}
	return q, nil
}

// Get returns the owner's profile or xerrors.ErrNotFound.
func (r *PayoutRepository) Get(ctx context.Context, kind payout.Kind, ownerID string) (*payout.Profile, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}
	return r.scanOne(ctx, q.byOwner, ownerID)
}

// Upsert inserts or replaces the owner's profile in one statement. A nil
// MACode keeps whatever code the row already had.
func (r *PayoutRepository) Upsert(ctx context.Context, kind payout.Kind, p *payout.Profile) error {
	q, err := queriesFor(kind)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, q.upsert,
		p.OwnerID, p.MACode, p.FullName, p.WhatsApp,
		p.BankName, p.BankAccountName, p.BankAccountNumber,
	).Scan(&p.MACode, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert %s payout profile: %w", kind, err)
	}
	return nil
}

// FindByOwnerOrCode resolves a shared key. A UUID-shaped key is tried as an
// owner id first; master-agent profiles are then tried by upper-cased code.
func (r *PayoutRepository) FindByOwnerOrCode(ctx context.Context, kind payout.Kind, key string) (*payout.Profile, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, xerrors.ErrNotFound
	}

	if _, perr := uuid.Parse(key); perr == nil || q.byCode == "" {
		p, err := r.scanOne(ctx, q.byOwner, key)
		if err == nil || !errors.Is(err, xerrors.ErrNotFound) || q.byCode == "" {
			return p, err
		}
	}

	return r.scanOne(ctx, q.byCode, strings.ToUpper(key))
}

func (r *PayoutRepository) scanOne(ctx context.Context, query string, arg string) (*payout.Profile, error) {
	var p payout.Profile
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.OwnerID, &p.MACode, &p.FullName, &p.WhatsApp,
		&p.BankName, &p.BankAccountName, &p.BankAccountNumber, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payout profile: %w", err)
	}
	return &p, nil
}
