// internal/service/payout/payout.go
package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qarilive-service/internal/domain/payout"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"

	"go.uber.org/zap"
)

type Store interface {
	Get(ctx context.Context, kind payout.Kind, ownerID string) (*payout.Profile, error)
	Upsert(ctx context.Context, kind payout.Kind, p *payout.Profile) error
	FindByOwnerOrCode(ctx context.Context, kind payout.Kind, key string) (*payout.Profile, error)
}

type CardStore interface {
	Put(ctx context.Context, card *payout.Card) error
	Get(ctx context.Context, code string) (*payout.Card, error)
}

type PayoutService struct {
	store  Store
	cards  CardStore
	logger *zap.Logger
}

func NewPayoutService(store Store, cards CardStore, logger *zap.Logger) *PayoutService {
	return &PayoutService{
		store:  store,
		cards:  cards,
		logger: logger,
	}
}

// GetOwn returns the caller's profile, or nil when none was saved yet.
func (s *PayoutService) GetOwn(ctx context.Context, p *identity.Principal, kind payout.Kind) (*payout.Profile, error) {
	profile, err := s.store.Get(ctx, kind, p.UserID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to load payout profile", zap.String("kind", string(kind)), zap.String("user_id", p.UserID), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// SetOwn upserts the caller's profile. Agents must supply all three bank
// fields. A master agent's public card is refreshed on every save.
func (s *PayoutService) SetOwn(ctx context.Context, p *identity.Principal, kind payout.Kind, req *payout.SetProfileRequest) (*payout.Profile, error) {
	profile := &payout.Profile{
		OwnerID:           p.UserID,
		FullName:          strings.TrimSpace(req.FullName),
		WhatsApp:          strings.TrimSpace(req.WhatsApp),
		BankName:          strings.TrimSpace(req.BankName),
		BankAccountName:   strings.TrimSpace(req.BankAccountName),
		BankAccountNumber: strings.TrimSpace(req.BankAccountNumber),
	}

	var code string
	switch kind {
	case payout.KindMasterAgent:
		code = p.MACode
	case payout.KindAgent:
		if profile.BankName == "" || profile.BankAccountName == "" || profile.BankAccountNumber == "" {
			return nil, xerrors.Validation("Missing bank fields.")
		}
		code = p.ParentMACode
	default:
		return nil, fmt.Errorf("unknown payout kind %q", kind)
	}
	if code != "" {
		profile.MACode = &code
	}

	if err := s.store.Upsert(ctx, kind, profile); err != nil {
		s.logger.Error("failed to save payout profile", zap.String("kind", string(kind)), zap.String("user_id", p.UserID), zap.Error(err))
		return nil, err
	}

	if kind == payout.KindMasterAgent && profile.MACode != nil && *profile.MACode != "" {
		s.publishCard(ctx, profile)
	}

	s.logger.Info("payout profile saved", zap.String("kind", string(kind)), zap.String("user_id", p.UserID))
	return profile, nil
}

// Lookup resolves a profile for an admin by owner id or master-agent code.
// A miss is not an error; the caller gets nil.
func (s *PayoutService) Lookup(ctx context.Context, typ, id string) (*payout.Profile, error) {
	typ = strings.TrimSpace(typ)
	id = strings.TrimSpace(id)
	if typ == "" || id == "" {
		return nil, xerrors.Validation("Missing type or id")
	}
	kind, err := payout.ParseKind(typ)
	if err != nil {
		return nil, xerrors.Validation("Invalid type")
	}

	profile, err := s.store.FindByOwnerOrCode(ctx, kind, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Card resolves a referral ref to the master agent's public card. The card
// store is tried first; on a miss the payout table answers and the card is
// written back.
//
// Owner ids are case-sensitive, so the repository gets the ref as sent and
// upper-cases it only when matching on code.
func (s *PayoutService) Card(ctx context.Context, ref string) (*payout.Card, error) {
	key := strings.TrimSpace(ref)
	ref = identity.NormalizeCode(key)
	if ref == "" {
		return nil, xerrors.Validation("Missing ref")
	}

	if s.cards != nil {
		card, err := s.cards.Get(ctx, ref)
		if err == nil {
			return card, nil
		}
		if !errors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("card store unavailable, falling back to database", zap.String("ma_code", ref), zap.Error(err))
		}
	}

	profile, err := s.store.FindByOwnerOrCode(ctx, payout.KindMasterAgent, key)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.NotFound(fmt.Sprintf("Master Agent not found for REF: %s", ref))
	}
	if err != nil {
		return nil, err
	}

	card := cardFor(profile)
	if card.MACode == "" {
		card.MACode = ref
	}
	s.publishCard(ctx, profile)
	return card, nil
}

func cardFor(p *payout.Profile) *payout.Card {
	card := &payout.Card{FullName: p.FullName, WhatsApp: p.WhatsApp}
	if p.MACode != nil {
		card.MACode = identity.NormalizeCode(*p.MACode)
	}
	return card
}

// publishCard never fails the caller; a stale card is repaired on next read.
func (s *PayoutService) publishCard(ctx context.Context, p *payout.Profile) {
	if s.cards == nil {
		return
	}
	card := cardFor(p)
	if card.MACode == "" {
		return
	}
	if err := s.cards.Put(ctx, card); err != nil {
		s.logger.Warn("failed to publish master agent card", zap.String("ma_code", card.MACode), zap.Error(err))
	}
}
