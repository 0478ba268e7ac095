// internal/repository/redisstore/card_store.go
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"qarilive-service/internal/domain/payout"
	xerrors "qarilive-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const cardKeyPrefix = "masterAgents:"

// CardStore keeps the public card of each master agent keyed by code, for
// referral links that must resolve without a database round trip.
type CardStore struct {
	client *redis.Client
}

func NewCardStore(client *redis.Client) *CardStore {
	return &CardStore{client: client}
}

func cardKey(code string) string {
	return cardKeyPrefix + strings.ToUpper(strings.TrimSpace(code))
}

// Put stores the card under its code. Cards never expire.
func (s *CardStore) Put(ctx context.Context, card *payout.Card) error {
	if strings.TrimSpace(card.MACode) == "" {
		return fmt.Errorf("card has no ma_code")
	}

	raw, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to encode card: %w", err)
	}
	if err := s.client.Set(ctx, cardKey(card.MACode), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store card: %w", err)
	}
	return nil
}

// Get returns the card or xerrors.ErrNotFound.
func (s *CardStore) Get(ctx context.Context, code string) (*payout.Card, error) {
	raw, err := s.client.Get(ctx, cardKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read card: %w", err)
	}

	var card payout.Card
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("failed to decode card: %w", err)
	}
	return &card, nil
}
