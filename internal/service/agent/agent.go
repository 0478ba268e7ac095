// internal/service/agent/agent.go
package agent

import (
	"context"
	"strings"

	"qarilive-service/internal/domain/agent"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"

	"go.uber.org/zap"
)

type Registry interface {
	Upsert(ctx context.Context, e *agent.RegistryEntry) error
}

type AgentService struct {
	registry Registry
	logger   *zap.Logger
}

func NewAgentService(registry Registry, logger *zap.Logger) *AgentService {
	return &AgentService{
		registry: registry,
		logger:   logger,
	}
}

// Register records the calling agent in the registry, touching last_login.
// Fields missing from the request are taken from the caller's token.
func (s *AgentService) Register(ctx context.Context, p *identity.Principal, req *agent.RegisterRequest) (*agent.RegistryEntry, error) {
	e := &agent.RegistryEntry{
		UserID:   p.UserID,
		MACode:   identity.NormalizeCode(req.MACode),
		FullName: strings.TrimSpace(req.FullName),
		WhatsApp: strings.TrimSpace(req.WhatsApp),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if e.MACode == "" {
		e.MACode = p.ParentMACode
	}
	if e.MACode == "" {
		return nil, xerrors.Validation("Missing ma_code")
	}
	if e.FullName == "" {
		e.FullName = p.Name
	}
	if e.Email == "" {
		e.Email = strings.ToLower(p.Email)
	}

	if err := s.registry.Upsert(ctx, e); err != nil {
		s.logger.Error("failed to register agent", zap.String("user_id", p.UserID), zap.String("ma_code", e.MACode), zap.Error(err))
		return nil, err
	}

	s.logger.Info("agent registered", zap.String("user_id", p.UserID), zap.String("ma_code", e.MACode))
	return e, nil
}
