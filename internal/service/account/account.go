// internal/service/account/account.go
package account

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"qarilive-service/internal/domain/account"
	"qarilive-service/internal/domain/agent"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"

	"go.uber.org/zap"
)

// SourceRegistry selects the agents table instead of the identity directory.
const SourceRegistry = "registry"

// Directory is the identity provider's admin API.
type Directory interface {
	ListAllUsers(ctx context.Context) ([]account.User, error)
	InviteUser(ctx context.Context, email string) (*account.User, error)
	UpdateUser(ctx context.Context, id string, patch account.Patch) (*account.User, error)
	DeleteUser(ctx context.Context, id string) error
	DisableUser(ctx context.Context, id string) (*account.User, error)
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
}

// Registry is the agents table.
type Registry interface {
	ListByMACode(ctx context.Context, maCode string) ([]agent.RegistryEntry, error)
	CountByMACode(ctx context.Context, maCode string) (int, error)
}

type AccountService struct {
	directory Directory
	registry  Registry
	logger    *zap.Logger
}

func NewAccountService(directory Directory, registry Registry, logger *zap.Logger) *AccountService {
	return &AccountService{
		directory: directory,
		registry:  registry,
		logger:    logger,
	}
}

// Principal resolves a directory record the same way a token is resolved.
func Principal(u *account.User) *identity.Principal {
	return identity.Resolve(u.ID, u.Email, u.UserMetadata, u.Roles())
}

// ListUsers returns every account with its resolved role and codes.
func (s *AccountService) ListUsers(ctx context.Context) ([]account.Summary, error) {
	users, err := s.directory.ListAllUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, xerrors.Relabel(err, "Failed to fetch users")
	}

	out := make([]account.Summary, 0, len(users))
	for i := range users {
		u := &users[i]
		p := Principal(u)
		out = append(out, account.Summary{
			ID:       u.ID,
			Email:    u.Email,
			Name:     p.Name,
			Role:     string(p.Role),
			ParentMA: p.ParentMACode,
			MACode:   p.MACode,
			Disabled: u.Disabled(),
		})
	}
	return out, nil
}

// CreateUser invites the address and then stamps role and parent code onto
// the new account. Email format and the role set are enforced when the
// request is bound.
func (s *AccountService) CreateUser(ctx context.Context, req *account.CreateUserRequest) (*account.CreateUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	role := identity.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	parentMA := identity.NormalizeCode(req.ParentMA)

	if email == "" || name == "" {
		return nil, xerrors.Validation("Email and name are required")
	}
	if role == "" {
		return nil, xerrors.Validation("Invalid role")
	}
	if role == identity.RoleAgent && parentMA == "" {
		return nil, xerrors.Validation("Agent requires parent_ma")
	}

	invited, err := s.directory.InviteUser(ctx, email)
	if err != nil {
		s.logger.Error("failed to invite user", zap.String("email", email), zap.Error(err))
		return nil, xerrors.Relabel(err, "Invite failed")
	}

	userID := invited.ID
	if userID == "" {
		userID, err = s.directory.FindUserIDByEmail(ctx, email)
		if err != nil {
			return nil, xerrors.Relabel(err, "Invite succeeded but user lookup failed")
		}
		if userID == "" {
			return nil, fmt.Errorf("%w: invite for %s succeeded but the user id could not be found", xerrors.ErrInternal, email)
		}
	}

	userMeta := map[string]interface{}{
		"full_name": name,
		"role":      string(role),
	}
	if role == identity.RoleAgent {
		userMeta["parent_ma_code"] = parentMA
	}

	_, err = s.directory.UpdateUser(ctx, userID, account.Patch{
		UserMetadata: userMeta,
		AppMetadata:  map[string]interface{}{"roles": []string{string(role)}},
	})
	if err != nil {
		s.logger.Error("failed to set role on invited user", zap.String("user_id", userID), zap.Error(err))
		return nil, xerrors.Relabel(err, "Update user failed")
	}

	s.logger.Info("user invited",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("parent_ma", parentMA),
	)

	return &account.CreateUserResponse{ID: userID, Email: email, Role: string(role)}, nil
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return xerrors.Validation("Missing id")
	}

	if err := s.directory.DeleteUser(ctx, id); err != nil {
		s.logger.Error("failed to delete user", zap.String("user_id", id), zap.Error(err))
		return xerrors.Relabel(err, "Delete failed")
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *AccountService) DisableUser(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return xerrors.Validation("Missing id")
	}

	if _, err := s.directory.DisableUser(ctx, id); err != nil {
		s.logger.Error("failed to disable user", zap.String("user_id", id), zap.Error(err))
		return xerrors.Relabel(err, "Disable failed")
	}

	s.logger.Info("user disabled", zap.String("user_id", id))
	return nil
}

// ListAgents returns the master agent's roster, newest first.
func (s *AccountService) ListAgents(ctx context.Context, maCode, source string) ([]account.RosterAgent, error) {
	maCode = identity.NormalizeCode(maCode)
	if maCode == "" {
		return nil, xerrors.Validation("Missing ma_code")
	}

	if source == SourceRegistry {
		entries, err := s.registry.ListByMACode(ctx, maCode)
		if err != nil {
			return nil, err
		}
		out := make([]account.RosterAgent, 0, len(entries))
		for _, e := range entries {
			r := account.RosterAgent{
				ID:        e.UserID,
				Email:     e.Email,
				FullName:  e.FullName,
				WhatsApp:  e.WhatsApp,
				MARef:     e.MACode,
				CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
			}
			if e.LastLogin != nil {
				r.LastLogin = e.LastLogin.UTC().Format(time.RFC3339)
			}
			out = append(out, r)
		}
		return out, nil
	}

	users, err := s.directory.ListAllUsers(ctx)
	if err != nil {
		return nil, xerrors.Relabel(err, "Failed to fetch Identity users.")
	}

	out := []account.RosterAgent{}
	for i := range users {
		u := &users[i]
		p := Principal(u)
		if p.Role != identity.RoleAgent || p.ParentMACode != maCode {
			continue
		}
		whatsapp, _ := u.UserMetadata["whatsapp"].(string)
		out = append(out, account.RosterAgent{
			ID:        u.ID,
			Email:     u.Email,
			FullName:  p.Name,
			WhatsApp:  whatsapp,
			MARef:     p.ParentMACode,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

// CountAgents counts the agents whose parent code is maCode.
func (s *AccountService) CountAgents(ctx context.Context, maCode, source string) (int, error) {
	maCode = identity.NormalizeCode(maCode)
	if maCode == "" {
		return 0, xerrors.Validation("Missing ma_code")
	}

	if source == SourceRegistry {
		return s.registry.CountByMACode(ctx, maCode)
	}

	agents, err := s.ListAgents(ctx, maCode, "")
	if err != nil {
		return 0, err
	}
	return len(agents), nil
}
