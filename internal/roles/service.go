package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// RepositoryPort defines data access methods for the role catalog.
type RepositoryPort interface {
	List(ctx context.Context, orgID string) ([]Role, error)
	Get(ctx context.Context, orgID, id string) (Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, orgID, id string) error
}

// Service handles role catalog business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns the catalog with assignment counts.
func (s *Service) List(ctx context.Context, actor *shared.Principal) ([]Role, error) {
	items, err := s.repo.List(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Role{}
	}
	return items, nil
}

// Create adds a custom role to the catalog.
func (s *Service) Create(ctx context.Context, actor *shared.Principal, label string) (Role, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Role{}, fmt.Errorf("%w: label is required", httpx.ErrValidation)
	}
	key := strings.ToUpper(strings.ReplaceAll(strings.Join(strings.Fields(label), "_"), "-", "_"))
	created, err := s.repo.Create(ctx, Role{
		ID:    uuid.NewString(),
		OrgID: actor.OrgID,
		Key:   key,
		Label: label,
	})
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, actor, "role.create", created.ID, map[string]any{"key": key})
	return created, nil
}

// Delete removes a custom role. Built-in roles and roles with assigned
// users are refused, the latter with a count in the reason.
func (s *Service) Delete(ctx context.Context, actor *shared.Principal, id string) error {
	role, err := s.repo.Get(ctx, actor.OrgID, id)
	if err != nil {
		return err
	}
	if role.IsBuiltIn {
		return fmt.Errorf("%w: built-in roles cannot be deleted", httpx.ErrValidation)
	}
	decision := policy.CanDeleteRole(role.AssignedUsers)
	if !decision.CanDelete {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, decision.Reason)
	}
	if err := s.repo.Delete(ctx, actor.OrgID, id); err != nil {
		return err
	}
	s.record(ctx, actor, "role.delete", id, map[string]any{"key": role.Key})
	return nil
}

func (s *Service) record(ctx context.Context, actor *shared.Principal, action, entityID string, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    actor.OrgID,
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "role",
		EntityID: entityID,
		Meta:     meta,
	})
}
