package behaviors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/shared"
)

// RepositoryPort defines data access methods for behaviors.
type RepositoryPort interface {
	ListActive(ctx context.Context, orgID string) ([]Behavior, error)
	Get(ctx context.Context, orgID, id string) (Behavior, error)
	Create(ctx context.Context, b Behavior) (Behavior, error)
	Update(ctx context.Context, b Behavior) (Behavior, error)
	Deactivate(ctx context.Context, orgID, id string) error
}

// Service handles behavior business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns the active behaviors of the org.
func (s *Service) List(ctx context.Context, orgID string) ([]Behavior, error) {
	return s.repo.ListActive(ctx, orgID)
}

// Get fetches one behavior.
func (s *Service) Get(ctx context.Context, orgID, id string) (Behavior, error) {
	return s.repo.Get(ctx, orgID, id)
}

// Create adds a behavior after normalizing its fields.
func (s *Service) Create(ctx context.Context, actor *shared.Principal, b Behavior) (Behavior, error) {
	b.ID = uuid.NewString()
	b.OrgID = actor.OrgID
	if err := normalize(&b); err != nil {
		return Behavior{}, err
	}
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return Behavior{}, err
	}
	s.record(ctx, actor, "behavior.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// Update rewrites a behavior's mutable fields.
func (s *Service) Update(ctx context.Context, actor *shared.Principal, b Behavior) (Behavior, error) {
	b.OrgID = actor.OrgID
	if err := normalize(&b); err != nil {
		return Behavior{}, err
	}
	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		return Behavior{}, err
	}
	s.record(ctx, actor, "behavior.update", updated.ID, map[string]any{"name": updated.Name})
	return updated, nil
}

// Deactivate retires a behavior without touching historical logs.
func (s *Service) Deactivate(ctx context.Context, actor *shared.Principal, id string) error {
	if err := s.repo.Deactivate(ctx, actor.OrgID, id); err != nil {
		return err
	}
	s.record(ctx, actor, "behavior.deactivate", id, nil)
	return nil
}

func normalize(b *Behavior) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	if b.Name == "" {
		return fmt.Errorf("%w: behavior name required", httpx.ErrValidation)
	}
	if b.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor *shared.Principal, action, entityID string, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    actor.OrgID,
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "behavior",
		EntityID: entityID,
		Meta:     meta,
	})
}
