package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/topline-app/topline/internal/behaviors"
	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/rank"
	"github.com/topline-app/topline/internal/shared"
)

// RepositoryPort defines data access methods for logs.
type RepositoryPort interface {
	Create(ctx context.Context, l Log) (Log, error)
	Get(ctx context.Context, orgID, id string) (Log, error)
	ListByUser(ctx context.Context, orgID, userID string, limit, offset int) ([]Log, int, error)
	ListUnverified(ctx context.Context, orgID string, limit int) ([]Log, error)
	SetVerification(ctx context.Context, orgID, id string, update policy.VerificationUpdate) error
	Delete(ctx context.Context, orgID, id string) error
}

// BehaviorSource resolves the behavior being logged.
type BehaviorSource interface {
	Get(ctx context.Context, orgID, id string) (behaviors.Behavior, error)
}

// Bumper invalidates the scoreboard cache after log mutations.
type Bumper interface {
	Bump(ctx context.Context) error
}

// Page is one page of log entries.
type Page struct {
	Items []Log               `json:"items"`
	Meta  rank.PaginationMeta `json:"meta"`
}

// Service handles log entry business logic.
type Service struct {
	repo      RepositoryPort
	behaviors BehaviorSource
	audit     *shared.AuditLogger
	bump      Bumper
	now       func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, behaviorSource BehaviorSource, audit *shared.AuditLogger, bump Bumper) *Service {
	return &Service{
		repo:      repo,
		behaviors: behaviorSource,
		audit:     audit,
		bump:      bump,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create records a behavior occurrence for the acting user, copying the
// behavior's current point value onto the entry.
func (s *Service) Create(ctx context.Context, actor *shared.Principal, behaviorID, note string) (Log, error) {
	behavior, err := s.behaviors.Get(ctx, actor.OrgID, behaviorID)
	if err != nil {
		return Log{}, err
	}
	if !behavior.IsActive {
		return Log{}, fmt.Errorf("%w: behavior is retired", httpx.ErrValidation)
	}
	created, err := s.repo.Create(ctx, Log{
		ID:         uuid.NewString(),
		OrgID:      actor.OrgID,
		BehaviorID: behavior.ID,
		UserID:     actor.UserID,
		Points:     behavior.Points,
		Note:       note,
	})
	if err != nil {
		return Log{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// List returns one page of log entries. The visible user is resolved
// through the ownership-isolation guard: staff always see their own logs,
// managers may target anyone.
func (s *Service) List(ctx context.Context, actor *shared.Principal, requestedUserID string, page shared.PageRequest) (Page, error) {
	userID := policy.EffectiveUserID(actor.Role, actor.UserID, requestedUserID)
	items, total, err := s.repo.ListByUser(ctx, actor.OrgID, userID, page.Limit, page.Offset())
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []Log{}
	}
	return Page{Items: items, Meta: rank.NewPaginationMeta(total, page.Page, page.Limit)}, nil
}

// ListUnverified returns the manager verification queue.
func (s *Service) ListUnverified(ctx context.Context, actor *shared.Principal, limit int) ([]Log, error) {
	if !policy.CanVerifyLogs(actor.Role) {
		return nil, httpx.ErrForbidden
	}
	items, err := s.repo.ListUnverified(ctx, actor.OrgID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Log{}
	}
	return items, nil
}

// SetVerified verifies or unverifies a log entry. Only manager-tier roles
// may call this; clearing wipes the verification metadata atomically.
func (s *Service) SetVerified(ctx context.Context, actor *shared.Principal, logID string, verified bool) (Log, error) {
	if !policy.CanVerifyLogs(actor.Role) {
		return Log{}, httpx.ErrForbidden
	}
	entry, err := s.repo.Get(ctx, actor.OrgID, logID)
	if err != nil {
		return Log{}, err
	}
	if !policy.CanAccessOrganization(actor.OrgID, entry.OrgID) {
		return Log{}, httpx.ErrForbidden
	}
	update := policy.NewVerificationUpdate(verified, actor.UserID, s.now())
	if err := s.repo.SetVerification(ctx, actor.OrgID, logID, update); err != nil {
		return Log{}, err
	}
	s.record(ctx, actor, "log.verify", logID, map[string]any{"verified": verified})
	s.invalidate(ctx)
	return s.repo.Get(ctx, actor.OrgID, logID)
}

// Delete removes a log entry subject to the deletion policy: staff may only
// delete their own unverified logs, managers may delete any log in the org.
func (s *Service) Delete(ctx context.Context, actor *shared.Principal, logID string) error {
	entry, err := s.repo.Get(ctx, actor.OrgID, logID)
	if err != nil {
		return err
	}
	if !policy.CanAccessOrganization(actor.OrgID, entry.OrgID) {
		return httpx.ErrForbidden
	}
	isStaff := !policy.IsManagerRole(actor.Role)
	decision := policy.CanStaffDeleteLog(isStaff, entry.UserID == actor.UserID, !entry.Verified)
	if !decision.CanDelete {
		return fmt.Errorf("%w: %s", httpx.ErrForbidden, decision.Reason)
	}
	if err := s.repo.Delete(ctx, actor.OrgID, logID); err != nil {
		return err
	}
	s.record(ctx, actor, "log.delete", logID, map[string]any{"owner": entry.UserID})
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.bump == nil {
		return
	}
	_ = s.bump.Bump(ctx)
}

func (s *Service) record(ctx context.Context, actor *shared.Principal, action, entityID string, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    actor.OrgID,
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "behavior_log",
		EntityID: entityID,
		Meta:     meta,
	})
}
