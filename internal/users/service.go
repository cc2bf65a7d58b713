package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, orgID string) ([]User, error)
	Get(ctx context.Context, orgID, id string) (User, error)
	Create(ctx context.Context, u User, pinHash string) (User, error)
	UpdateProfile(ctx context.Context, orgID, id, name, avatar string) (User, error)
	SetRole(ctx context.Context, orgID, id, role string) error
	SetPINHash(ctx context.Context, orgID, id, pinHash string) error
	Deactivate(ctx context.Context, orgID, id string) error
}

// Service handles user account business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
	title cases.Caser
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, title: cases.Title(language.Und)}
}

// List returns the org's accounts. Manager tier only.
func (s *Service) List(ctx context.Context, actor *shared.Principal) ([]User, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, httpx.ErrForbidden
	}
	items, err := s.repo.List(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []User{}
	}
	return items, nil
}

// Get returns one account: your own, or anyone's for manager tiers.
func (s *Service) Get(ctx context.Context, actor *shared.Principal, id string) (User, error) {
	if !policy.CanEditUserProfile(actor.Role, actor.UserID == id) {
		return User{}, httpx.ErrForbidden
	}
	return s.repo.Get(ctx, actor.OrgID, id)
}

// Create adds an account with an initial PIN. Manager tier only.
func (s *Service) Create(ctx context.Context, actor *shared.Principal, name, avatar string, role policy.Role, pin string) (User, error) {
	if !policy.IsManagerRole(actor.Role) {
		return User{}, httpx.ErrForbidden
	}
	if !policy.IsValidRole(role) {
		return User{}, fmt.Errorf("%w: unknown role", httpx.ErrValidation)
	}
	name = s.normalizeName(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.Create(ctx, User{
		ID:     uuid.NewString(),
		OrgID:  actor.OrgID,
		Name:   name,
		Avatar: avatar,
		Role:   role,
	}, string(pinHash))
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, "user.create", created.ID, map[string]any{"role": string(role)})
	return created, nil
}

// UpdateProfile changes name and avatar. Users may edit themselves,
// managers may edit anyone.
func (s *Service) UpdateProfile(ctx context.Context, actor *shared.Principal, id, name, avatar string) (User, error) {
	if !policy.CanEditUserProfile(actor.Role, actor.UserID == id) {
		return User{}, httpx.ErrForbidden
	}
	name = s.normalizeName(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	return s.repo.UpdateProfile(ctx, actor.OrgID, id, name, avatar)
}

// SetRole reassigns an account's role. Manager tier only.
func (s *Service) SetRole(ctx context.Context, actor *shared.Principal, id string, role policy.Role) error {
	if !policy.IsManagerRole(actor.Role) {
		return httpx.ErrForbidden
	}
	if !policy.IsValidRole(role) {
		return fmt.Errorf("%w: unknown role", httpx.ErrValidation)
	}
	if err := s.repo.SetRole(ctx, actor.OrgID, id, string(role)); err != nil {
		return err
	}
	s.record(ctx, actor, "user.set_role", id, map[string]any{"role": string(role)})
	return nil
}

// SetPIN rotates the login PIN for yourself, or anyone for manager tiers.
func (s *Service) SetPIN(ctx context.Context, actor *shared.Principal, id, pin string) error {
	if !policy.CanEditUserProfile(actor.Role, actor.UserID == id) {
		return httpx.ErrForbidden
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPINHash(ctx, actor.OrgID, id, string(pinHash))
}

// Deactivate disables an account. Manager tier only, and never yourself.
func (s *Service) Deactivate(ctx context.Context, actor *shared.Principal, id string) error {
	if !policy.IsManagerRole(actor.Role) {
		return httpx.ErrForbidden
	}
	if actor.UserID == id {
		return fmt.Errorf("%w: cannot deactivate your own account", httpx.ErrValidation)
	}
	if err := s.repo.Deactivate(ctx, actor.OrgID, id); err != nil {
		return err
	}
	s.record(ctx, actor, "user.deactivate", id, nil)
	return nil
}

// normalizeName trims, collapses runs of whitespace, and title-cases the
// display name so boards render consistently.
func (s *Service) normalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return s.title.String(strings.Join(fields, " "))
}

func (s *Service) record(ctx context.Context, actor *shared.Principal, action, entityID string, meta map[string]any) {
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    actor.OrgID,
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "user",
		EntityID: entityID,
		Meta:     meta,
	})
}
