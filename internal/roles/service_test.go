package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

type mockRepo struct {
	roles   map[string]Role
	deleted []string
}

func newMockRepo(entries ...Role) *mockRepo {
	m := &mockRepo{roles: make(map[string]Role)}
	for _, r := range entries {
		m.roles[r.ID] = r
	}
	return m
}

func (m *mockRepo) List(ctx context.Context, orgID string) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, orgID, id string) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, httpx.ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) Create(ctx context.Context, role Role) (Role, error) {
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRepo) Delete(ctx context.Context, orgID, id string) error {
	delete(m.roles, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func admin() *shared.Principal {
	return &shared.Principal{UserID: "admin-1", OrgID: "org-1", Role: policy.RoleAdmin}
}

func TestCreateDerivesKey(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	created, err := svc.Create(context.Background(), admin(), "  sous   chef ")
	require.NoError(t, err)
	assert.Equal(t, "SOUS_CHEF", created.Key)
	assert.Equal(t, "sous   chef", created.Label)
}

func TestDeleteBlockedByAssignedUsers(t *testing.T) {
	t.Run("one user", func(t *testing.T) {
		repo := newMockRepo(Role{ID: "r1", OrgID: "org-1", Key: "SOMMELIER", AssignedUsers: 1})
		svc := NewService(repo, nil)
		err := svc.Delete(context.Background(), admin(), "r1")
		assert.ErrorIs(t, err, httpx.ErrValidation)
		assert.ErrorContains(t, err, "1 assigned user")
		assert.NotContains(t, err.Error(), "users")
	})

	t.Run("several users", func(t *testing.T) {
		repo := newMockRepo(Role{ID: "r1", OrgID: "org-1", Key: "SOMMELIER", AssignedUsers: 4})
		svc := NewService(repo, nil)
		err := svc.Delete(context.Background(), admin(), "r1")
		assert.ErrorContains(t, err, "4 assigned users")
	})
}

func TestDeleteUnassignedCustomRole(t *testing.T) {
	repo := newMockRepo(Role{ID: "r1", OrgID: "org-1", Key: "SOMMELIER"})
	svc := NewService(repo, nil)
	require.NoError(t, svc.Delete(context.Background(), admin(), "r1"))
	assert.Equal(t, []string{"r1"}, repo.deleted)
}

func TestDeleteBuiltInRefused(t *testing.T) {
	repo := newMockRepo(Role{ID: "r1", OrgID: "org-1", Key: "SERVER", IsBuiltIn: true})
	svc := NewService(repo, nil)
	err := svc.Delete(context.Background(), admin(), "r1")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, repo.deleted)
}
