package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindAccount(ctx context.Context, orgID, userID string) (*Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindAccount fetches the credential view of a user within an org.
func (r *PGRepository) FindAccount(ctx context.Context, orgID, userID string) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, org_id, name, role, pin_hash, is_active, created_at, updated_at
		 FROM users WHERE org_id = $1 AND id = $2`, orgID, userID)

	var account Account
	var role string
	err := row.Scan(&account.ID, &account.OrgID, &account.Name, &role,
		&account.PINHash, &account.IsActive, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	account.Role = policy.Role(role)
	return &account, nil
}

var _ Repository = (*PGRepository)(nil)
