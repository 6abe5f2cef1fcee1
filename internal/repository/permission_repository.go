package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crm-service/internal/domain"
)

// PermissionRepository manages the permission catalog.
type PermissionRepository interface {
	List(ctx context.Context) ([]domain.Permission, error)
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	Ensure(ctx context.Context, perm *domain.Permission) error
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository builds the repository.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

// List returns every known permission ordered by name so callers get a
// stable ordering.
func (r *permissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	const query = `
        SELECT id, name, resource, action, description
        FROM permissions ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *permissionRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	const query = `
        SELECT id, name, resource, action, description
        FROM permissions WHERE name=$1`

	var p domain.Permission
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&p.ID,
		&p.Name,
		&p.Resource,
		&p.Action,
		&p.Description,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure inserts the permission if absent, otherwise loads the existing row.
// Repeated calls with the same name are no-ops.
func (r *permissionRepository) Ensure(ctx context.Context, perm *domain.Permission) error {
	const query = `
        INSERT INTO permissions (name, resource, action, description)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (name) DO UPDATE SET resource=EXCLUDED.resource, action=EXCLUDED.action
        RETURNING id`

	return r.pool.QueryRow(ctx, query,
		perm.Name,
		perm.Resource,
		perm.Action,
		perm.Description,
	).Scan(&perm.ID)
}
