package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PortalSetupToken represents stored one-time portal invitation tokens.
type PortalSetupToken struct {
	ID        string
	ContactID string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// SetupTokenRepository manages portal invitation token persistence.
type SetupTokenRepository interface {
	Create(ctx context.Context, token *PortalSetupToken) error
	GetByToken(ctx context.Context, token string) (*PortalSetupToken, error)
	Consume(ctx context.Context, id string) error
}

type setupTokenRepository struct {
	pool *pgxpool.Pool
}

// NewSetupTokenRepository constructs repository.
func NewSetupTokenRepository(pool *pgxpool.Pool) SetupTokenRepository {
	return &setupTokenRepository{pool: pool}
}

func (r *setupTokenRepository) Create(ctx context.Context, token *PortalSetupToken) error {
	const query = `
        INSERT INTO portal_setup_tokens (contact_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.ContactID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *setupTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*PortalSetupToken, error) {
	const query = `
        SELECT id, contact_id, token, expires_at, used_at, created_at
        FROM portal_setup_tokens WHERE token=$1`
	var token PortalSetupToken
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.ContactID,
		&token.Token,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

// Consume marks the token used. The conditional update is the only state
// transition for a token: a token already used or past expiry matches no
// rows, so two concurrent exchanges can never both succeed.
func (r *setupTokenRepository) Consume(ctx context.Context, id string) error {
	const query = `
        UPDATE portal_setup_tokens SET used_at=NOW()
        WHERE id=$1 AND used_at IS NULL AND expires_at > NOW()`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
