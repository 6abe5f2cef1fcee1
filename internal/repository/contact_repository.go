package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crm-service/internal/domain"
)

// ContactRepository handles persistence for portal contacts.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	GetByEmail(ctx context.Context, email string) (*domain.Contact, error)
	List(ctx context.Context, accountID *string, limit, offset int) ([]domain.Contact, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository instantiates the repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (first_name, last_name, email, password_hash, account_id, account_name)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PasswordHash,
		contact.AccountID,
		contact.AccountName,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts
        SET first_name=$1, last_name=$2, email=$3, account_id=$4, account_name=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.AccountID,
		contact.AccountName,
		contact.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	const query = `
        SELECT id, first_name, last_name, email, password_hash, account_id, account_name, created_at, updated_at
        FROM contacts WHERE id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *contactRepository) GetByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	const query = `
        SELECT id, first_name, last_name, email, password_hash, account_id, account_name, created_at, updated_at
        FROM contacts WHERE email=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *contactRepository) List(ctx context.Context, accountID *string, limit, offset int) ([]domain.Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT id, first_name, last_name, email, password_hash, account_id, account_name, created_at, updated_at
        FROM contacts`
	args := []any{}
	if accountID != nil {
		query += ` WHERE account_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *accountID, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contact
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.FirstName,
			&contact.LastName,
			&contact.Email,
			&contact.PasswordHash,
			&contact.AccountID,
			&contact.AccountName,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, contact)
	}
	return result, rows.Err()
}

func (r *contactRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	const query = `
        UPDATE contacts SET password_hash=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) scanOne(row pgx.Row) (*domain.Contact, error) {
	var contact domain.Contact
	if err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.PasswordHash,
		&contact.AccountID,
		&contact.AccountName,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}
