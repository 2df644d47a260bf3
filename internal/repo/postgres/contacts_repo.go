package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverkids/diverkids-api/internal/domain"
)

type ContactsRepo interface {
	Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	List(ctx context.Context, status *domain.ContactStatus) ([]domain.Contact, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.Contact, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type ContactsRepoImpl struct{ pool *pgxpool.Pool }

func NewContactsRepo(pool *pgxpool.Pool) *ContactsRepoImpl { return &ContactsRepoImpl{pool: pool} }

const contactCols = `id, name, email, phone, message, status, created_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Message, &c.Status, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactsRepoImpl) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	const q = `INSERT INTO contacts (name, email, phone, message)
VALUES ($1,$2,$3,$4)
RETURNING ` + contactCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanContact(r.pool.QueryRow(ctx, q, c.Name, c.Email, c.Phone, c.Message))
}

func (r *ContactsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	const q = `SELECT ` + contactCols + ` FROM contacts WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanContact(r.pool.QueryRow(ctx, q, id))
}

func (r *ContactsRepoImpl) List(ctx context.Context, status *domain.ContactStatus) ([]domain.Contact, error) {
	const q = `SELECT ` + contactCols + ` FROM contacts
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cs []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, *c)
	}
	return cs, rows.Err()
}

func (r *ContactsRepoImpl) UpdateStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.Contact, error) {
	const q = `UPDATE contacts SET status=$2 WHERE id=$1 RETURNING ` + contactCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanContact(r.pool.QueryRow(ctx, q, id, status))
}

func (r *ContactsRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ContactsRepoImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&n)
	return n, err
}

var _ ContactsRepo = (*ContactsRepoImpl)(nil)
