package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverkids/diverkids-api/internal/domain"
)

type PackagesRepo interface {
	Create(ctx context.Context, p *domain.AnimationPackage) (*domain.AnimationPackage, error)
	GetByID(ctx context.Context, id int64) (*domain.AnimationPackage, error)
	List(ctx context.Context, f domain.PackageFilter) ([]domain.AnimationPackage, error)
	Update(ctx context.Context, id int64, p domain.PackagePatch) (*domain.AnimationPackage, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type PackagesRepoImpl struct{ pool *pgxpool.Pool }

func NewPackagesRepo(pool *pgxpool.Pool) *PackagesRepoImpl { return &PackagesRepoImpl{pool: pool} }

const packageCols = `id, name, description, duration_hours, price, includes,
max_children, image_url, available, created_at, updated_at`

func scanPackage(row pgx.Row) (*domain.AnimationPackage, error) {
	var p domain.AnimationPackage
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.DurationHours, &p.Price, &p.Includes,
		&p.MaxChildren, &p.ImageURL, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackagesRepoImpl) Create(ctx context.Context, p *domain.AnimationPackage) (*domain.AnimationPackage, error) {
	const q = `INSERT INTO animation_packages
  (name, description, duration_hours, price, includes, max_children, image_url, available)
  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  RETURNING ` + packageCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPackage(r.pool.QueryRow(ctx, q,
		p.Name, p.Description, p.DurationHours, p.Price, p.Includes,
		p.MaxChildren, p.ImageURL, p.Available,
	))
}

func (r *PackagesRepoImpl) GetByID(ctx context.Context, id int64) (*domain.AnimationPackage, error) {
	const q = `SELECT ` + packageCols + ` FROM animation_packages WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPackage(r.pool.QueryRow(ctx, q, id))
}

func (r *PackagesRepoImpl) List(ctx context.Context, f domain.PackageFilter) ([]domain.AnimationPackage, error) {
	const q = `SELECT ` + packageCols + ` FROM animation_packages
WHERE ($1::boolean IS NULL OR available = $1)
ORDER BY price`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, f.Available)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.AnimationPackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, rows.Err()
}

func (r *PackagesRepoImpl) Update(ctx context.Context, id int64, p domain.PackagePatch) (*domain.AnimationPackage, error) {
	const q = `
UPDATE animation_packages SET
  name           = COALESCE($2, name),
  description    = COALESCE($3, description),
  duration_hours = COALESCE($4, duration_hours),
  price          = COALESCE($5, price),
  includes       = COALESCE($6, includes),
  max_children   = COALESCE($7, max_children),
  image_url      = COALESCE($8, image_url),
  available      = COALESCE($9, available),
  updated_at     = now()
WHERE id = $1
RETURNING ` + packageCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPackage(r.pool.QueryRow(ctx, q, id,
		p.Name, p.Description, p.DurationHours, p.Price, p.Includes,
		p.MaxChildren, p.ImageURL, p.Available,
	))
}

func (r *PackagesRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, `DELETE FROM animation_packages WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PackagesRepoImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM animation_packages`).Scan(&n)
	return n, err
}

var _ PackagesRepo = (*PackagesRepoImpl)(nil)
