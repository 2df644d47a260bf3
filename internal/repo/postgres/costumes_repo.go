package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverkids/diverkids-api/internal/domain"
)

type CostumesRepo interface {
	Create(ctx context.Context, c *domain.Costume) (*domain.Costume, error)
	GetByID(ctx context.Context, id int64) (*domain.Costume, error)
	List(ctx context.Context, f domain.CostumeFilter) ([]domain.Costume, error)
	Update(ctx context.Context, id int64, p domain.CostumePatch) (*domain.Costume, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type CostumesRepoImpl struct{ pool *pgxpool.Pool }

func NewCostumesRepo(pool *pgxpool.Pool) *CostumesRepoImpl { return &CostumesRepoImpl{pool: pool} }

const costumeCols = `id, name, description, category, size, price_per_day,
image_url, available, stock_quantity, created_at, updated_at`

func scanCostume(row pgx.Row) (*domain.Costume, error) {
	var c domain.Costume
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Category, &c.Size, &c.PricePerDay,
		&c.ImageURL, &c.Available, &c.StockQuantity, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CostumesRepoImpl) Create(ctx context.Context, c *domain.Costume) (*domain.Costume, error) {
	const q = `INSERT INTO costumes
  (name, description, category, size, price_per_day, image_url, available, stock_quantity)
  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  RETURNING ` + costumeCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanCostume(r.pool.QueryRow(ctx, q,
		c.Name, c.Description, c.Category, c.Size, c.PricePerDay,
		c.ImageURL, c.Available, c.StockQuantity,
	))
}

func (r *CostumesRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Costume, error) {
	const q = `SELECT ` + costumeCols + ` FROM costumes WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanCostume(r.pool.QueryRow(ctx, q, id))
}

func (r *CostumesRepoImpl) List(ctx context.Context, f domain.CostumeFilter) ([]domain.Costume, error) {
	// Equality filters only; nil means no constraint.
	const q = `SELECT ` + costumeCols + ` FROM costumes
WHERE ($1 = '' OR category = $1)
  AND ($2::boolean IS NULL OR available = $2)
ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, f.Category, f.Available)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cs []domain.Costume
	for rows.Next() {
		c, err := scanCostume(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, *c)
	}
	return cs, rows.Err()
}

func (r *CostumesRepoImpl) Update(ctx context.Context, id int64, p domain.CostumePatch) (*domain.Costume, error) {
	const q = `
UPDATE costumes SET
  name           = COALESCE($2, name),
  description    = COALESCE($3, description),
  category       = COALESCE($4, category),
  size           = COALESCE($5, size),
  price_per_day  = COALESCE($6, price_per_day),
  image_url      = COALESCE($7, image_url),
  available      = COALESCE($8, available),
  stock_quantity = COALESCE($9, stock_quantity),
  updated_at     = now()
WHERE id = $1
RETURNING ` + costumeCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanCostume(r.pool.QueryRow(ctx, q, id,
		p.Name, p.Description, p.Category, p.Size, p.PricePerDay,
		p.ImageURL, p.Available, p.StockQuantity,
	))
}

func (r *CostumesRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, `DELETE FROM costumes WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *CostumesRepoImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM costumes`).Scan(&n)
	return n, err
}

var _ CostumesRepo = (*CostumesRepoImpl)(nil)
