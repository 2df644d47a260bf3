package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverkids/diverkids-api/internal/domain"
)

type EventsRepo interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	ListByUser(ctx context.Context, userID int64, status *domain.EventStatus) ([]domain.Event, error)
	ListAll(ctx context.Context, status *domain.EventStatus) ([]domain.Event, error)
	Update(ctx context.Context, id int64, p domain.EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type EventsRepoImpl struct{ pool *pgxpool.Pool }

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepoImpl { return &EventsRepoImpl{pool: pool} }

// user_name comes from a join so serialized events carry the owner's name.
const eventCols = `e.id, e.title, e.date, e.time, e.location, e.description,
e.status, e.user_id, u.name, e.created_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Description,
		&e.Status, &e.UserID, &e.UserName, &e.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventsRepoImpl) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	const q = `
WITH inserted AS (
  INSERT INTO events (title, date, time, location, description, user_id)
  VALUES ($1,$2,$3,$4,$5,$6)
  RETURNING *
)
SELECT ` + eventCols + ` FROM inserted e JOIN users u ON u.id = e.user_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanEvent(r.pool.QueryRow(ctx, q,
		e.Title, e.Date, e.Time, e.Location, e.Description, e.UserID,
	))
}

func (r *EventsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events e JOIN users u ON u.id = e.user_id WHERE e.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

func (r *EventsRepoImpl) ListByUser(ctx context.Context, userID int64, status *domain.EventStatus) ([]domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events e JOIN users u ON u.id = e.user_id
WHERE e.user_id=$1 AND ($2::text IS NULL OR e.status = $2)
ORDER BY e.created_at DESC`
	return r.list(ctx, q, userID, status)
}

func (r *EventsRepoImpl) ListAll(ctx context.Context, status *domain.EventStatus) ([]domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events e JOIN users u ON u.id = e.user_id
WHERE ($1::text IS NULL OR e.status = $1)
ORDER BY e.created_at DESC`
	return r.list(ctx, q, status)
}

func (r *EventsRepoImpl) list(ctx context.Context, q string, args ...any) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var es []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		es = append(es, *e)
	}
	return es, rows.Err()
}

func (r *EventsRepoImpl) Update(ctx context.Context, id int64, p domain.EventPatch) (*domain.Event, error) {
	const q = `
WITH updated AS (
  UPDATE events SET
    title       = COALESCE($2, title),
    date        = COALESCE($3, date),
    time        = COALESCE($4, time),
    location    = COALESCE($5, location),
    description = COALESCE($6, description),
    status      = COALESCE($7, status)
  WHERE id = $1
  RETURNING *
)
SELECT ` + eventCols + ` FROM updated e JOIN users u ON u.id = e.user_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanEvent(r.pool.QueryRow(ctx, q, id,
		p.Title, p.Date, p.Time, p.Location, p.Description, p.Status,
	))
}

func (r *EventsRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *EventsRepoImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&n)
	return n, err
}

var _ EventsRepo = (*EventsRepoImpl)(nil)
