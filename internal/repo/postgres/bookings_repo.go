package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverkids/diverkids-api/internal/domain"
)

type BookingsRepo interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error)
	ListAll(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error)
	Update(ctx context.Context, id int64, p domain.BookingPatch, eventDate *time.Time) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type BookingsRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingsRepo(pool *pgxpool.Pool) *BookingsRepoImpl { return &BookingsRepoImpl{pool: pool} }

const bookingCols = `id, user_id, booking_type,
event_date, event_time, event_location, event_address, num_children,
costume_id, package_id, special_requests, total_price,
status, payment_status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.BookingType,
		&b.EventDate, &b.EventTime, &b.EventLocation, &b.EventAddress, &b.NumChildren,
		&b.CostumeID, &b.PackageID, &b.SpecialRequests, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingsRepoImpl) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
    user_id, booking_type,
    event_date, event_time, event_location, event_address, num_children,
    costume_id, package_id, special_requests, total_price
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
  RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q,
		b.UserID, b.BookingType,
		b.EventDate, b.EventTime, b.EventLocation, b.EventAddress, b.NumChildren,
		b.CostumeID, b.PackageID, b.SpecialRequests, b.TotalPrice,
	))
}

func (r *BookingsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q, id))
}

func (r *BookingsRepoImpl) ListByUser(ctx context.Context, userID int64, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
WHERE user_id=$1 AND ($4::text IS NULL OR status = $4)
ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, userID, limit, offset, status)
}

func (r *BookingsRepoImpl) ListAll(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
WHERE ($3::text IS NULL OR status = $3)
ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, q, limit, offset, status)
}

func (r *BookingsRepoImpl) list(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

func (r *BookingsRepoImpl) Update(ctx context.Context, id int64, p domain.BookingPatch, eventDate *time.Time) (*domain.Booking, error) {
	const q = `
UPDATE bookings SET
  event_date       = COALESCE($2, event_date),
  event_time       = COALESCE($3, event_time),
  event_location   = COALESCE($4, event_location),
  event_address    = COALESCE($5, event_address),
  num_children     = COALESCE($6, num_children),
  special_requests = COALESCE($7, special_requests),
  total_price      = COALESCE($8, total_price),
  status           = COALESCE($9, status),
  payment_status   = COALESCE($10, payment_status),
  updated_at       = now()
WHERE id = $1
RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q, id,
		eventDate, p.EventTime, p.EventLocation, p.EventAddress, p.NumChildren,
		p.SpecialRequests, p.TotalPrice, p.Status, p.PaymentStatus,
	))
}

func (r *BookingsRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *BookingsRepoImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&n)
	return n, err
}

var _ BookingsRepo = (*BookingsRepoImpl)(nil)
