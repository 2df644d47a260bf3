package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diverkids/diverkids-api/internal/domain"
	"github.com/diverkids/diverkids-api/internal/platform/calendar"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/service"
)

// ---------- Mocks ----------

type mockBookingsRepo struct {
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newMockBookingsRepo() *mockBookingsRepo {
	return &mockBookingsRepo{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (m *mockBookingsRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	stored := *b
	stored.ID = m.nextID
	m.nextID++
	stored.Status = domain.BookingPending
	stored.PaymentStatus = domain.PaymentPending
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.bookings[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *mockBookingsRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *mockBookingsRepo) ListByUser(_ context.Context, userID int64, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.UserID != userID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBookingsRepo) ListAll(context.Context, int, int, *domain.BookingStatus) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBookingsRepo) Update(_ context.Context, id int64, p domain.BookingPatch, eventDate *time.Time) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	if eventDate != nil {
		b.EventDate = *eventDate
	}
	if p.Status != nil {
		b.Status = domain.BookingStatus(*p.Status)
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	b.UpdatedAt = time.Now()
	out := *b
	return &out, nil
}

func (m *mockBookingsRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.bookings[id]; !ok {
		return false, nil
	}
	delete(m.bookings, id)
	return true, nil
}

func (m *mockBookingsRepo) Count(context.Context) (int64, error) {
	return int64(len(m.bookings)), nil
}

type mockCostumesRepo struct {
	costumes map[int64]*domain.Costume
}

func (m *mockCostumesRepo) GetByID(_ context.Context, id int64) (*domain.Costume, error) {
	c, ok := m.costumes[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return c, nil
}

func (m *mockCostumesRepo) Create(_ context.Context, c *domain.Costume) (*domain.Costume, error) {
	return c, nil
}
func (m *mockCostumesRepo) List(context.Context, domain.CostumeFilter) ([]domain.Costume, error) {
	return nil, nil
}
func (m *mockCostumesRepo) Update(context.Context, int64, domain.CostumePatch) (*domain.Costume, error) {
	return nil, postgres.ErrNotFound
}
func (m *mockCostumesRepo) Delete(context.Context, int64) (bool, error) { return false, nil }
func (m *mockCostumesRepo) Count(context.Context) (int64, error)        { return 0, nil }

type mockPackagesRepo struct {
	packages map[int64]*domain.AnimationPackage
}

func (m *mockPackagesRepo) GetByID(_ context.Context, id int64) (*domain.AnimationPackage, error) {
	p, ok := m.packages[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return p, nil
}

func (m *mockPackagesRepo) Create(_ context.Context, p *domain.AnimationPackage) (*domain.AnimationPackage, error) {
	return p, nil
}
func (m *mockPackagesRepo) List(context.Context, domain.PackageFilter) ([]domain.AnimationPackage, error) {
	return nil, nil
}
func (m *mockPackagesRepo) Update(context.Context, int64, domain.PackagePatch) (*domain.AnimationPackage, error) {
	return nil, postgres.ErrNotFound
}
func (m *mockPackagesRepo) Delete(context.Context, int64) (bool, error) { return false, nil }
func (m *mockPackagesRepo) Count(context.Context) (int64, error)        { return 0, nil }

type mockUsersRepo struct {
	users map[int64]*domain.User
}

func (m *mockUsersRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return u, nil
}

func (m *mockUsersRepo) Create(context.Context, string, string, string, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (m *mockUsersRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, postgres.ErrNotFound
}
func (m *mockUsersRepo) UpdateProfile(context.Context, int64, *string, *string) (*domain.User, error) {
	return nil, postgres.ErrNotFound
}
func (m *mockUsersRepo) Count(context.Context) (int64, error) { return 0, nil }

// mockCalendar records every sync attempt; fail switches it to outage mode.
type mockCalendar struct {
	fail   bool
	events []calendar.Event
}

func (m *mockCalendar) CreateEvent(_ context.Context, ev calendar.Event) calendar.SyncResult {
	m.events = append(m.events, ev)
	if m.fail {
		return calendar.SyncResult{Ok: false, Reason: "calendar unavailable"}
	}
	return calendar.SyncResult{Ok: true, EventID: "cal-1"}
}

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}
func (m *mockBus) Close() error { return nil }

// ---------- Test setup ----------

type fixture struct {
	svc      service.BookingService
	bookings *mockBookingsRepo
	calendar *mockCalendar
	bus      *mockBus
}

func newFixture() *fixture {
	bookings := newMockBookingsRepo()
	costumes := &mockCostumesRepo{costumes: map[int64]*domain.Costume{
		5: {ID: 5, Name: "Spiderman", PricePerDay: 15000, Available: true},
	}}
	packages := &mockPackagesRepo{packages: map[int64]*domain.AnimationPackage{
		7: {ID: 7, Name: "Fiesta Superhéroes", DurationHours: 3, Price: 80000, Available: true},
	}}
	users := &mockUsersRepo{users: map[int64]*domain.User{
		1: {ID: 1, Name: "Carla Pérez", Email: "carla@example.com"},
	}}
	cal := &mockCalendar{}
	bus := &mockBus{}

	svc := service.NewBookingService(bookings, costumes, packages, users, cal, bus)
	return &fixture{svc: svc, bookings: bookings, calendar: cal, bus: bus}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// ---------- Tests ----------

func TestBookingCreate_MissingFields(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.bookings.bookings) != 0 {
		t.Fatal("no booking row should exist after a failed validation")
	}
	if len(f.calendar.events) != 0 {
		t.Fatal("calendar must not be touched on validation failure")
	}
}

func TestBookingCreate_InvalidDate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "14-03-2026",
		CostumeID:   "5",
	})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookingCreate_TypeConsistency(t *testing.T) {
	tests := []struct {
		name string
		req  domain.BookingCreateReq
	}{
		{"costume without costume_id", domain.BookingCreateReq{
			BookingType: "costume", EventDate: "2026-03-14",
		}},
		{"package without package_id", domain.BookingCreateReq{
			BookingType: "package", EventDate: "2026-03-14",
		}},
		{"both missing package_id", domain.BookingCreateReq{
			BookingType: "both", EventDate: "2026-03-14", CostumeID: "5",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(context.Background(), 1, &tt.req)

			var verr *service.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestBookingCreate_UnknownCostume(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "2026-03-14",
		CostumeID:   "999",
	})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.bookings.bookings) != 0 {
		t.Fatal("no booking row should exist for an unknown costume")
	}
}

func TestBookingCreate_Success_SyncsAndPublishes(t *testing.T) {
	f := newFixture()
	price := 95000.0

	dto, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "both",
		EventDate:   "2026-03-14",
		EventTime:   "16:00",
		CostumeID:   "5",
		PackageID:   "7",
		TotalPrice:  &price,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dto.ID == 0 {
		t.Fatal("expected a persisted booking id")
	}
	if dto.UserName != "Carla Pérez" {
		t.Fatalf("expected owner name on DTO, got %q", dto.UserName)
	}
	if dto.Status != string(domain.BookingPending) {
		t.Fatalf("expected pending status, got %q", dto.Status)
	}

	if len(f.calendar.events) != 1 {
		t.Fatalf("expected 1 calendar sync, got %d", len(f.calendar.events))
	}
	ev := f.calendar.events[0]
	if ev.Summary != "Fiesta Superhéroes + Spiderman" {
		t.Fatalf("unexpected calendar summary %q", ev.Summary)
	}
	// Window uses the package's own duration for combined bookings.
	if got := ev.End.Sub(ev.Start); got != 3*time.Hour {
		t.Fatalf("expected 3h window from the package, got %v", got)
	}
	if ev.Start.Hour() != 16 {
		t.Fatalf("expected 16:00 start, got %02d:%02d", ev.Start.Hour(), ev.Start.Minute())
	}
	if !strings.Contains(ev.Description, "Carla Pérez (carla@example.com)") {
		t.Fatalf("description missing client line: %q", ev.Description)
	}

	if len(f.bus.subjects) != 1 || f.bus.subjects[0] != "booking.created" {
		t.Fatalf("expected booking.created publish, got %v", f.bus.subjects)
	}
}

func TestBookingCreate_CalendarOutageStillCreates(t *testing.T) {
	f := newFixture()
	f.calendar.fail = true

	dto, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "2026-03-14",
		CostumeID:   "5",
	})
	if err != nil {
		t.Fatalf("calendar outage must not fail the booking: %v", err)
	}
	if dto.ID == 0 {
		t.Fatal("expected a persisted booking id")
	}
	if len(f.calendar.events) != 1 {
		t.Fatal("expected a sync attempt despite the outage")
	}
}

func TestBookingGet_OwnershipEnforced(t *testing.T) {
	f := newFixture()

	dto, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "2026-03-14",
		CostumeID:   "5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Another parent is refused.
	if _, err := f.svc.Get(context.Background(), service.Caller{UserID: 2}, dto.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-owner, got %v", err)
	}

	// Admin reads anyone's booking.
	got, err := f.svc.Get(context.Background(), service.Caller{UserID: 2, IsAdmin: true}, dto.ID)
	if err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if got.ID != dto.ID {
		t.Fatalf("expected booking %d, got %d", dto.ID, got.ID)
	}
}

func TestBookingDelete_PublishesCancel(t *testing.T) {
	f := newFixture()

	dto, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "package",
		EventDate:   "2026-03-14",
		PackageID:   "7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.Delete(context.Background(), service.Caller{UserID: 1}, dto.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := f.bookings.GetByID(context.Background(), dto.ID); !errors.Is(err, postgres.ErrNotFound) {
		t.Fatal("booking should be gone after delete")
	}

	last := f.bus.subjects[len(f.bus.subjects)-1]
	if last != "booking.canceled" {
		t.Fatalf("expected booking.canceled publish, got %q", last)
	}
}

func TestBookingUpdate_InvalidStatus(t *testing.T) {
	f := newFixture()

	dto, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "2026-03-14",
		CostumeID:   "5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.Update(context.Background(), service.Caller{UserID: 1}, dto.ID, domain.BookingPatch{
		Status: strPtr("finished"),
	})
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookingCreate_NegativeChildren(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "2026-03-14",
		CostumeID:   "5",
		NumChildren: intPtr(-3),
	})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.bookings.bookings) != 0 {
		t.Fatal("no booking row should exist for a negative child count")
	}
}

func TestBookingUpdate_NegativeChildren(t *testing.T) {
	f := newFixture()

	dto, err := f.svc.Create(context.Background(), 1, &domain.BookingCreateReq{
		BookingType: "costume",
		EventDate:   "2026-03-14",
		CostumeID:   "5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.Update(context.Background(), service.Caller{UserID: 1}, dto.ID, domain.BookingPatch{
		NumChildren: intPtr(-1),
	})
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
