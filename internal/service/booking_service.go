package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diverkids/diverkids-api/internal/domain"
	"github.com/diverkids/diverkids-api/internal/platform/calendar"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/pkg/events"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

// Caller is the authenticated identity a handler resolved from the bearer
// token.
type Caller struct {
	UserID  int64
	IsAdmin bool
}

func (c Caller) mayAccess(ownerID int64) bool {
	return c.IsAdmin || c.UserID == ownerID
}

// BookingService is the booking workflow: validate, persist, then run the
// best-effort side effects (calendar sync, event publish) whose failures
// never reach the client.
type BookingService interface {
	Create(ctx context.Context, userID int64, req *domain.BookingCreateReq) (*domain.BookingDTO, error)
	Get(ctx context.Context, caller Caller, id int64) (*domain.BookingDTO, error)
	List(ctx context.Context, caller Caller, limit, offset int, status *domain.BookingStatus) ([]domain.BookingDTO, error)
	Update(ctx context.Context, caller Caller, id int64, patch domain.BookingPatch) (*domain.BookingDTO, error)
	Delete(ctx context.Context, caller Caller, id int64) error
}

type bookingService struct {
	bookings postgres.BookingsRepo
	costumes postgres.CostumesRepo
	packages postgres.PackagesRepo
	users    postgres.UsersRepo
	calendar calendar.Service
	bus      events.Publisher
}

func NewBookingService(
	bookings postgres.BookingsRepo,
	costumes postgres.CostumesRepo,
	packages postgres.PackagesRepo,
	users postgres.UsersRepo,
	cal calendar.Service,
	bus events.Publisher,
) BookingService {
	return &bookingService{
		bookings: bookings,
		costumes: costumes,
		packages: packages,
		users:    users,
		calendar: cal,
		bus:      bus,
	}
}

func (s *bookingService) Create(ctx context.Context, userID int64, req *domain.BookingCreateReq) (*domain.BookingDTO, error) {
	if req.EventDate == "" || req.BookingType == "" {
		return nil, invalid("Faltan campos requeridos: event_date y booking_type")
	}

	bookingType, ok := domain.ParseBookingType(req.BookingType)
	if !ok {
		return nil, invalid("Tipo de reserva inválido (costume, package, both)")
	}

	eventDate, err := time.Parse(domain.DateLayout, req.EventDate)
	if err != nil {
		return nil, invalid("Formato de fecha inválido, usa YYYY-MM-DD")
	}

	costumeID, err := parseOptionalID(req.CostumeID)
	if err != nil {
		return nil, invalid("costume_id inválido")
	}
	packageID, err := parseOptionalID(req.PackageID)
	if err != nil {
		return nil, invalid("package_id inválido")
	}

	if err := checkTypeConsistency(bookingType, costumeID, packageID); err != nil {
		return nil, err
	}

	// Referential checks before the write; the linked entities also feed the
	// calendar summary afterwards.
	var (
		costume *domain.Costume
		pkg     *domain.AnimationPackage
	)
	if costumeID != nil {
		if costume, err = s.costumes.GetByID(ctx, *costumeID); err != nil {
			if errors.Is(err, postgres.ErrNotFound) {
				return nil, invalid("Disfraz no encontrado")
			}
			return nil, err
		}
	}
	if packageID != nil {
		if pkg, err = s.packages.GetByID(ctx, *packageID); err != nil {
			if errors.Is(err, postgres.ErrNotFound) {
				return nil, invalid("Paquete no encontrado")
			}
			return nil, err
		}
	}

	if req.NumChildren != nil && *req.NumChildren < 0 {
		return nil, invalid("num_children no puede ser negativo")
	}

	totalPrice := 0.0
	if req.TotalPrice != nil {
		if *req.TotalPrice < 0 {
			return nil, invalid("total_price no puede ser negativo")
		}
		totalPrice = *req.TotalPrice
	}

	booking := &domain.Booking{
		UserID:          userID,
		BookingType:     bookingType,
		EventDate:       eventDate,
		EventTime:       req.EventTime,
		EventLocation:   req.EventLocation,
		EventAddress:    req.EventAddress,
		NumChildren:     req.NumChildren,
		CostumeID:       costumeID,
		PackageID:       packageID,
		SpecialRequests: req.SpecialRequests,
		TotalPrice:      totalPrice,
	}

	// The durable write is the authoritative result; everything after it is
	// advisory and must not alter the response.
	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	owner, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "booking owner lookup failed", "user_id", userID, "error", err)
		owner = nil
	}

	s.syncCalendar(ctx, created, owner, costume, pkg)

	if err := s.bus.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:   created.ID,
		UserID:      created.UserID,
		BookingType: string(created.BookingType),
		EventDate:   created.EventDate.Format(domain.DateLayout),
		TotalPrice:  created.TotalPrice,
		CreatedAt:   created.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to publish booking created event", "error", err, "booking_id", created.ID)
	}

	dto := created.DTO(owner, costume, pkg)
	return &dto, nil
}

func (s *bookingService) Get(ctx context.Context, caller Caller, id int64) (*domain.BookingDTO, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.mayAccess(booking.UserID) {
		return nil, ErrForbidden
	}
	dto := s.decorate(ctx, booking)
	return &dto, nil
}

func (s *bookingService) List(ctx context.Context, caller Caller, limit, offset int, status *domain.BookingStatus) ([]domain.BookingDTO, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var (
		bs  []domain.Booking
		err error
	)
	if caller.IsAdmin {
		bs, err = s.bookings.ListAll(ctx, limit, offset, status)
	} else {
		bs, err = s.bookings.ListByUser(ctx, caller.UserID, limit, offset, status)
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.BookingDTO, 0, len(bs))
	for i := range bs {
		out = append(out, s.decorate(ctx, &bs[i]))
	}
	return out, nil
}

func (s *bookingService) Update(ctx context.Context, caller Caller, id int64, patch domain.BookingPatch) (*domain.BookingDTO, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.mayAccess(booking.UserID) {
		return nil, ErrForbidden
	}

	var eventDate *time.Time
	if patch.EventDate != nil {
		d, err := time.Parse(domain.DateLayout, *patch.EventDate)
		if err != nil {
			return nil, invalid("Formato de fecha inválido, usa YYYY-MM-DD")
		}
		eventDate = &d
	}
	if patch.Status != nil {
		if _, ok := domain.ParseBookingStatus(*patch.Status); !ok {
			return nil, invalid("Estado de reserva inválido")
		}
	}
	if patch.PaymentStatus != nil {
		if _, ok := domain.ParsePaymentStatus(*patch.PaymentStatus); !ok {
			return nil, invalid("Estado de pago inválido")
		}
	}
	if patch.TotalPrice != nil && *patch.TotalPrice < 0 {
		return nil, invalid("total_price no puede ser negativo")
	}
	if patch.NumChildren != nil && *patch.NumChildren < 0 {
		return nil, invalid("num_children no puede ser negativo")
	}

	updated, err := s.bookings.Update(ctx, id, patch, eventDate)
	if err != nil {
		return nil, err
	}

	// Same two-phase shape as creation: the committed update stands whatever
	// the calendar says.
	owner, costume, pkg := s.related(ctx, updated)
	s.syncCalendar(ctx, updated, owner, costume, pkg)

	if err := s.bus.Publish(ctx, events.BookingUpdated, events.BookingUpdatedEvent{
		BookingID: updated.ID,
		UserID:    updated.UserID,
		Status:    string(updated.Status),
		UpdatedAt: updated.UpdatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to publish booking updated event", "error", err, "booking_id", updated.ID)
	}

	dto := updated.DTO(owner, costume, pkg)
	return &dto, nil
}

func (s *bookingService) Delete(ctx context.Context, caller Caller, id int64) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.mayAccess(booking.UserID) {
		return ErrForbidden
	}

	ok, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return postgres.ErrNotFound
	}

	if err := s.bus.Publish(ctx, events.BookingCanceled, events.BookingCanceledEvent{
		BookingID:  id,
		UserID:     booking.UserID,
		CanceledAt: time.Now(),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to publish booking canceled event", "error", err, "booking_id", id)
	}
	return nil
}

// syncCalendar derives the event window and pushes it to the calendar.
// Outcomes are captured for logging only; no error path leads back to the
// caller.
func (s *bookingService) syncCalendar(ctx context.Context, b *domain.Booking, owner *domain.User, costume *domain.Costume, pkg *domain.AnimationPackage) {
	start, end, err := BuildEventWindow(b.EventDate, b.EventTime, bookingDuration(b.BookingType, pkg))
	if err != nil {
		logger.WarnContext(ctx, "calendar window derivation failed", "booking_id", b.ID, "error", err)
		return
	}

	res := s.calendar.CreateEvent(ctx, calendar.Event{
		Summary:     bookingSummary(b, costume, pkg),
		Description: bookingDescription(b, owner, costume, pkg),
		Location:    bookingLocation(b),
		Start:       start,
		End:         end,
	})
	if res.Ok {
		logger.InfoContext(ctx, "booking synced to calendar", "booking_id", b.ID, "calendar_event_id", res.EventID)
	} else {
		logger.WarnContext(ctx, "booking calendar sync skipped", "booking_id", b.ID, "reason", res.Reason)
	}
}

// decorate loads the related entities for serialization; lookups are
// best-effort so a missing reference degrades to a sparser DTO.
func (s *bookingService) decorate(ctx context.Context, b *domain.Booking) domain.BookingDTO {
	owner, costume, pkg := s.related(ctx, b)
	return b.DTO(owner, costume, pkg)
}

func (s *bookingService) related(ctx context.Context, b *domain.Booking) (*domain.User, *domain.Costume, *domain.AnimationPackage) {
	var (
		owner   *domain.User
		costume *domain.Costume
		pkg     *domain.AnimationPackage
	)
	if u, err := s.users.FindByID(ctx, b.UserID); err == nil {
		owner = u
	}
	if b.CostumeID != nil {
		if c, err := s.costumes.GetByID(ctx, *b.CostumeID); err == nil {
			costume = c
		}
	}
	if b.PackageID != nil {
		if p, err := s.packages.GetByID(ctx, *b.PackageID); err == nil {
			pkg = p
		}
	}
	return owner, costume, pkg
}

func parseOptionalID(raw json.Number) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw.String(), 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func checkTypeConsistency(t domain.BookingType, costumeID, packageID *int64) error {
	switch t {
	case domain.BookingCostume:
		if costumeID == nil {
			return invalid("Una reserva de disfraz requiere costume_id")
		}
	case domain.BookingPackage:
		if packageID == nil {
			return invalid("Una reserva de paquete requiere package_id")
		}
	case domain.BookingBoth:
		if costumeID == nil || packageID == nil {
			return invalid("Una reserva combinada requiere costume_id y package_id")
		}
	}
	return nil
}

// bookingSummary builds the human calendar title. Fallback literals cover
// references that disappeared between the write and the sync.
func bookingSummary(b *domain.Booking, costume *domain.Costume, pkg *domain.AnimationPackage) string {
	var summary string
	switch b.BookingType {
	case domain.BookingBoth:
		pkgName, costumeName := "Paquete", "Disfraz"
		if pkg != nil {
			pkgName = pkg.Name
		}
		if costume != nil {
			costumeName = costume.Name
		}
		summary = pkgName + " + " + costumeName
	case domain.BookingPackage:
		summary = "Paquete de Animación"
		if pkg != nil {
			summary = pkg.Name
		}
	default:
		summary = "Disfraz"
		if costume != nil {
			summary = costume.Name
		}
	}
	if strings.TrimSpace(summary) == "" {
		summary = fmt.Sprintf("Booking #%d", b.ID)
	}
	return summary
}

func bookingLocation(b *domain.Booking) string {
	parts := make([]string, 0, 2)
	if b.EventLocation != "" {
		parts = append(parts, b.EventLocation)
	}
	if b.EventAddress != "" {
		parts = append(parts, b.EventAddress)
	}
	return strings.Join(parts, ", ")
}

func bookingDescription(b *domain.Booking, owner *domain.User, costume *domain.Costume, pkg *domain.AnimationPackage) string {
	eventTime := b.EventTime
	if eventTime == "" {
		eventTime = defaultEventTime
	}
	children := "N/A"
	if b.NumChildren != nil {
		children = strconv.Itoa(*b.NumChildren)
	}
	ownerLine := "desconocido"
	if owner != nil {
		ownerLine = fmt.Sprintf("%s (%s)", owner.Name, owner.Email)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Reserva #%d\n", b.ID)
	fmt.Fprintf(&sb, "Tipo: %s\n", b.BookingType)
	fmt.Fprintf(&sb, "Cliente: %s\n", ownerLine)
	fmt.Fprintf(&sb, "Fecha: %s\n", b.EventDate.Format(domain.DateLayout))
	fmt.Fprintf(&sb, "Hora: %s\n", eventTime)
	fmt.Fprintf(&sb, "Niños: %s\n", children)
	fmt.Fprintf(&sb, "Total: $%.2f", b.TotalPrice)
	if pkg != nil {
		fmt.Fprintf(&sb, "\nPaquete: %s", pkg.Name)
	}
	if costume != nil {
		fmt.Fprintf(&sb, "\nDisfraz: %s", costume.Name)
	}
	if b.SpecialRequests != "" {
		fmt.Fprintf(&sb, "\nSolicitudes especiales: %s", b.SpecialRequests)
	}
	return sb.String()
}
