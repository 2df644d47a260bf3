package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diverkids/diverkids-api/internal/domain"
	"github.com/diverkids/diverkids-api/internal/http/handlers"
	"github.com/diverkids/diverkids-api/internal/platform/auth"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/service"
)

// stubBookingSvc returns canned results so the tests exercise the HTTP
// contract: routing, auth, and the error-to-status mapping.
type stubBookingSvc struct {
	created  *domain.BookingDTO
	err      error
	lastUser int64
	lastReq  *domain.BookingCreateReq
	caller   service.Caller
}

func (s *stubBookingSvc) Create(_ context.Context, userID int64, req *domain.BookingCreateReq) (*domain.BookingDTO, error) {
	s.lastUser = userID
	s.lastReq = req
	return s.created, s.err
}

func (s *stubBookingSvc) Get(_ context.Context, caller service.Caller, _ int64) (*domain.BookingDTO, error) {
	s.caller = caller
	return s.created, s.err
}

func (s *stubBookingSvc) List(_ context.Context, caller service.Caller, _, _ int, _ *domain.BookingStatus) ([]domain.BookingDTO, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return []domain.BookingDTO{*s.created}, nil
}

func (s *stubBookingSvc) Update(_ context.Context, caller service.Caller, _ int64, _ domain.BookingPatch) (*domain.BookingDTO, error) {
	s.caller = caller
	return s.created, s.err
}

func (s *stubBookingSvc) Delete(_ context.Context, caller service.Caller, _ int64) error {
	s.caller = caller
	return s.err
}

func setupBookingsServer(t *testing.T, svc service.BookingService) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Mount("/api/bookings", handlers.NewBookingsHandler(svc).Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func parentToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.NewAccessToken(userID, "parent@example.com", "parent", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func sampleDTO() *domain.BookingDTO {
	return &domain.BookingDTO{
		ID:          42,
		UserID:      1,
		BookingType: "costume",
		EventDate:   "2026-03-14",
		Status:      "pending",
	}
}

func TestBookings_RequireToken(t *testing.T) {
	srv := setupBookingsServer(t, &stubBookingSvc{created: sampleDTO()})

	get(t, srv.URL+"/api/bookings", http.StatusUnauthorized).Body.Close()

	resp := get(t, srv.URL+"/api/bookings/42", http.StatusUnauthorized)
	var out map[string]string
	decode(t, resp, &out)
	resp.Body.Close()
	if out["msg"] != "Falta token de autorización" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
}

func TestBookings_MalformedToken_Unprocessable(t *testing.T) {
	srv := setupBookingsServer(t, &stubBookingSvc{created: sampleDTO()})

	authedGet(t, srv.URL+"/api/bookings", "not-a-jwt", http.StatusUnprocessableEntity).Body.Close()
}

func TestBookings_Create_Created(t *testing.T) {
	svc := &stubBookingSvc{created: sampleDTO()}
	srv := setupBookingsServer(t, svc)
	token := parentToken(t, 1)

	resp := authedDo(t, http.MethodPost, srv.URL+"/api/bookings", token, map[string]string{
		"booking_type": "costume",
		"event_date":   "2026-03-14",
		"costume_id":   "5",
	}, http.StatusCreated)
	defer resp.Body.Close()

	var out domain.BookingDTO
	decode(t, resp, &out)
	if out.ID != 42 {
		t.Fatalf("expected booking 42, got %d", out.ID)
	}
	if svc.lastUser != 1 {
		t.Fatalf("handler must pass the token's user id, got %d", svc.lastUser)
	}
}

func TestBookings_Create_NumericIDsAccepted(t *testing.T) {
	svc := &stubBookingSvc{created: sampleDTO()}
	srv := setupBookingsServer(t, svc)

	// Clients send ids either as numbers or as strings; both must decode.
	resp := authedDo(t, http.MethodPost, srv.URL+"/api/bookings", parentToken(t, 1),
		map[string]interface{}{
			"event_date":   "2025-12-01",
			"booking_type": "costume",
			"costume_id":   1,
		}, http.StatusCreated)
	resp.Body.Close()

	if svc.lastReq == nil || svc.lastReq.CostumeID.String() != "1" {
		t.Fatalf("expected costume id 1 to reach the service, got %+v", svc.lastReq)
	}
}

func TestBookings_Create_ValidationMapsTo400(t *testing.T) {
	svc := &stubBookingSvc{err: &service.ValidationError{Msg: "Faltan campos requeridos: event_date y booking_type"}}
	srv := setupBookingsServer(t, svc)

	resp := authedDo(t, http.MethodPost, srv.URL+"/api/bookings", parentToken(t, 1),
		map[string]string{}, http.StatusBadRequest)
	defer resp.Body.Close()

	var out map[string]string
	decode(t, resp, &out)
	if out["msg"] != "Faltan campos requeridos: event_date y booking_type" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
}

func TestBookings_Get_ForbiddenMapsTo403(t *testing.T) {
	svc := &stubBookingSvc{err: service.ErrForbidden}
	srv := setupBookingsServer(t, svc)

	resp := authedGet(t, srv.URL+"/api/bookings/42", parentToken(t, 2), http.StatusForbidden)
	defer resp.Body.Close()

	var out map[string]string
	decode(t, resp, &out)
	if out["msg"] != "No autorizado" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
	if svc.caller.UserID != 2 || svc.caller.IsAdmin {
		t.Fatalf("unexpected caller %+v", svc.caller)
	}
}

func TestBookings_Get_NotFoundMapsTo404(t *testing.T) {
	svc := &stubBookingSvc{err: postgres.ErrNotFound}
	srv := setupBookingsServer(t, svc)

	resp := authedGet(t, srv.URL+"/api/bookings/42", parentToken(t, 1), http.StatusNotFound)
	defer resp.Body.Close()

	var out map[string]string
	decode(t, resp, &out)
	if out["msg"] != "Reserva no encontrada" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
}

func TestBookings_AdminCallerPropagates(t *testing.T) {
	svc := &stubBookingSvc{created: sampleDTO()}
	srv := setupBookingsServer(t, svc)

	token, err := auth.NewAccessToken(9, "admin@example.com", "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	authedGet(t, srv.URL+"/api/bookings", token, http.StatusOK).Body.Close()
	if !svc.caller.IsAdmin || svc.caller.UserID != 9 {
		t.Fatalf("expected admin caller, got %+v", svc.caller)
	}
}

func TestBookings_Cancel_Message(t *testing.T) {
	svc := &stubBookingSvc{}
	srv := setupBookingsServer(t, svc)

	resp := authedDo(t, http.MethodDelete, srv.URL+"/api/bookings/42", parentToken(t, 1), nil, http.StatusOK)
	defer resp.Body.Close()

	var out map[string]string
	decode(t, resp, &out)
	if out["msg"] != "Reserva eliminada" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
}

func TestBookings_InvalidID_BadRequest(t *testing.T) {
	srv := setupBookingsServer(t, &stubBookingSvc{created: sampleDTO()})

	authedGet(t, srv.URL+"/api/bookings/abc", parentToken(t, 1), http.StatusBadRequest).Body.Close()
}
