package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diverkids/diverkids-api/internal/domain"
	mw "github.com/diverkids/diverkids-api/internal/http/middleware"
	"github.com/diverkids/diverkids-api/internal/http/response"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/service"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

type BookingsHandler struct {
	Svc service.BookingService
}

func NewBookingsHandler(svc service.BookingService) *BookingsHandler {
	return &BookingsHandler{Svc: svc}
}

func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireJWT)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.getByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.cancel)
	return r
}

func caller(r *http.Request) service.Caller {
	return service.Caller{UserID: mw.CallerID(r), IsAdmin: mw.IsAdmin(r)}
}

func writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, verr.Msg)
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, "No autorizado")
	case errors.Is(err, postgres.ErrNotFound):
		response.NotFound(w, "Reserva no encontrada")
	default:
		logger.ErrorContext(r.Context(), "booking operation failed", "error", err)
		response.InternalError(w)
	}
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.BookingCreateReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "JSON inválido")
		return
	}

	dto, err := h.Svc.Create(r.Context(), mw.CallerID(r), &in)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, dto)
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	var status *domain.BookingStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st, ok := domain.ParseBookingStatus(v)
		if !ok {
			response.BadRequest(w, "Estado de reserva inválido")
			return
		}
		status = &st
	}

	out, err := h.Svc.List(r.Context(), caller(r), limit, offset, status)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, out)
}

func (h *BookingsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	dto, err := h.Svc.Get(r.Context(), caller(r), id)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, dto)
}

func (h *BookingsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	var patch domain.BookingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "JSON inválido")
		return
	}

	dto, err := h.Svc.Update(r.Context(), caller(r), id, patch)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, dto)
}

func (h *BookingsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	if err := h.Svc.Delete(r.Context(), caller(r), id); err != nil {
		writeBookingError(w, r, err)
		return
	}
	response.Msg(w, http.StatusOK, "Reserva eliminada")
}
