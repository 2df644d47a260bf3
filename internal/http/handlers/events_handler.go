package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diverkids/diverkids-api/internal/domain"
	mw "github.com/diverkids/diverkids-api/internal/http/middleware"
	"github.com/diverkids/diverkids-api/internal/http/response"
	"github.com/diverkids/diverkids-api/internal/platform/calendar"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/service"
	"github.com/diverkids/diverkids-api/pkg/events"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

type EventsHandler struct {
	Events   postgres.EventsRepo
	Calendar calendar.Service
	Bus      events.Publisher
}

func NewEventsHandler(repo postgres.EventsRepo, cal calendar.Service, bus events.Publisher) *EventsHandler {
	return &EventsHandler{Events: repo, Calendar: cal, Bus: bus}
}

func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireJWT)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.getByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	var status *domain.EventStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st, ok := domain.ParseEventStatus(v)
		if !ok {
			response.BadRequest(w, "Estado inválido")
			return
		}
		status = &st
	}

	var (
		es  []domain.Event
		err error
	)
	if mw.IsAdmin(r) {
		es, err = h.Events.ListAll(r.Context(), status)
	} else {
		es, err = h.Events.ListByUser(r.Context(), mw.CallerID(r), status)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "event listing failed", "error", err)
		response.InternalError(w)
		return
	}
	if es == nil {
		es = []domain.Event{}
	}
	response.WriteJSON(w, http.StatusOK, es)
}

func (h *EventsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.EventCreateReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil ||
		in.Title == "" || in.Date == "" || in.Description == "" {
		response.BadRequest(w, "Título, fecha y descripción requeridos")
		return
	}
	if _, err := time.Parse(domain.DateLayout, in.Date); err != nil {
		response.BadRequest(w, "Formato de fecha inválido, usa YYYY-MM-DD")
		return
	}

	e, err := h.Events.Create(r.Context(), &domain.Event{
		Title:       in.Title,
		Date:        in.Date,
		Time:        in.Time,
		Location:    in.Location,
		Description: in.Description,
		UserID:      mw.CallerID(r),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event create failed", "error", err)
		response.InternalError(w)
		return
	}

	// Same two-phase contract as bookings: the row is committed, the
	// calendar push may fail silently.
	h.syncCalendar(r, e)
	if err := h.Bus.Publish(r.Context(), events.EventCreated, events.EventCreatedEvent{
		EventID: e.ID, UserID: e.UserID, Title: e.Title, Date: e.Date, CreatedAt: e.CreatedAt,
	}); err != nil {
		logger.ErrorContext(r.Context(), "failed to publish event created event", "error", err)
	}

	response.WriteJSON(w, http.StatusCreated, e)
}

func (h *EventsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	e, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, e)
}

func (h *EventsHandler) update(w http.ResponseWriter, r *http.Request) {
	e, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	var patch domain.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "JSON inválido")
		return
	}
	if patch.Date != nil {
		if _, err := time.Parse(domain.DateLayout, *patch.Date); err != nil {
			response.BadRequest(w, "Formato de fecha inválido, usa YYYY-MM-DD")
			return
		}
	}
	if patch.Status != nil {
		if _, ok := domain.ParseEventStatus(*patch.Status); !ok {
			response.BadRequest(w, "Estado inválido")
			return
		}
	}

	updated, err := h.Events.Update(r.Context(), e.ID, patch)
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err)
		response.InternalError(w)
		return
	}

	h.syncCalendar(r, updated)
	response.WriteJSON(w, http.StatusOK, updated)
}

func (h *EventsHandler) delete(w http.ResponseWriter, r *http.Request) {
	e, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}
	if _, err := h.Events.Delete(r.Context(), e.ID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err)
		response.InternalError(w)
		return
	}
	response.Msg(w, http.StatusOK, "Evento eliminado")
}

// fetchAuthorized loads the event and applies the owner-or-admin predicate.
func (h *EventsHandler) fetchAuthorized(w http.ResponseWriter, r *http.Request) (*domain.Event, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return nil, false
	}
	e, err := h.Events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Evento no encontrado")
			return nil, false
		}
		response.InternalError(w)
		return nil, false
	}
	if e.UserID != mw.CallerID(r) && !mw.IsAdmin(r) {
		response.Forbidden(w, "No autorizado")
		return nil, false
	}
	return e, true
}

func (h *EventsHandler) syncCalendar(r *http.Request, e *domain.Event) {
	date, err := time.Parse(domain.DateLayout, e.Date)
	if err != nil {
		logger.WarnContext(r.Context(), "event has unparseable date, calendar sync skipped", "event_id", e.ID)
		return
	}
	start, end, err := service.BuildEventWindow(date, e.Time, 2)
	if err != nil {
		logger.WarnContext(r.Context(), "calendar window derivation failed", "event_id", e.ID, "error", err)
		return
	}
	res := h.Calendar.CreateEvent(r.Context(), calendar.Event{
		Summary:     e.Title,
		Description: e.Description,
		Location:    e.Location,
		Start:       start,
		End:         end,
	})
	if !res.Ok {
		logger.WarnContext(r.Context(), "event calendar sync skipped", "event_id", e.ID, "reason", res.Reason)
	}
}
