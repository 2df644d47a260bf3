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
	"github.com/diverkids/diverkids-api/internal/platform/mailer"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/utils"
	"github.com/diverkids/diverkids-api/pkg/events"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

type ContactsHandler struct {
	Contacts   postgres.ContactsRepo
	EmailSvc   mailer.Service
	Bus        events.Publisher
	AdminEmail string
}

func NewContactsHandler(repo postgres.ContactsRepo, emailSvc mailer.Service, bus events.Publisher, adminEmail string) *ContactsHandler {
	return &ContactsHandler{Contacts: repo, EmailSvc: emailSvc, Bus: bus, AdminEmail: adminEmail}
}

func (h *ContactsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireJWT, mw.RequireAdmin)
		r.Get("/", h.list)
		r.Get("/{id}", h.getByID)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

func (h *ContactsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactCreateReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil ||
		in.Name == "" || in.Email == "" || in.Message == "" {
		response.BadRequest(w, "Todos los campos son requeridos")
		return
	}
	if !utils.IsValidEmail(in.Email) {
		response.BadRequest(w, "Email inválido")
		return
	}

	c, err := h.Contacts.Create(r.Context(), &domain.Contact{
		Name:    in.Name,
		Email:   utils.NormalizeEmail(in.Email),
		Phone:   in.Phone,
		Message: in.Message,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "contact create failed", "error", err)
		response.InternalError(w)
		return
	}

	// Admin notification is advisory: the message is already stored.
	if err := h.EmailSvc.SendContactNotification(h.AdminEmail, c.Name, c.Email, c.Phone, c.Message); err != nil {
		logger.WarnContext(r.Context(), "contact notification email failed", "error", err, "contact_id", c.ID)
	}
	if err := h.Bus.Publish(r.Context(), events.ContactCreated, events.ContactCreatedEvent{
		ContactID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt,
	}); err != nil {
		logger.ErrorContext(r.Context(), "failed to publish contact created event", "error", err)
	}

	response.Msg(w, http.StatusCreated, "Mensaje enviado")
}

func (h *ContactsHandler) list(w http.ResponseWriter, r *http.Request) {
	var status *domain.ContactStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := domain.ParseContactStatus(raw)
		if !ok {
			response.BadRequest(w, "Estado inválido (pending, read, replied)")
			return
		}
		status = &st
	}

	cs, err := h.Contacts.List(r.Context(), status)
	if err != nil {
		logger.ErrorContext(r.Context(), "contact listing failed", "error", err)
		response.InternalError(w)
		return
	}
	if cs == nil {
		cs = []domain.Contact{}
	}
	response.WriteJSON(w, http.StatusOK, cs)
}

func (h *ContactsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	c, err := h.Contacts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Mensaje no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, c)
}

func (h *ContactsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	var patch domain.ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch.Status == nil {
		response.BadRequest(w, "Estado requerido")
		return
	}
	st, ok := domain.ParseContactStatus(*patch.Status)
	if !ok {
		response.BadRequest(w, "Estado inválido (pending, read, replied)")
		return
	}

	c, err := h.Contacts.UpdateStatus(r.Context(), id, st)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Mensaje no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, c)
}

func (h *ContactsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	ok, err := h.Contacts.Delete(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "contact delete failed", "error", err)
		response.InternalError(w)
		return
	}
	if !ok {
		response.NotFound(w, "Mensaje no encontrado")
		return
	}
	response.Msg(w, http.StatusOK, "Mensaje eliminado")
}
