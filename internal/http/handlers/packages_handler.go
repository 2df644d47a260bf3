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
	"github.com/diverkids/diverkids-api/pkg/logger"
)

type PackagesHandler struct {
	Packages postgres.PackagesRepo
	Cache    func(http.Handler) http.Handler
}

func NewPackagesHandler(repo postgres.PackagesRepo, cache func(http.Handler) http.Handler) *PackagesHandler {
	return &PackagesHandler{Packages: repo, Cache: cache}
}

func (h *PackagesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		if h.Cache != nil {
			r.Use(h.Cache)
		}
		r.Get("/", h.list)
		r.Get("/{id}", h.getByID)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireJWT, mw.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

func (h *PackagesHandler) list(w http.ResponseWriter, r *http.Request) {
	var filter domain.PackageFilter
	if v := r.URL.Query().Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "available debe ser true o false")
			return
		}
		filter.Available = &b
	}

	ps, err := h.Packages.List(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "package listing failed", "error", err)
		response.InternalError(w)
		return
	}
	if ps == nil {
		ps = []domain.AnimationPackage{}
	}
	response.WriteJSON(w, http.StatusOK, ps)
}

func (h *PackagesHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	p, err := h.Packages.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Paquete no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, p)
}

func (h *PackagesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		DurationHours int     `json:"duration_hours"`
		Price         float64 `json:"price"`
		Includes      string  `json:"includes"`
		MaxChildren   *int    `json:"max_children"`
		ImageURL      string  `json:"image_url"`
		Available     *bool   `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		response.BadRequest(w, "Nombre requerido")
		return
	}
	if in.DurationHours < 1 {
		response.BadRequest(w, "duration_hours debe ser al menos 1")
		return
	}

	p := &domain.AnimationPackage{
		Name:          in.Name,
		Description:   in.Description,
		DurationHours: in.DurationHours,
		Price:         in.Price,
		Includes:      in.Includes,
		MaxChildren:   in.MaxChildren,
		ImageURL:      in.ImageURL,
		Available:     true,
	}
	if in.Available != nil {
		p.Available = *in.Available
	}

	created, err := h.Packages.Create(r.Context(), p)
	if err != nil {
		logger.ErrorContext(r.Context(), "package create failed", "error", err)
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *PackagesHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	var patch domain.PackagePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "JSON inválido")
		return
	}
	if patch.DurationHours != nil && *patch.DurationHours < 1 {
		response.BadRequest(w, "duration_hours debe ser al menos 1")
		return
	}

	p, err := h.Packages.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Paquete no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, p)
}

func (h *PackagesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	ok, err := h.Packages.Delete(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "package delete failed", "error", err)
		response.InternalError(w)
		return
	}
	if !ok {
		response.NotFound(w, "Paquete no encontrado")
		return
	}
	response.Msg(w, http.StatusOK, "Paquete eliminado")
}
