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

type CostumesHandler struct {
	Costumes postgres.CostumesRepo
	Cache    func(http.Handler) http.Handler
}

func NewCostumesHandler(repo postgres.CostumesRepo, cache func(http.Handler) http.Handler) *CostumesHandler {
	return &CostumesHandler{Costumes: repo, Cache: cache}
}

func (h *CostumesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	// Browsing is public and cacheable; writes are admin-only.
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

func (h *CostumesHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := domain.CostumeFilter{Category: r.URL.Query().Get("category")}
	if v := r.URL.Query().Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "available debe ser true o false")
			return
		}
		filter.Available = &b
	}

	cs, err := h.Costumes.List(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "costume listing failed", "error", err)
		response.InternalError(w)
		return
	}
	if cs == nil {
		cs = []domain.Costume{}
	}
	response.WriteJSON(w, http.StatusOK, cs)
}

func (h *CostumesHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	c, err := h.Costumes.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Disfraz no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, c)
}

func (h *CostumesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		Category      string  `json:"category"`
		Size          string  `json:"size"`
		PricePerDay   float64 `json:"price_per_day"`
		ImageURL      string  `json:"image_url"`
		Available     *bool   `json:"available"`
		StockQuantity *int    `json:"stock_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		response.BadRequest(w, "Nombre requerido")
		return
	}
	if in.PricePerDay < 0 {
		response.BadRequest(w, "price_per_day no puede ser negativo")
		return
	}

	c := &domain.Costume{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Size:          in.Size,
		PricePerDay:   in.PricePerDay,
		ImageURL:      in.ImageURL,
		Available:     true,
		StockQuantity: 1,
	}
	if in.Available != nil {
		c.Available = *in.Available
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			response.BadRequest(w, "stock_quantity no puede ser negativo")
			return
		}
		c.StockQuantity = *in.StockQuantity
	}

	created, err := h.Costumes.Create(r.Context(), c)
	if err != nil {
		logger.ErrorContext(r.Context(), "costume create failed", "error", err)
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *CostumesHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	var patch domain.CostumePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "JSON inválido")
		return
	}
	if patch.PricePerDay != nil && *patch.PricePerDay < 0 {
		response.BadRequest(w, "price_per_day no puede ser negativo")
		return
	}
	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		response.BadRequest(w, "stock_quantity no puede ser negativo")
		return
	}

	c, err := h.Costumes.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Disfraz no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, c)
}

func (h *CostumesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "ID inválido")
		return
	}
	ok, err := h.Costumes.Delete(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "costume delete failed", "error", err)
		response.InternalError(w)
		return
	}
	if !ok {
		response.NotFound(w, "Disfraz no encontrado")
		return
	}
	response.Msg(w, http.StatusOK, "Disfraz eliminado")
}
