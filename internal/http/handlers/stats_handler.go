package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/diverkids/diverkids-api/internal/http/middleware"
	"github.com/diverkids/diverkids-api/internal/http/response"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

// StatsHandler serves aggregate counters for the admin dashboard.
type StatsHandler struct {
	Users    postgres.UsersRepo
	Bookings postgres.BookingsRepo
	Events   postgres.EventsRepo
	Costumes postgres.CostumesRepo
	Packages postgres.PackagesRepo
	Contacts postgres.ContactsRepo
}

type statsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalBookings int64 `json:"total_bookings"`
	TotalEvents   int64 `json:"total_events"`
	TotalCostumes int64 `json:"total_costumes"`
	TotalPackages int64 `json:"total_packages"`
	TotalContacts int64 `json:"total_contacts"`
}

func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireJWT, mw.RequireAdmin)
	r.Get("/", h.get)
	return r
}

func (h *StatsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var stats statsResponse

	counters := []struct {
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{&stats.TotalUsers, h.Users.Count},
		{&stats.TotalBookings, h.Bookings.Count},
		{&stats.TotalEvents, h.Events.Count},
		{&stats.TotalCostumes, h.Costumes.Count},
		{&stats.TotalPackages, h.Packages.Count},
		{&stats.TotalContacts, h.Contacts.Count},
	}
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "stats aggregation failed", "error", err)
			response.InternalError(w)
			return
		}
		*c.dst = n
	}
	response.WriteJSON(w, http.StatusOK, stats)
}
