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
)

type mockCostumesRepo struct {
	nextID   int64
	costumes map[int64]*domain.Costume
	lastList domain.CostumeFilter
}

func newMockCostumesRepo() *mockCostumesRepo {
	return &mockCostumesRepo{nextID: 1, costumes: make(map[int64]*domain.Costume)}
}

func (m *mockCostumesRepo) Create(_ context.Context, c *domain.Costume) (*domain.Costume, error) {
	stored := *c
	stored.ID = m.nextID
	m.nextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.costumes[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *mockCostumesRepo) GetByID(_ context.Context, id int64) (*domain.Costume, error) {
	c, ok := m.costumes[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return c, nil
}

func (m *mockCostumesRepo) List(_ context.Context, f domain.CostumeFilter) ([]domain.Costume, error) {
	m.lastList = f
	var out []domain.Costume
	for _, c := range m.costumes {
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Available != nil && c.Available != *f.Available {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCostumesRepo) Update(_ context.Context, id int64, p domain.CostumePatch) (*domain.Costume, error) {
	c, ok := m.costumes[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Available != nil {
		c.Available = *p.Available
	}
	return c, nil
}

func (m *mockCostumesRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.costumes[id]; !ok {
		return false, nil
	}
	delete(m.costumes, id)
	return true, nil
}

func (m *mockCostumesRepo) Count(context.Context) (int64, error) {
	return int64(len(m.costumes)), nil
}

func setupCostumesServer(t *testing.T) (*httptest.Server, *mockCostumesRepo) {
	t.Helper()

	repo := newMockCostumesRepo()
	r := chi.NewRouter()
	r.Mount("/api/costumes", handlers.NewCostumesHandler(repo, nil).Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewAccessToken(99, "admin@example.com", "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestCostumes_PublicBrowsing(t *testing.T) {
	srv, repo := setupCostumesServer(t)
	repo.costumes[1] = &domain.Costume{ID: 1, Name: "Spiderman", Category: "superheroes", Available: true}
	repo.costumes[2] = &domain.Costume{ID: 2, Name: "Elsa", Category: "princesas", Available: false}
	repo.nextID = 3

	// No token needed to browse.
	resp := get(t, srv.URL+"/api/costumes?category=superheroes&available=true", http.StatusOK)
	defer resp.Body.Close()

	var out []domain.Costume
	decode(t, resp, &out)
	if len(out) != 1 || out[0].Name != "Spiderman" {
		t.Fatalf("unexpected listing %+v", out)
	}
	if repo.lastList.Category != "superheroes" || repo.lastList.Available == nil || !*repo.lastList.Available {
		t.Fatalf("filter not forwarded: %+v", repo.lastList)
	}
}

func TestCostumes_ListInvalidAvailable(t *testing.T) {
	srv, _ := setupCostumesServer(t)

	get(t, srv.URL+"/api/costumes?available=maybe", http.StatusBadRequest).Body.Close()
}

func TestCostumes_GetUnknown_NotFound(t *testing.T) {
	srv, _ := setupCostumesServer(t)

	resp := get(t, srv.URL+"/api/costumes/999", http.StatusNotFound)
	defer resp.Body.Close()

	var out map[string]string
	decode(t, resp, &out)
	if out["msg"] != "Disfraz no encontrado" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
}

func TestCostumes_WritesAreAdminOnly(t *testing.T) {
	srv, _ := setupCostumesServer(t)
	body := map[string]interface{}{"name": "Batman", "price_per_day": 12000}

	// Anonymous.
	postJSON(t, srv.URL+"/api/costumes", body, http.StatusUnauthorized).Body.Close()

	// Authenticated parent.
	resp := authedDo(t, http.MethodPost, srv.URL+"/api/costumes", parentToken(t, 1), body, http.StatusForbidden)
	var out map[string]string
	decode(t, resp, &out)
	resp.Body.Close()
	if out["msg"] != "Acceso denegado. Solo administradores pueden acceder." {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
}

func TestCostumes_AdminCreateDefaults(t *testing.T) {
	srv, _ := setupCostumesServer(t)

	resp := authedDo(t, http.MethodPost, srv.URL+"/api/costumes", adminToken(t), map[string]interface{}{
		"name":          "Batman",
		"category":      "superheroes",
		"price_per_day": 12000,
	}, http.StatusCreated)
	defer resp.Body.Close()

	var out domain.Costume
	decode(t, resp, &out)
	if !out.Available || out.StockQuantity != 1 {
		t.Fatalf("expected available=true stock=1 defaults, got %+v", out)
	}
}

func TestCostumes_AdminDelete(t *testing.T) {
	srv, repo := setupCostumesServer(t)
	repo.costumes[1] = &domain.Costume{ID: 1, Name: "Spiderman"}
	repo.nextID = 2

	resp := authedDo(t, http.MethodDelete, srv.URL+"/api/costumes/1", adminToken(t), nil, http.StatusOK)
	var out map[string]string
	decode(t, resp, &out)
	resp.Body.Close()
	if out["msg"] != "Disfraz eliminado" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}

	authedDo(t, http.MethodDelete, srv.URL+"/api/costumes/1", adminToken(t), nil, http.StatusNotFound).Body.Close()
}
