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
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/pkg/events"
)

type mockContactsRepo struct {
	nextID   int64
	contacts map[int64]*domain.Contact
}

func newMockContactsRepo() *mockContactsRepo {
	return &mockContactsRepo{nextID: 1, contacts: make(map[int64]*domain.Contact)}
}

func (m *mockContactsRepo) Create(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	stored := *c
	stored.ID = m.nextID
	m.nextID++
	stored.Status = domain.ContactPending
	stored.CreatedAt = time.Now()
	m.contacts[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *mockContactsRepo) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return c, nil
}

func (m *mockContactsRepo) List(_ context.Context, status *domain.ContactStatus) ([]domain.Contact, error) {
	var out []domain.Contact
	for _, c := range m.contacts {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockContactsRepo) UpdateStatus(_ context.Context, id int64, status domain.ContactStatus) (*domain.Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	c.Status = status
	return c, nil
}

func (m *mockContactsRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.contacts[id]; !ok {
		return false, nil
	}
	delete(m.contacts, id)
	return true, nil
}

func (m *mockContactsRepo) Count(context.Context) (int64, error) {
	return int64(len(m.contacts)), nil
}

func setupContactsServer(t *testing.T) (*httptest.Server, *mockContactsRepo, *mailRecorder) {
	t.Helper()

	repo := newMockContactsRepo()
	mail := &mailRecorder{}
	h := handlers.NewContactsHandler(repo, mail, events.NoopBus{}, "admin@diverkids.com")

	r := chi.NewRouter()
	r.Mount("/api/contact", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo, mail
}

func TestContact_PublicCreate(t *testing.T) {
	srv, repo, mail := setupContactsServer(t)

	resp := postJSON(t, srv.URL+"/api/contact", map[string]string{
		"name":    "Carla",
		"email":   "carla@example.com",
		"phone":   "+56912345678",
		"message": "Quiero cotizar un cumpleaños",
	}, http.StatusCreated)
	defer resp.Body.Close()

	var out map[string]string
	decode(t, resp, &out)
	if out["msg"] != "Mensaje enviado" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}
	if len(repo.contacts) != 1 {
		t.Fatalf("expected 1 stored contact, got %d", len(repo.contacts))
	}
	if len(mail.notifyTos) != 1 || mail.notifyTos[0] != "admin@diverkids.com" {
		t.Fatalf("expected admin notification, got %v", mail.notifyTos)
	}
}

func TestContact_MissingFields(t *testing.T) {
	srv, repo, _ := setupContactsServer(t)

	tests := []map[string]string{
		{"email": "a@example.com", "message": "hola"},
		{"name": "A", "message": "hola"},
		{"name": "A", "email": "a@example.com"},
	}
	for _, body := range tests {
		resp := postJSON(t, srv.URL+"/api/contact", body, http.StatusBadRequest)
		var out map[string]string
		decode(t, resp, &out)
		resp.Body.Close()
		if out["msg"] != "Todos los campos son requeridos" {
			t.Fatalf("unexpected msg %q", out["msg"])
		}
	}
	if len(repo.contacts) != 0 {
		t.Fatal("nothing should be stored on validation failure")
	}
}

func TestContact_AdminListAndStatus(t *testing.T) {
	srv, repo, _ := setupContactsServer(t)
	repo.contacts[1] = &domain.Contact{ID: 1, Name: "Carla", Email: "c@example.com", Message: "hola", Status: domain.ContactPending}
	repo.contacts[2] = &domain.Contact{ID: 2, Name: "Pedro", Email: "p@example.com", Message: "hola", Status: domain.ContactRead}
	repo.nextID = 3

	// Listing is admin-only.
	get(t, srv.URL+"/api/contact", http.StatusUnauthorized).Body.Close()
	authedGet(t, srv.URL+"/api/contact", parentToken(t, 1), http.StatusForbidden).Body.Close()

	token := adminToken(t)
	resp := authedGet(t, srv.URL+"/api/contact?status=pending", token, http.StatusOK)
	var list []domain.Contact
	decode(t, resp, &list)
	resp.Body.Close()
	if len(list) != 1 || list[0].ID != 1 {
		t.Fatalf("unexpected filtered listing %+v", list)
	}

	authedGet(t, srv.URL+"/api/contact?status=weird", token, http.StatusBadRequest).Body.Close()

	// Mark as read.
	resp = authedDo(t, http.MethodPut, srv.URL+"/api/contact/1", token, map[string]string{
		"status": "read",
	}, http.StatusOK)
	var updated domain.Contact
	decode(t, resp, &updated)
	resp.Body.Close()
	if updated.Status != domain.ContactRead {
		t.Fatalf("expected read status, got %q", updated.Status)
	}
}

func TestContact_AdminDelete(t *testing.T) {
	srv, repo, _ := setupContactsServer(t)
	repo.contacts[1] = &domain.Contact{ID: 1, Name: "Carla", Email: "c@example.com", Message: "hola"}
	repo.nextID = 2

	resp := authedDo(t, http.MethodDelete, srv.URL+"/api/contact/1", adminToken(t), nil, http.StatusOK)
	var out map[string]string
	decode(t, resp, &out)
	resp.Body.Close()
	if out["msg"] != "Mensaje eliminado" {
		t.Fatalf("unexpected msg %q", out["msg"])
	}

	authedDo(t, http.MethodDelete, srv.URL+"/api/contact/1", adminToken(t), nil, http.StatusNotFound).Body.Close()
}
