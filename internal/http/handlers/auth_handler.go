package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diverkids/diverkids-api/internal/domain"
	mw "github.com/diverkids/diverkids-api/internal/http/middleware"
	"github.com/diverkids/diverkids-api/internal/http/response"
	"github.com/diverkids/diverkids-api/internal/platform/auth"
	"github.com/diverkids/diverkids-api/internal/platform/mailer"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/utils"
	"github.com/diverkids/diverkids-api/pkg/config"
	"github.com/diverkids/diverkids-api/pkg/events"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

type AuthHandler struct {
	Users    postgres.UsersRepo
	Resets   postgres.ResetRepo
	EmailSvc mailer.Service
	Bus      events.Publisher
	Cfg      *config.Config
}

func NewAuthHandler(users postgres.UsersRepo, resets postgres.ResetRepo, emailSvc mailer.Service, bus events.Publisher, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Resets: resets, EmailSvc: emailSvc, Bus: bus, Cfg: cfg}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)
	r.Route("/profile", func(r chi.Router) {
		r.Use(mw.RequireJWT)
		r.Get("/", h.profile)
		r.Put("/", h.updateProfile)
	})
	return r
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil ||
		in.Name == "" || in.Email == "" || in.Password == "" {
		response.BadRequest(w, "Nombre, email y password requeridos")
		return
	}

	email := utils.NormalizeEmail(in.Email)
	if !utils.IsValidEmail(email) {
		response.BadRequest(w, "Email inválido")
		return
	}

	role := domain.RoleParent
	if in.Role != "" {
		parsed, ok := domain.ParseRole(in.Role)
		if !ok {
			response.BadRequest(w, "Rol inválido")
			return
		}
		role = parsed
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		response.InternalError(w)
		return
	}

	u, err := h.Users.Create(r.Context(), in.Name, email, hash, string(role), in.Phone)
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicate) {
			response.Conflict(w, "Usuario ya existe")
			return
		}
		logger.ErrorContext(r.Context(), "signup failed", "error", err)
		response.InternalError(w)
		return
	}

	// Welcome email is advisory; registration already succeeded.
	if err := h.EmailSvc.SendWelcome(u.Email, u.Name); err != nil {
		logger.WarnContext(r.Context(), "welcome email failed", "error", err, "email", u.Email)
	}
	if err := h.Bus.Publish(r.Context(), events.UserRegistered, events.UserRegisteredEvent{
		UserID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role), CreatedAt: u.CreatedAt,
	}); err != nil {
		logger.ErrorContext(r.Context(), "failed to publish user registered event", "error", err)
	}

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"msg":  "Usuario creado",
		"user": u.DTO(),
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		response.BadRequest(w, "Email y password requeridos")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), utils.NormalizeEmail(in.Email))
	if err != nil || !auth.CheckPassword(in.Password, u.PasswordHash) {
		response.Unauthorized(w, "Correo o contraseña incorrectos")
		return
	}

	token, err := auth.NewAccessToken(u.ID, u.Email, string(u.Role), h.Cfg.Auth.AccessTokenTTL)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u.DTO(),
	})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.FindByID(r.Context(), mw.CallerID(r))
	if err != nil {
		response.NotFound(w, "Usuario no encontrado")
		return
	}
	response.WriteJSON(w, http.StatusOK, u.DTO())
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "JSON inválido")
		return
	}
	u, err := h.Users.UpdateProfile(r.Context(), mw.CallerID(r), in.Name, in.Phone)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFound(w, "Usuario no encontrado")
			return
		}
		response.InternalError(w)
		return
	}
	response.WriteJSON(w, http.StatusOK, u.DTO())
}

// The forgot-password response is identical whether or not the email exists.
const forgotPasswordMsg = "Si el correo existe, enviaremos instrucciones para restablecer la contraseña"

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		response.BadRequest(w, "Email requerido")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), utils.NormalizeEmail(in.Email))
	if err != nil {
		response.Msg(w, http.StatusOK, forgotPasswordMsg)
		return
	}

	// Opportunistic sweep keeps the reset table from accumulating stale rows.
	if _, err := h.Resets.DeleteExpired(r.Context()); err != nil {
		logger.WarnContext(r.Context(), "expired reset sweep failed", "error", err)
	}

	token, err := newResetToken()
	if err != nil {
		logger.ErrorContext(r.Context(), "reset token generation failed", "error", err)
		response.Msg(w, http.StatusOK, forgotPasswordMsg)
		return
	}
	if err := h.Resets.CreateReset(r.Context(), u.ID, token, time.Now().Add(h.Cfg.Auth.ResetTokenTTL)); err != nil {
		logger.ErrorContext(r.Context(), "reset token store failed", "error", err)
		response.Msg(w, http.StatusOK, forgotPasswordMsg)
		return
	}

	resetLink := h.Cfg.Frontend.URL + "/reset-password?token=" + token
	if err := h.EmailSvc.SendPasswordReset(u.Email, resetLink); err != nil {
		logger.WarnContext(r.Context(), "reset email failed", "error", err, "email", u.Email)
	}

	if h.Cfg.Email.DevMode {
		// Eases local testing while mail isn't configured.
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"msg":       forgotPasswordMsg,
			"reset_url": resetLink,
		})
		return
	}
	response.Msg(w, http.StatusOK, forgotPasswordMsg)
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" || in.NewPassword == "" {
		response.BadRequest(w, "Token y nueva contraseña requeridos")
		return
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		response.InternalError(w)
		return
	}

	ok, err := h.Resets.Consume(r.Context(), in.Token, hash)
	if err != nil {
		logger.ErrorContext(r.Context(), "reset consume failed", "error", err)
		response.InternalError(w)
		return
	}
	if !ok {
		// One generic message for unknown, used and expired tokens alike.
		response.BadRequest(w, "Token inválido o expirado")
		return
	}
	response.Msg(w, http.StatusOK, "Contraseña actualizada")
}

// newResetToken mints 32 bytes of URL-safe randomness.
func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
