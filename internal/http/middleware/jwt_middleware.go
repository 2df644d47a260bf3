package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/diverkids/diverkids-api/internal/domain"
	"github.com/diverkids/diverkids-api/internal/http/response"
	"github.com/diverkids/diverkids-api/internal/platform/auth"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

func RequireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			response.Unauthorized(w, "Falta token de autorización")
			return
		}
		raw := strings.TrimPrefix(authz, "Bearer ")
		claims, err := auth.Parse(raw)
		if err != nil {
			if err == auth.ErrExpired {
				response.Unauthorized(w, "Token expirado")
				return
			}
			response.UnprocessableToken(w, "Token inválido", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), CtxClaims, claims)
		ctx = context.WithValue(ctx, logger.UserIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only routes; it must run after RequireJWT.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := Claims(r)
		if claims == nil || claims.Role != string(domain.RoleAdmin) {
			response.Forbidden(w, "Acceso denegado. Solo administradores pueden acceder.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}

// CallerID returns the authenticated user id, or 0 when unauthenticated.
func CallerID(r *http.Request) int64 {
	claims := Claims(r)
	if claims == nil {
		return 0
	}
	id, err := claims.ParseUserID()
	if err != nil {
		return 0
	}
	return id
}

// IsAdmin reports whether the caller carries the admin role.
func IsAdmin(r *http.Request) bool {
	claims := Claims(r)
	return claims != nil && claims.Role == string(domain.RoleAdmin)
}
