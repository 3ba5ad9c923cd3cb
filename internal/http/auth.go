package httpapi

import (
	"context"
	"net/http"
	"strings"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/session"
)

type contextKey string

const ctxClaims contextKey = "claims"

// WithAuth resolves the bearer token into the request session. The session
// passes through resolving and ends resolved with the caller's identity, or
// the request stops with 401.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		ctx := session.WithSession(r.Context(), sess)
		sess.Begin()

		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			sess.Resolve(nil, "")
			WriteError(w, http.StatusUnauthorized, services.MsgAuthFailed)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		who, claims, err := services.ResolveSession(ctx, s.Store, s.Tokens, tokenStr)
		if err != nil {
			sess.Resolve(nil, "")
			writeServiceError(w, err)
			return
		}
		sess.Resolve(&who, claims.ID)
		ctx = context.WithValue(ctx, ctxClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CurrentIdentity(r *http.Request) access.Identity {
	return session.Current(r.Context())
}

func currentClaims(r *http.Request) *services.Claims {
	if value, ok := r.Context().Value(ctxClaims).(*services.Claims); ok {
		return value
	}
	return nil
}

func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentIdentity(r).Role != role {
				WriteError(w, http.StatusForbidden, services.MsgNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
