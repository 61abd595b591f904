package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type playerSession struct {
	PlayerID string
	Name     string
}

type adminSession struct {
	AdminID string
	Email   string
}

var (
	errNoSession      = errors.New("no valid session")
	errNoAdminSession = errors.New("no valid admin session")
)

const adminCookieName = "admin_session"

type ctxKey int

const (
	ctxKeyPlayer ctxKey = iota
	ctxKeyAdmin
)

// playerAuth resolves the Bearer token and stores the player session
// in the request context.
func playerAuth(identity *IdentityStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(auth, "Bearer ")
			if !found || token == "" {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			sess, err := identity.PlayerFromToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPlayer, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuth(identity *IdentityStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := identity.AdminFromSession(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func playerFrom(r *http.Request) playerSession {
	return r.Context().Value(ctxKeyPlayer).(playerSession)
}

func adminFrom(r *http.Request) adminSession {
	return r.Context().Value(ctxKeyAdmin).(adminSession)
}
