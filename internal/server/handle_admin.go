package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/datagamesbr/dpohero/internal/dpohero"
	"github.com/datagamesbr/dpohero/internal/progress"
)

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminMeResponse is the response for GET /api/admin/me.
type AdminMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func handleAdminLogin(identity *IdentityStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		adminID, passwordHash, err := identity.AdminByEmail(r.Context(), req.Email)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := identity.CreateAdminSession(r.Context(), adminID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, AdminMeResponse{ID: adminID, Email: req.Email})
	}
}

func handleAdminLogout(identity *IdentityStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(adminCookieName); err == nil && cookie.Value != "" {
			identity.DeleteAdminSession(r.Context(), cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleAdminMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := adminFrom(r)
		writeJSON(w, http.StatusOK, AdminMeResponse{ID: sess.AdminID, Email: sess.Email})
	}
}

// AdminPlayerSummary is one player row in the educator dashboard.
type AdminPlayerSummary struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	CreatedAt         string              `json:"createdAt"`
	CurrentPoints     int                 `json:"currentPoints"`
	Level             int                 `json:"level"`
	CompletedMissions []dpohero.MissionID `json:"completedMissions"`
}

type AdminPlayersResponse struct {
	Players []AdminPlayerSummary `json:"players"`
}

func handleAdminListPlayers(identity *IdentityStore, store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := identity.ListPlayers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		summaries := []AdminPlayerSummary{}
		for _, p := range players {
			prog := store.Load(r.Context(), p.ID)
			summaries = append(summaries, AdminPlayerSummary{
				ID:                p.ID,
				Name:              p.Name,
				CreatedAt:         p.CreatedAt,
				CurrentPoints:     prog.CurrentPoints,
				Level:             prog.Level,
				CompletedMissions: prog.CompletedMissions,
			})
		}

		writeJSON(w, http.StatusOK, AdminPlayersResponse{Players: summaries})
	}
}

func handleAdminResetPlayer(identity *IdentityStore, store *progress.Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")

		exists, err := identity.PlayerExists(r.Context(), playerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !exists {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}

		if err := store.Reset(r.Context(), playerID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(playerID, Event{Type: eventProgressReset, Level: 1})
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
