package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/datagamesbr/dpohero/internal/progress"
)

func addRoutes(r chi.Router, logger *slog.Logger, identity *IdentityStore, store *progress.Store, spaDir string) {
	broker := NewBroker()
	sessions := NewRegistry()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("DPO Hero API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, identity))

	r.Route("/api", func(r chi.Router) {
		r.Post("/players", handleRegister(identity))
		// SSE cannot set headers, so the token rides the query string.
		r.Get("/game/events", handleEvents(identity, broker))

		r.Group(func(r chi.Router) {
			r.Use(playerAuth(identity))
			r.Get("/game/state", handleGameState(store, sessions))
			r.Get("/missions", handleListMissions(store))
			r.Post("/missions/{missionID}/start", handleStartMission(store, sessions))
			r.Post("/game/answer", handleAnswer(store, sessions, broker))
			r.Post("/game/complete", handleForceComplete(store, sessions, broker))
		})

		r.Post("/admin/login", handleAdminLogin(identity))
		r.Post("/admin/logout", handleAdminLogout(identity))
		r.Group(func(r chi.Router) {
			r.Use(adminAuth(identity))
			r.Get("/admin/me", handleAdminMe())
			r.Get("/admin/players", handleAdminListPlayers(identity, store))
			r.Post("/admin/players/{playerID}/reset", handleAdminResetPlayer(identity, store, broker))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
