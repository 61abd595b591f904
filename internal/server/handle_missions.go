package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datagamesbr/dpohero/internal/dpohero"
	"github.com/datagamesbr/dpohero/internal/progress"
	"github.com/datagamesbr/dpohero/internal/session"
)

type MissionListResponse struct {
	Missions []MissionState `json:"missions"`
}

func handleListMissions(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := playerFrom(r)
		p := store.Load(r.Context(), sess.PlayerID)
		writeJSON(w, http.StatusOK, MissionListResponse{Missions: missionStates(store, p)})
	}
}

type StartMissionResponse struct {
	Session SessionInfo `json:"session"`
	// Resumed is true when a mid-run scratch blob was restored
	// instead of starting from the first item.
	Resumed bool `json:"resumed"`
}

func handleStartMission(store *progress.Store, sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := playerFrom(r)
		missionID := dpohero.MissionID(chi.URLParam(r, "missionID"))

		def, ok := store.Catalog().Lookup(missionID)
		if !ok {
			writeError(w, http.StatusNotFound, "mission not found")
			return
		}

		p := store.Load(r.Context(), sess.PlayerID)
		if !store.UnlockedSet(p)[missionID] {
			writeError(w, http.StatusConflict, "mission is locked")
			return
		}

		// Completed missions stay startable as replays; a replay run
		// plays normally but never double-awards points.
		var run *session.Session
		resumed := false
		if sc, ok := store.LoadScratch(r.Context(), sess.PlayerID, missionID); ok {
			run = session.Resume(sess.PlayerID, def, sc, store)
			resumed = sc.CurrentIndex > 0
		} else {
			run = session.New(sess.PlayerID, def, store)
		}
		sessions.Put(sess.PlayerID, run)

		writeJSON(w, http.StatusOK, StartMissionResponse{
			Session: *sessionInfo(run),
			Resumed: resumed,
		})
	}
}
