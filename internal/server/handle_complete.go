package server

import (
	"net/http"

	"github.com/datagamesbr/dpohero/internal/dpohero"
	"github.com/datagamesbr/dpohero/internal/progress"
)

type CompleteResponse struct {
	Outcome  dpohero.MissionOutcome    `json:"outcome"`
	Status   progress.CompletionStatus `json:"status"`
	Progress dpohero.PlayerProgress    `json:"progress"`
	// Persisted is false when the save failed; the returned progress
	// is still authoritative for this play session.
	Persisted bool `json:"persisted"`
}

// handleForceComplete finalizes the live session without requiring
// the item sequence to be exhausted. Field missions end this way;
// for quizzes it ends the run with whatever was earned so far.
func handleForceComplete(store *progress.Store, sessions *Registry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := playerFrom(r)

		run, ok := sessions.Get(sess.PlayerID)
		if !ok {
			writeError(w, http.StatusConflict, "no active mission")
			return
		}

		outcome, cres := run.Complete(r.Context())
		store.ClearScratch(r.Context(), sess.PlayerID, run.MissionID())
		sessions.Remove(sess.PlayerID)

		publishCompletion(broker, sess.PlayerID, outcome, cres)

		writeJSON(w, http.StatusOK, CompleteResponse{
			Outcome:   outcome,
			Status:    cres.Status,
			Progress:  cres.Progress,
			Persisted: cres.Persisted,
		})
	}
}
