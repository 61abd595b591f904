package server

import (
	"net/http"

	"github.com/datagamesbr/dpohero/internal/dpohero"
	"github.com/datagamesbr/dpohero/internal/progress"
)

type AnswerRequest struct {
	// Choice is the index of the selected option.
	Choice int `json:"choice"`
}

type AnswerResponse struct {
	Correct bool `json:"correct"`
	Done    bool `json:"done"`
	// NextItem is the following question, absent once the run is over.
	NextItem *dpohero.QuizItem `json:"nextItem,omitempty"`
	// Outcome and Progress are set once the session finalizes.
	Outcome  *dpohero.MissionOutcome `json:"outcome,omitempty"`
	Progress *dpohero.PlayerProgress `json:"progress,omitempty"`
}

func handleAnswer(store *progress.Store, sessions *Registry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := playerFrom(r)

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		run, ok := sessions.Get(sess.PlayerID)
		if !ok {
			writeError(w, http.StatusConflict, "no active mission")
			return
		}

		res := run.Answer(r.Context(), req.Choice)

		resp := AnswerResponse{Correct: res.Correct, Done: res.Done}
		if res.Done {
			outcome, cres := run.Complete(r.Context())
			store.ClearScratch(r.Context(), sess.PlayerID, run.MissionID())
			sessions.Remove(sess.PlayerID)

			resp.Outcome = &outcome
			resp.Progress = &cres.Progress
			publishCompletion(broker, sess.PlayerID, outcome, cres)
		} else {
			store.SaveScratch(r.Context(), sess.PlayerID, run.Scratch())
			if item, ok := run.CurrentItem(); ok {
				resp.NextItem = &item
			}
			broker.Publish(sess.PlayerID, Event{
				Type:      eventAnswerResult,
				MissionID: run.MissionID(),
				Correct:   res.Correct,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// publishCompletion pushes the completion event to the HUD, plus a
// level_up event when the award crossed a threshold.
func publishCompletion(broker *Broker, playerID string, outcome dpohero.MissionOutcome, cres progress.CompletionResult) {
	broker.Publish(playerID, Event{
		Type:         eventMissionCompleted,
		MissionID:    outcome.MissionID,
		Points:       outcome.Points,
		Level:        cres.Progress.Level,
		ScorePercent: outcome.ScorePercent,
	})

	if cres.FirstTime() {
		before := progress.ComputeLevel(cres.Progress.CurrentPoints - outcome.Points)
		if cres.Progress.Level > before {
			broker.Publish(playerID, Event{
				Type:  eventLevelUp,
				Level: cres.Progress.Level,
			})
		}
	}
}
