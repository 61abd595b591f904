package server

import (
	"net/http"

	"github.com/datagamesbr/dpohero/internal/dpohero"
	"github.com/datagamesbr/dpohero/internal/progress"
	"github.com/datagamesbr/dpohero/internal/session"
)

// MissionState is one catalog entry annotated with the player's
// unlock and completion status.
type MissionState struct {
	ID          dpohero.MissionID   `json:"id"`
	Title       string              `json:"title"`
	Kind        dpohero.MissionKind `json:"kind"`
	Description string              `json:"description"`
	Points      int                 `json:"points"`
	Requires    []dpohero.MissionID `json:"requires,omitempty"`
	ItemCount   int                 `json:"itemCount"`
	Unlocked    bool                `json:"unlocked"`
	Completed   bool                `json:"completed"`
}

// SessionInfo describes the player's live mission run, if any.
type SessionInfo struct {
	MissionID    dpohero.MissionID `json:"missionId"`
	State        session.State     `json:"state"`
	CurrentIndex int               `json:"currentIndex"`
	TotalItems   int               `json:"totalItems"`
	ScorePercent float64           `json:"scorePercent"`
	CurrentItem  *dpohero.QuizItem `json:"currentItem,omitempty"`
}

type GameStateResponse struct {
	Player   PlayerInfo             `json:"player"`
	Progress dpohero.PlayerProgress `json:"progress"`
	Missions []MissionState         `json:"missions"`
	Session  *SessionInfo           `json:"session"`
}

func missionStates(store *progress.Store, p dpohero.PlayerProgress) []MissionState {
	unlocked := store.UnlockedSet(p)
	completed := p.CompletedSet()

	states := []MissionState{}
	for _, def := range store.Catalog().Missions() {
		states = append(states, MissionState{
			ID:          def.ID,
			Title:       def.Title,
			Kind:        def.Kind,
			Description: def.Description,
			Points:      def.Points,
			Requires:    def.Requires,
			ItemCount:   len(def.Items),
			Unlocked:    unlocked[def.ID],
			Completed:   completed[def.ID],
		})
	}
	return states
}

func sessionInfo(s *session.Session) *SessionInfo {
	info := &SessionInfo{
		MissionID:    s.MissionID(),
		State:        s.State(),
		CurrentIndex: s.CurrentIndex(),
		TotalItems:   s.Scratch().TotalQuestions,
		ScorePercent: s.ScorePercent(),
	}
	if item, ok := s.CurrentItem(); ok {
		info.CurrentItem = &item
	}
	return info
}

func handleGameState(store *progress.Store, sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := playerFrom(r)
		p := store.Load(r.Context(), sess.PlayerID)

		resp := GameStateResponse{
			Player:   PlayerInfo{ID: sess.PlayerID, Name: sess.Name},
			Progress: p,
			Missions: missionStates(store, p),
		}
		if live, ok := sessions.Get(sess.PlayerID); ok {
			resp.Session = sessionInfo(live)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
