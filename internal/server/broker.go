package server

import (
	"encoding/json"
	"sync"

	"github.com/datagamesbr/dpohero/internal/dpohero"
)

// Event is the payload pushed to a player's HUD over SSE.
type Event struct {
	Type         string            `json:"type"`
	MissionID    dpohero.MissionID `json:"missionId,omitempty"`
	Correct      bool              `json:"correct,omitempty"`
	Points       int               `json:"points,omitempty"`
	Level        int               `json:"level,omitempty"`
	ScorePercent float64           `json:"scorePercent,omitempty"`
}

const (
	eventAnswerResult     = "answer_result"
	eventMissionCompleted = "mission_completed"
	eventLevelUp          = "level_up"
	eventProgressReset    = "progress_reset"
)

// Broker is an in-process pub/sub for HUD events, keyed by player ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for
// the given player.
func (b *Broker) Subscribe(playerID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[playerID] == nil {
		b.subs[playerID] = make(map[chan []byte]struct{})
	}
	b.subs[playerID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the player's subscribers.
func (b *Broker) Unsubscribe(playerID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[playerID], ch)
	if len(b.subs[playerID]) == 0 {
		delete(b.subs, playerID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given player.
func (b *Broker) Publish(playerID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[playerID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
