// Package dpohero defines the core domain types for the DPO Hero game.
// It depends on nothing else in the module.
package dpohero

// MissionID uniquely identifies a mission in the catalog.
type MissionID string

// MissionKind selects how a mission is played and scored.
type MissionKind string

const (
	// MissionKindQuiz is a fixed sequence of multiple-choice questions.
	// The session finalizes itself once the last question is answered.
	MissionKindQuiz MissionKind = "quiz"
	// MissionKindField is an open-ended task sequence (exploration,
	// dialog scenes). The scene finalizes it with a force-complete.
	MissionKindField MissionKind = "field"
)

// QuizItem is one question inside a quiz mission.
type QuizItem struct {
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Choices []string `yaml:"choices" json:"choices"`
	// Answer is the index into Choices of the correct option.
	Answer int `yaml:"answer" json:"-"`
	Points int `yaml:"points" json:"points"`
}

// MissionDefinition is the immutable catalog entry for one mission.
type MissionDefinition struct {
	ID          MissionID   `yaml:"id"`
	Title       string      `yaml:"title"`
	Kind        MissionKind `yaml:"kind"`
	Description string      `yaml:"description"`
	// Points is the reward for completing a field mission. Quiz
	// missions instead award the item points earned during the run.
	Points int `yaml:"points"`
	// Requires lists mission ids that must all be completed before
	// this one unlocks. Empty means always unlocked.
	Requires []MissionID `yaml:"requires"`
	Items    []QuizItem  `yaml:"items"`
}

// MaxItemPoints is the fixed sum of all item point values.
func (d MissionDefinition) MaxItemPoints() int {
	total := 0
	for _, it := range d.Items {
		total += it.Points
	}
	return total
}

// PlayerProgress is the persisted per-player save state. Level is
// derived from CurrentPoints and never independently settable.
type PlayerProgress struct {
	CompletedMissions []MissionID `json:"completedMissions"`
	CurrentPoints     int         `json:"currentPoints"`
	Level             int         `json:"level"`
}

// NewPlayerProgress returns the default save state for a fresh player.
func NewPlayerProgress() PlayerProgress {
	return PlayerProgress{
		CompletedMissions: []MissionID{},
		CurrentPoints:     0,
		Level:             1,
	}
}

// Completed reports whether the player has finished the given mission.
func (p PlayerProgress) Completed(id MissionID) bool {
	for _, m := range p.CompletedMissions {
		if m == id {
			return true
		}
	}
	return false
}

// CompletedSet returns the completed missions as a membership set.
func (p PlayerProgress) CompletedSet() map[MissionID]bool {
	set := make(map[MissionID]bool, len(p.CompletedMissions))
	for _, m := range p.CompletedMissions {
		set[m] = true
	}
	return set
}

// MissionOutcome is what a finished session reports back to the scene
// and to the progress store.
type MissionOutcome struct {
	MissionID    MissionID `json:"missionId"`
	Points       int       `json:"points"`
	CorrectCount int       `json:"correctCount"`
	ScorePercent float64   `json:"scorePercent"`
}

// SessionScratch is the transient mid-session save blob, kept so a
// page reload can resume a run. Removed once the session finalizes.
type SessionScratch struct {
	MissionID      MissionID `json:"missionId"`
	CurrentIndex   int       `json:"currentIndex"`
	Points         int       `json:"points"`
	CorrectAnswers int       `json:"correctAnswers"`
	MaxScore       int       `json:"maxScore"`
	TotalQuestions int       `json:"totalQuestions"`
}
