// Package session tracks one live playthrough of a mission and
// computes the score it reports back. A session is transient: only
// its outcome survives, committed to the progress store exactly once.
package session

import (
	"context"

	"github.com/datagamesbr/dpohero/internal/dpohero"
	"github.com/datagamesbr/dpohero/internal/progress"
)

// State is the session lifecycle position.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Reporter is the slice of the progress store a session needs at
// finalization.
type Reporter interface {
	CompleteMission(ctx context.Context, playerID string, missionID dpohero.MissionID, earnedPoints int) progress.CompletionResult
}

// AnswerResult is returned to the scene after each answer.
type AnswerResult struct {
	Correct bool `json:"correct"`
	// Done is true once the last item has been answered and the
	// session has finalized itself.
	Done bool `json:"done"`
}

// Session is one in-progress mission run.
type Session struct {
	playerID string
	def      dpohero.MissionDefinition
	reporter Reporter

	index   int
	points  int
	correct int
	state   State

	outcome dpohero.MissionOutcome
	result  progress.CompletionResult
}

// New starts a session for the given mission. The session begins in
// progress; quiz sessions walk their item list, field sessions wait
// for an explicit force-complete from the scene.
func New(playerID string, def dpohero.MissionDefinition, reporter Reporter) *Session {
	return &Session{
		playerID: playerID,
		def:      def,
		reporter: reporter,
		state:    StateInProgress,
	}
}

// Resume restores a session from a mid-run scratch blob, clamping
// anything a stale or tampered blob could carry out of range.
func Resume(playerID string, def dpohero.MissionDefinition, sc dpohero.SessionScratch, reporter Reporter) *Session {
	s := New(playerID, def, reporter)
	s.index = sc.CurrentIndex
	if s.index < 0 {
		s.index = 0
	}
	if s.index > len(def.Items) {
		s.index = len(def.Items)
	}
	s.points = sc.Points
	if s.points < 0 {
		s.points = 0
	}
	if max := def.MaxItemPoints(); s.points > max {
		s.points = max
	}
	s.correct = sc.CorrectAnswers
	if s.correct < 0 {
		s.correct = 0
	}
	if s.correct > s.index {
		s.correct = s.index
	}
	return s
}

// Answer submits the choice for the current item. The index advances
// by exactly one whether or not the answer is correct. Answering past
// the last item, or after completion, is a defensive no-op. When the
// last item is answered the session finalizes itself and commits its
// outcome.
func (s *Session) Answer(ctx context.Context, choice int) AnswerResult {
	if s.state != StateInProgress || s.index >= len(s.def.Items) {
		return AnswerResult{Correct: false, Done: s.state == StateCompleted}
	}

	item := s.def.Items[s.index]
	correct := choice == item.Answer
	if correct {
		s.points += item.Points
		s.correct++
	}
	s.index++

	res := AnswerResult{Correct: correct}
	if s.index == len(s.def.Items) {
		s.finalize(ctx)
		res.Done = true
	}
	return res
}

// Complete force-finalizes the session. Idempotent: repeated calls
// (duplicate UI events included) return the same outcome and never
// report to the progress store twice.
func (s *Session) Complete(ctx context.Context) (dpohero.MissionOutcome, progress.CompletionResult) {
	if s.state != StateCompleted {
		s.finalize(ctx)
	}
	return s.outcome, s.result
}

func (s *Session) finalize(ctx context.Context) {
	s.state = StateCompleted

	earned := s.points
	if s.def.Kind == dpohero.MissionKindField && len(s.def.Items) == 0 {
		// Field missions carry no scored items; completing the task
		// sequence earns the full mission reward.
		earned = s.def.Points
	}

	s.outcome = dpohero.MissionOutcome{
		MissionID:    s.def.ID,
		Points:       earned,
		CorrectCount: s.correct,
		ScorePercent: s.ScorePercent(),
	}
	s.result = s.reporter.CompleteMission(ctx, s.playerID, s.def.ID, earned)
}

// ScorePercent is the share of available item points earned so far,
// in [0,100]. An itemless session reports 0.
func (s *Session) ScorePercent() float64 {
	max := s.def.MaxItemPoints()
	if max == 0 {
		return 0
	}
	return 100 * float64(s.points) / float64(max)
}

// Scratch snapshots the run for mid-session persistence.
func (s *Session) Scratch() dpohero.SessionScratch {
	return dpohero.SessionScratch{
		MissionID:      s.def.ID,
		CurrentIndex:   s.index,
		Points:         s.points,
		CorrectAnswers: s.correct,
		MaxScore:       s.def.MaxItemPoints(),
		TotalQuestions: len(s.def.Items),
	}
}

// State returns the lifecycle position.
func (s *Session) State() State { return s.state }

// MissionID returns the mission this session plays.
func (s *Session) MissionID() dpohero.MissionID { return s.def.ID }

// CurrentIndex returns how many items have been answered.
func (s *Session) CurrentIndex() int { return s.index }

// CurrentItem returns the item awaiting an answer, or false when the
// sequence is exhausted.
func (s *Session) CurrentItem() (dpohero.QuizItem, bool) {
	if s.index >= len(s.def.Items) {
		return dpohero.QuizItem{}, false
	}
	return s.def.Items[s.index], true
}
