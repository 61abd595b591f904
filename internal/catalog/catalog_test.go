package catalog

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/datagamesbr/dpohero/internal/dpohero"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadValid(t *testing.T) {
	yaml := `
missions:
  - id: intro
    title: Intro
    kind: quiz
    points: 50
    items:
      - prompt: "2+2?"
        choices: ["3", "4"]
        answer: 1
        points: 10
  - id: followup
    title: Followup
    kind: field
    points: 100
    requires: [intro]
`
	c, err := Load([]byte(yaml), testLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 missions, got %d", c.Len())
	}

	def, ok := c.Lookup("intro")
	if !ok {
		t.Fatal("expected to find intro")
	}
	if def.Points != 50 || def.Kind != dpohero.MissionKindQuiz {
		t.Errorf("unexpected intro definition: %+v", def)
	}
	if def.MaxItemPoints() != 10 {
		t.Errorf("expected max item points 10, got %d", def.MaxItemPoints())
	}

	if _, ok := c.Lookup("nope"); ok {
		t.Error("lookup of unknown id should report not found")
	}

	order := c.Missions()
	if order[0].ID != "intro" || order[1].ID != "followup" {
		t.Errorf("declaration order not preserved: %v", order)
	}
}

func TestLoadRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "duplicate id",
			yaml: `
missions:
  - {id: a, title: A, kind: field, points: 0}
  - {id: a, title: A2, kind: field, points: 0}
`,
		},
		{
			name: "empty id",
			yaml: `
missions:
  - {id: "", title: A, kind: field, points: 0}
`,
		},
		{
			name: "negative points",
			yaml: `
missions:
  - {id: a, title: A, kind: field, points: -5}
`,
		},
		{
			name: "unknown kind",
			yaml: `
missions:
  - {id: a, title: A, kind: boss_fight, points: 0}
`,
		},
		{
			name: "answer index out of range",
			yaml: `
missions:
  - id: a
    title: A
    kind: quiz
    points: 10
    items:
      - {prompt: "?", choices: ["x"], answer: 3, points: 5}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.yaml), testLogger()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadDetectsCycles(t *testing.T) {
	yaml := `
missions:
  - {id: a, title: A, kind: field, points: 0, requires: [c]}
  - {id: b, title: B, kind: field, points: 0, requires: [a]}
  - {id: c, title: C, kind: field, points: 0, requires: [b]}
`
	_, err := Load([]byte(yaml), testLogger())
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestSelfRequireIsACycle(t *testing.T) {
	yaml := `
missions:
  - {id: a, title: A, kind: field, points: 0, requires: [a]}
`
	_, err := Load([]byte(yaml), testLogger())
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestUnknownPrerequisiteStaysLocked(t *testing.T) {
	// A prerequisite outside the catalog is not an error, but the
	// mission can never unlock.
	yaml := `
missions:
  - {id: a, title: A, kind: field, points: 0, requires: [ghost]}
`
	c, err := Load([]byte(yaml), testLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	def, _ := c.Lookup("a")
	completed := map[dpohero.MissionID]bool{"a": true, "ghost": false}
	if IsUnlocked(def, completed) {
		t.Error("mission with unknown prerequisite should stay locked")
	}
}

func TestIsUnlocked(t *testing.T) {
	def := dpohero.MissionDefinition{
		ID:       "m",
		Requires: []dpohero.MissionID{"a", "b"},
	}

	tests := []struct {
		name      string
		completed map[dpohero.MissionID]bool
		want      bool
	}{
		{"none completed", nil, false},
		{"partial", map[dpohero.MissionID]bool{"a": true}, false},
		{"all", map[dpohero.MissionID]bool{"a": true, "b": true}, true},
		{"extra completions", map[dpohero.MissionID]bool{"a": true, "b": true, "c": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnlocked(def, tt.completed); got != tt.want {
				t.Errorf("IsUnlocked = %v, want %v", got, tt.want)
			}
		})
	}

	noReqs := dpohero.MissionDefinition{ID: "free"}
	if !IsUnlocked(noReqs, nil) {
		t.Error("mission without prerequisites should always be unlocked")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default(testLogger())
	if err != nil {
		t.Fatalf("embedded catalog must load: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}

	training, ok := c.Lookup("training")
	if !ok {
		t.Fatal("embedded catalog should include the training mission")
	}
	if len(training.Requires) != 0 {
		t.Error("training must be unlocked from the start")
	}

	alert, ok := c.Lookup("school_alert")
	if !ok {
		t.Fatal("embedded catalog should include school_alert")
	}
	if !IsUnlocked(alert, map[dpohero.MissionID]bool{"training": true}) {
		t.Error("school_alert should unlock after training")
	}
	if IsUnlocked(alert, nil) {
		t.Error("school_alert should be locked for a fresh player")
	}
}
