package progress

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/datagamesbr/dpohero/internal/catalog"
	"github.com/datagamesbr/dpohero/internal/database"
	"github.com/datagamesbr/dpohero/internal/dpohero"
)

const testCatalogYAML = `
missions:
  - {id: training, title: Training, kind: quiz, points: 50}
  - {id: school_alert, title: Alert, kind: quiz, points: 80, requires: [training]}
  - {id: data_leak, title: Leak, kind: field, points: 100, requires: [school_alert]}
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat, err := catalog.Load([]byte(testCatalogYAML), logger)
	if err != nil {
		t.Fatalf("loading test catalog: %v", err)
	}

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(ctx, db, cat, logger)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store
}

func TestComputeLevel(t *testing.T) {
	// Level 2 costs 100 points, level 3 another 200, level 4 another 300.
	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{110, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{1000, 5},
	}

	for _, tt := range tests {
		if got := ComputeLevel(tt.points); got != tt.want {
			t.Errorf("ComputeLevel(%d) = %d, want %d", tt.points, got, tt.want)
		}
	}
}

func TestLoadFreshPlayer(t *testing.T) {
	store := newTestStore(t)

	p := store.Load(context.Background(), "nobody")
	if p.CurrentPoints != 0 || p.Level != 1 {
		t.Errorf("fresh player should start at 0 points level 1, got %+v", p)
	}
	if p.CompletedMissions == nil || len(p.CompletedMissions) != 0 {
		t.Errorf("fresh player should have an empty completed list, got %v", p.CompletedMissions)
	}
}

func TestLoadRepairsCorruptBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO player_progress (player_id, data) VALUES ('p1', 'not json{')
	`)
	if err != nil {
		t.Fatalf("seeding corrupt blob: %v", err)
	}

	p := store.Load(ctx, "p1")
	if p.CurrentPoints != 0 || p.Level != 1 || len(p.CompletedMissions) != 0 {
		t.Errorf("corrupt blob should load as defaults, got %+v", p)
	}
}

func TestLoadCoercesMalformedBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Parseable but wrong: duplicate mission, missing array is fine
	// too, negative points, drifted level.
	_, err := store.db.ExecContext(ctx, `
		INSERT INTO player_progress (player_id, data)
		VALUES ('p1', '{"completedMissions":["training","training",""],"currentPoints":150,"level":9}')
	`)
	if err != nil {
		t.Fatalf("seeding blob: %v", err)
	}

	p := store.Load(ctx, "p1")
	if len(p.CompletedMissions) != 1 || p.CompletedMissions[0] != "training" {
		t.Errorf("duplicates and empty ids should be dropped, got %v", p.CompletedMissions)
	}
	if p.Level != 2 {
		t.Errorf("level must be recomputed from points: want 2, got %d", p.Level)
	}

	_, err = store.db.ExecContext(ctx, `
		UPDATE player_progress SET data = '{"currentPoints":-10}' WHERE player_id = 'p1'
	`)
	if err != nil {
		t.Fatalf("updating blob: %v", err)
	}
	p = store.Load(ctx, "p1")
	if p.CurrentPoints != 0 || p.Level != 1 {
		t.Errorf("negative points should clamp to 0, got %+v", p)
	}
	if p.CompletedMissions == nil {
		t.Error("missing completedMissions should coerce to empty, not nil")
	}
}

func TestCompleteMissionFirstTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res := store.CompleteMission(ctx, "p1", "training", 50)
	if !res.FirstTime() {
		t.Fatalf("expected first-time completion, got %s", res.Status)
	}
	if res.Progress.CurrentPoints != 50 {
		t.Errorf("expected 50 points, got %d", res.Progress.CurrentPoints)
	}
	if res.Progress.Level != 1 {
		t.Errorf("50 points is below the level 2 threshold, got level %d", res.Progress.Level)
	}
	if !res.Persisted {
		t.Error("expected the write to persist")
	}

	// Survives a reload.
	p := store.Load(ctx, "p1")
	if p.CurrentPoints != 50 || !p.Completed("training") {
		t.Errorf("persisted progress mismatch: %+v", p)
	}
}

func TestCompleteMissionIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.CompleteMission(ctx, "p1", "training", 50)
	res := store.CompleteMission(ctx, "p1", "training", 50)

	if res.Status != CompletionAlreadyDone {
		t.Fatalf("expected already_done, got %s", res.Status)
	}
	if res.Progress.CurrentPoints != 50 {
		t.Errorf("replay must not double-award: want 50, got %d", res.Progress.CurrentPoints)
	}
	if len(res.Progress.CompletedMissions) != 1 {
		t.Errorf("completed-set must not grow on replay: %v", res.Progress.CompletedMissions)
	}
}

func TestCompleteMissionCrossesLevelThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.CompleteMission(ctx, "p1", "training", 50)
	res := store.CompleteMission(ctx, "p1", "school_alert", 60)

	if res.Progress.CurrentPoints != 110 {
		t.Fatalf("expected 110 points, got %d", res.Progress.CurrentPoints)
	}
	if res.Progress.Level != 2 {
		t.Errorf("110 points should reach level 2, got %d", res.Progress.Level)
	}
	if res.Progress.Level != ComputeLevel(res.Progress.CurrentPoints) {
		t.Error("level drifted from the threshold formula")
	}
}

func TestCompleteUnknownMissionIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res := store.CompleteMission(ctx, "p1", "ghost", 999)
	if res.Status != CompletionUnknownMission {
		t.Fatalf("expected unknown_mission, got %s", res.Status)
	}
	if res.Progress.CurrentPoints != 0 {
		t.Errorf("unknown mission must not award points, got %d", res.Progress.CurrentPoints)
	}

	p := store.Load(ctx, "p1")
	if len(p.CompletedMissions) != 0 {
		t.Errorf("nothing should be persisted: %v", p.CompletedMissions)
	}
}

func TestPointsAreMonotonic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	last := 0
	calls := []struct {
		id  dpohero.MissionID
		pts int
	}{
		{"training", 50},
		{"training", 50},
		{"school_alert", 0},
		{"ghost", 40},
		{"data_leak", 100},
		{"data_leak", 100},
	}
	for _, c := range calls {
		res := store.CompleteMission(ctx, "p1", c.id, c.pts)
		if res.Progress.CurrentPoints < last {
			t.Fatalf("points decreased from %d to %d after %s", last, res.Progress.CurrentPoints, c.id)
		}
		last = res.Progress.CurrentPoints
	}
}

func TestUnlockedSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := store.Load(ctx, "p1")
	unlocked := store.UnlockedSet(p)
	if !unlocked["training"] {
		t.Error("training should be unlocked from the start")
	}
	if unlocked["school_alert"] || unlocked["data_leak"] {
		t.Errorf("downstream missions should start locked: %v", unlocked)
	}

	res := store.CompleteMission(ctx, "p1", "training", 50)
	after := store.UnlockedSet(res.Progress)
	if !after["school_alert"] {
		t.Error("school_alert should unlock after training")
	}
	// Unlocks are monotonic: everything unlocked before stays unlocked,
	// completed missions included (they remain startable as replays).
	for id := range unlocked {
		if !after[id] {
			t.Errorf("%s was unlocked and must stay unlocked", id)
		}
	}
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.CompleteMission(ctx, "p1", "training", 50)
	store.SaveScratch(ctx, "p1", dpohero.SessionScratch{MissionID: "school_alert", CurrentIndex: 1})

	if err := store.Reset(ctx, "p1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	p := store.Load(ctx, "p1")
	if p.CurrentPoints != 0 || len(p.CompletedMissions) != 0 {
		t.Errorf("reset should wipe progress, got %+v", p)
	}
	if _, ok := store.LoadScratch(ctx, "p1", "school_alert"); ok {
		t.Error("reset should wipe session scratch")
	}
}

func TestScratchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sc := dpohero.SessionScratch{
		MissionID:      "training",
		CurrentIndex:   2,
		Points:         25,
		CorrectAnswers: 2,
		MaxScore:       75,
		TotalQuestions: 5,
	}
	store.SaveScratch(ctx, "p1", sc)

	got, ok := store.LoadScratch(ctx, "p1", "training")
	if !ok {
		t.Fatal("expected scratch to load")
	}
	if got != sc {
		t.Errorf("scratch mismatch: got %+v want %+v", got, sc)
	}

	// Overwrite keeps one blob per mission.
	sc.CurrentIndex = 3
	store.SaveScratch(ctx, "p1", sc)
	got, _ = store.LoadScratch(ctx, "p1", "training")
	if got.CurrentIndex != 3 {
		t.Errorf("expected overwritten scratch, got %+v", got)
	}

	store.ClearScratch(ctx, "p1", "training")
	if _, ok := store.LoadScratch(ctx, "p1", "training"); ok {
		t.Error("expected scratch to be removed")
	}
}
