// Package progress owns the persisted player save state and mediates
// every mutation to it. Storage failures never reach the player path:
// operations log, degrade to in-memory state, and keep the game going.
package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/datagamesbr/dpohero/internal/catalog"
	"github.com/datagamesbr/dpohero/internal/dpohero"
)

// CompletionStatus tags the outcome of a CompleteMission call so
// callers can tell "awarded", "replay" and "bad id" apart without
// exceptions.
type CompletionStatus string

const (
	// CompletionFirstTime means the mission was added to the
	// completed-set and points were awarded.
	CompletionFirstTime CompletionStatus = "first_time"
	// CompletionAlreadyDone means the mission was completed before;
	// nothing was mutated. Replays never double-award points.
	CompletionAlreadyDone CompletionStatus = "already_done"
	// CompletionUnknownMission means the id is not in the catalog;
	// nothing was mutated.
	CompletionUnknownMission CompletionStatus = "unknown_mission"
)

// CompletionResult reports what a CompleteMission call did.
type CompletionResult struct {
	Status   CompletionStatus
	Progress dpohero.PlayerProgress
	// Persisted is false when the write failed and the returned
	// progress lives only in memory for the rest of the session.
	Persisted bool
}

// FirstTime reports whether this call awarded the mission.
func (r CompletionResult) FirstTime() bool { return r.Status == CompletionFirstTime }

// Store is the single authoritative holder of player progress. One
// row per player, full JSON blob rewritten on every mutation.
type Store struct {
	db      *sql.DB
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewStore creates the backing tables if needed and returns a store.
func NewStore(ctx context.Context, db *sql.DB, cat *catalog.Catalog, logger *slog.Logger) (*Store, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS player_progress (
			player_id TEXT PRIMARY KEY,
			data      JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_scratch (
			player_id  TEXT NOT NULL,
			mission_id TEXT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (player_id, mission_id)
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}
	return &Store{db: db, catalog: cat, logger: logger}, nil
}

// Catalog returns the mission catalog the store evaluates unlocks against.
func (s *Store) Catalog() *catalog.Catalog { return s.catalog }

// ComputeLevel returns the largest level whose cumulative point
// threshold is within points. Reaching level 2 costs 100 points,
// level 3 another 200, level 4 another 300, and so on.
func ComputeLevel(points int) int {
	level := 1
	threshold := 0
	for {
		next := threshold + 100*level
		if next > points {
			return level
		}
		threshold = next
		level++
	}
}

// Load reads a player's progress. A missing or unreadable blob is
// repaired to the default state; the caller always gets something
// playable.
func (s *Store) Load(ctx context.Context, playerID string) dpohero.PlayerProgress {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM player_progress WHERE player_id = ?
	`, playerID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return dpohero.NewPlayerProgress()
	}
	if err != nil {
		s.logger.Error("loading progress, falling back to defaults", "player", playerID, "error", err)
		return dpohero.NewPlayerProgress()
	}

	var p dpohero.PlayerProgress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		s.logger.Warn("corrupt progress blob, resetting to defaults", "player", playerID, "error", err)
		return dpohero.NewPlayerProgress()
	}
	return repair(p)
}

// repair coerces a malformed-but-parseable blob into a valid state
// instead of rejecting it: missing arrays become empty, duplicates
// are dropped, points are clamped, level is recomputed from points.
func repair(p dpohero.PlayerProgress) dpohero.PlayerProgress {
	seen := make(map[dpohero.MissionID]bool, len(p.CompletedMissions))
	completed := make([]dpohero.MissionID, 0, len(p.CompletedMissions))
	for _, id := range p.CompletedMissions {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		completed = append(completed, id)
	}
	p.CompletedMissions = completed
	if p.CurrentPoints < 0 {
		p.CurrentPoints = 0
	}
	p.Level = ComputeLevel(p.CurrentPoints)
	return p
}

// CompleteMission records a first-time completion: adds the mission
// to the completed-set, awards earnedPoints, recomputes the level and
// rewrites the blob. Replays and unknown ids are no-ops.
func (s *Store) CompleteMission(ctx context.Context, playerID string, missionID dpohero.MissionID, earnedPoints int) CompletionResult {
	if _, ok := s.catalog.Lookup(missionID); !ok {
		s.logger.Warn("completion for unknown mission ignored", "player", playerID, "mission", missionID)
		return CompletionResult{
			Status:    CompletionUnknownMission,
			Progress:  s.Load(ctx, playerID),
			Persisted: true,
		}
	}
	if earnedPoints < 0 {
		earnedPoints = 0
	}

	p := s.Load(ctx, playerID)
	if p.Completed(missionID) {
		return CompletionResult{Status: CompletionAlreadyDone, Progress: p, Persisted: true}
	}

	p.CompletedMissions = append(p.CompletedMissions, missionID)
	p.CurrentPoints += earnedPoints
	p.Level = ComputeLevel(p.CurrentPoints)

	result := CompletionResult{Status: CompletionFirstTime, Progress: p, Persisted: true}
	if err := s.persist(ctx, playerID, p); err != nil {
		// In-memory state stays the source of truth for this session.
		s.logger.Error("persisting progress failed", "player", playerID, "mission", missionID, "error", err)
		result.Persisted = false
	}
	return result
}

func (s *Store) persist(ctx context.Context, playerID string, p dpohero.PlayerProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_progress (player_id, data) VALUES (?, ?)
		ON CONFLICT (player_id) DO UPDATE SET data = excluded.data
	`, playerID, string(data))
	if err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	return tx.Commit()
}

// UnlockedSet evaluates every catalog mission against the player's
// completed-set. Completed missions stay in the set: they remain
// startable as replays.
func (s *Store) UnlockedSet(p dpohero.PlayerProgress) map[dpohero.MissionID]bool {
	completed := p.CompletedSet()
	unlocked := make(map[dpohero.MissionID]bool)
	for _, def := range s.catalog.Missions() {
		if catalog.IsUnlocked(def, completed) {
			unlocked[def.ID] = true
		}
	}
	return unlocked
}

// Reset wipes a player's save and scratch state. Used by the
// educator surface; the next Load returns defaults.
func (s *Store) Reset(ctx context.Context, playerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM player_progress WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_scratch WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("deleting scratch: %w", err)
	}
	return nil
}
