package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/datagamesbr/dpohero/internal/dpohero"
)

// SaveScratch stores the mid-session blob so a reload can resume the
// run. Failures are logged, not surfaced: losing scratch only costs
// a restart of the mission.
func (s *Store) SaveScratch(ctx context.Context, playerID string, sc dpohero.SessionScratch) {
	data, err := json.Marshal(sc)
	if err != nil {
		s.logger.Error("encoding session scratch", "player", playerID, "error", err)
		return
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_scratch (player_id, mission_id, data) VALUES (?, ?, ?)
		ON CONFLICT (player_id, mission_id) DO UPDATE SET data = excluded.data
	`, playerID, string(sc.MissionID), string(data))
	if err != nil {
		s.logger.Error("saving session scratch", "player", playerID, "mission", sc.MissionID, "error", err)
	}
}

// LoadScratch returns the saved mid-session blob for a mission, if any.
func (s *Store) LoadScratch(ctx context.Context, playerID string, missionID dpohero.MissionID) (dpohero.SessionScratch, bool) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM session_scratch WHERE player_id = ? AND mission_id = ?
	`, playerID, string(missionID)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return dpohero.SessionScratch{}, false
	}
	if err != nil {
		s.logger.Error("loading session scratch", "player", playerID, "mission", missionID, "error", err)
		return dpohero.SessionScratch{}, false
	}

	var sc dpohero.SessionScratch
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		s.logger.Warn("corrupt session scratch dropped", "player", playerID, "mission", missionID, "error", err)
		s.ClearScratch(ctx, playerID, missionID)
		return dpohero.SessionScratch{}, false
	}
	return sc, true
}

// ClearScratch removes the mid-session blob once a session finalizes.
func (s *Store) ClearScratch(ctx context.Context, playerID string, missionID dpohero.MissionID) {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM session_scratch WHERE player_id = ? AND mission_id = ?
	`, playerID, string(missionID))
	if err != nil {
		s.logger.Error("clearing session scratch", "player", playerID, "mission", missionID, "error", err)
	}
}
