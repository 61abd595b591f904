package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Player is a registered player identity. The token is the bearer
// credential the game client holds for the whole playthrough.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// PlayerInfo is the token-free view used by listings.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// IdentityStore holds player identities and educator (admin) accounts.
// Progress blobs live in the progress package; this store only answers
// "who is this token".
type IdentityStore struct {
	db *sql.DB
}

func NewIdentityStore(ctx context.Context, db *sql.DB) (*IdentityStore, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS players (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			token      TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id            TEXT PRIMARY KEY,
			email         TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admin_sessions (
			id         TEXT PRIMARY KEY,
			admin_id   TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}
	return &IdentityStore{db: db}, nil
}

// DB exposes the underlying handle for health checks.
func (s *IdentityStore) DB() *sql.DB { return s.db }

func (s *IdentityStore) CreatePlayer(ctx context.Context, name string) (Player, error) {
	p := Player{
		ID:    uuid.NewString(),
		Name:  name,
		Token: uuid.NewString(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO players (id, name, token) VALUES (?, ?, ?)
		RETURNING created_at
	`, p.ID, p.Name, p.Token).Scan(&p.CreatedAt)
	if err != nil {
		return Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, nil
}

func (s *IdentityStore) PlayerFromToken(ctx context.Context, token string) (playerSession, error) {
	var sess playerSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM players WHERE token = ?
	`, token).Scan(&sess.PlayerID, &sess.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *IdentityStore) PlayerExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM players WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *IdentityStore) ListPlayers(ctx context.Context) ([]PlayerInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM players ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []PlayerInfo{}
	for rows.Next() {
		var p PlayerInfo
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *IdentityStore) AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

// EnsureAdmin creates the educator account if the email is not taken.
// Idempotent across restarts.
func (s *IdentityStore) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash) VALUES (?, ?, ?)
		ON CONFLICT (email) DO NOTHING
	`, uuid.NewString(), email, passwordHash)
	return err
}

func (s *IdentityStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (id, admin_id) VALUES (?, ?)
	`, id, adminID)
	return id, err
}

func (s *IdentityStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *IdentityStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}
