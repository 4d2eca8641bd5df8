package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

// SQLitePersistence implements SessionPersistence on a single SQLite table
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
	engineOpts    []engine.Option
}

// NewSQLitePersistence opens (or creates) the database at path and migrates it
func NewSQLitePersistence(path string, configManager service.ConfigManager, engineOpts ...engine.Option) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	sp := &SQLitePersistence{db: db, configManager: configManager, engineOpts: engineOpts}
	if err := sp.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return sp, nil
}

// Migrate creates the sessions table
func (sp *SQLitePersistence) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			config_id TEXT NOT NULL,
			status TEXT NOT NULL,
			round INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC)`,
	}
	for _, migration := range migrations {
		if _, err := sp.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}

// Save upserts the session snapshot
func (sp *SQLitePersistence) Save(session *service.Session) error {
	jsonData, err := encodeSession(session)
	if err != nil {
		return err
	}
	state := session.Engine.GetState()
	_, err = sp.db.Exec(`
		INSERT INTO sessions (id, config_id, status, round, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_id = excluded.config_id,
			status = excluded.status,
			round = excluded.round,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		strings.ToLower(session.ID), session.ConfigID, string(state.Status), state.Round,
		string(jsonData), session.CreatedAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a session by ID
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var data string
	err := sp.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decodeSession([]byte(data), sp.configManager, sp.engineOpts)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, most recently updated first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}
