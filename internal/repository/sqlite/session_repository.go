package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"motioncapture/internal/model"
)

// SessionRepository implements repository.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert records a newly started session.
func (r *SessionRepository) Insert(s *model.Session) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`
		INSERT INTO sessions (id, camera, mode, started_at) VALUES (?, ?, ?, ?)
	`, s.ID, s.Camera, s.Mode, s.StartedAt); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Stop marks a session as stopped.
func (r *SessionRepository) Stop(id string, at time.Time) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`UPDATE sessions SET stopped_at = ? WHERE id = ? AND stopped_at IS NULL`, at, id); err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}
	return nil
}

// GetByID retrieves a session; nil when it does not exist.
func (r *SessionRepository) GetByID(id string) (*model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var s model.Session
	var stopped sql.NullTime
	err := r.db.Conn().QueryRow(`
		SELECT id, camera, mode, started_at, stopped_at FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.Camera, &s.Mode, &s.StartedAt, &stopped)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if stopped.Valid {
		s.StoppedAt = &stopped.Time
	}
	return &s, nil
}

// GetActive returns every session that has not been stopped, oldest first.
func (r *SessionRepository) GetActive() ([]model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, camera, mode, started_at FROM sessions WHERE stopped_at IS NULL ORDER BY started_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.Camera, &s.Mode, &s.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
