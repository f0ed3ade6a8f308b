package sqlite

import (
	"database/sql"
	"fmt"

	"motioncapture/internal/dto"
	"motioncapture/internal/model"
)

// CaptureRepository implements repository.CaptureRepository for SQLite.
type CaptureRepository struct {
	db *DB
}

// NewCaptureRepository creates a new SQLite capture repository.
func NewCaptureRepository(db *DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

const captureColumns = `id, session_id, camera, seq, trigger_kind, timestamp, width, height, size_bytes, mime_type`

// Insert adds a new capture record to the database.
func (r *CaptureRepository) Insert(c *model.Capture) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	mime := c.MimeType
	if mime == "" {
		mime = "image/png"
	}

	result, err := r.db.Conn().Exec(`
		INSERT INTO captures (session_id, camera, seq, trigger_kind, timestamp, width, height, size_bytes, mime_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.SessionID, c.Camera, int64(c.Seq), c.Trigger, c.Timestamp, c.Width, c.Height, c.SizeBytes, mime)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture: %w", err)
	}

	return result.LastInsertId()
}

// GetByID retrieves a capture by its ID; nil when it does not exist.
func (r *CaptureRepository) GetByID(id int64) (*model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`SELECT `+captureColumns+` FROM captures WHERE id = ?`, id)
	c, err := scanCapture(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return c, nil
}

// GetAll retrieves captures based on filter criteria, newest first.
func (r *CaptureRepository) GetAll(filter *dto.CaptureFilters) ([]model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	query := `SELECT ` + captureColumns + ` FROM captures WHERE 1=1` + where + ` ORDER BY timestamp DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var captures []model.Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		captures = append(captures, *c)
	}

	return captures, rows.Err()
}

// GetTotalCount returns how many captures match filter, ignoring paging.
func (r *CaptureRepository) GetTotalCount(filter *dto.CaptureFilters) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM captures WHERE 1=1`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count captures: %w", err)
	}
	return count, nil
}

// GetTotalSize returns the summed snapshot payload size.
func (r *CaptureRepository) GetTotalSize() (int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var size int64
	if err := r.db.Conn().QueryRow(`SELECT COALESCE(SUM(size_bytes), 0) FROM captures`).Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to sum capture sizes: %w", err)
	}
	return size, nil
}

// Delete removes a capture record.
func (r *CaptureRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM captures WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	return nil
}

// DeleteBySession removes every capture of a session and returns their IDs.
func (r *CaptureRepository) DeleteBySession(sessionID string) ([]int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id FROM captures WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session captures: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan capture id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if _, err := tx.Exec(`DELETE FROM captures WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session captures: %w", err)
	}

	return ids, tx.Commit()
}

// DeleteAll removes every capture record.
func (r *CaptureRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM captures`); err != nil {
		return fmt.Errorf("failed to delete captures: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCapture(s scanner) (*model.Capture, error) {
	var c model.Capture
	var seq int64
	if err := s.Scan(&c.ID, &c.SessionID, &c.Camera, &seq, &c.Trigger, &c.Timestamp, &c.Width, &c.Height, &c.SizeBytes, &c.MimeType); err != nil {
		return nil, err
	}
	c.Seq = uint64(seq)
	return &c, nil
}

func buildWhere(filter *dto.CaptureFilters) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	where := ""
	args := []interface{}{}

	if filter.Camera != "" {
		where += " AND camera = ?"
		args = append(args, filter.Camera)
	}
	if filter.SessionID != "" {
		where += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Trigger != "" {
		where += " AND trigger_kind = ?"
		args = append(args, filter.Trigger)
	}
	if !filter.After.IsZero() {
		where += " AND timestamp >= ?"
		args = append(args, filter.After)
	}
	if !filter.Before.IsZero() {
		where += " AND timestamp <= ?"
		args = append(args, filter.Before)
	}

	return where, args
}
