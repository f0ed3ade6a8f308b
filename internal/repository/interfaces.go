package repository

import (
	"time"

	"motioncapture/internal/dto"
	"motioncapture/internal/model"
)

// CaptureRepository defines the interface for capture metadata operations.
type CaptureRepository interface {
	// Create operations
	Insert(c *model.Capture) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Capture, error)
	GetAll(filter *dto.CaptureFilters) ([]model.Capture, error)
	GetTotalCount(filter *dto.CaptureFilters) (int, error)
	GetTotalSize() (int64, error)

	// Delete operations
	Delete(id int64) error
	DeleteBySession(sessionID string) ([]int64, error)
	DeleteAll() error
}

// SessionRepository defines the interface for session operations.
type SessionRepository interface {
	Insert(s *model.Session) error
	Stop(id string, at time.Time) error
	GetByID(id string) (*model.Session, error)
	GetActive() ([]model.Session, error)
}
