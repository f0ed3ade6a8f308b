package storage

import (
	"fmt"
	"sync"

	"motioncapture/internal/dto"
	"motioncapture/internal/logger"
	"motioncapture/internal/model"
	"motioncapture/internal/repository"
)

// DefaultSessionLimit caps snapshots kept per session when none is configured.
const DefaultSessionLimit = 50

// Snapshot is a stored capture with its payload.
type Snapshot struct {
	Capture model.Capture
	Data    []byte
}

// SnapshotStore keeps captured images in memory and indexes their metadata in
// the capture repository. Nothing outlives the process.
type SnapshotStore struct {
	data        map[int64][]byte
	order       map[string][]int64 // session -> capture IDs, oldest first
	limit       int
	mu          sync.Mutex
	logger      *logger.Logger
	captureRepo repository.CaptureRepository
}

// NewSnapshotStore creates a store keeping at most limit snapshots per session.
func NewSnapshotStore(limit int, logger *logger.Logger, captureRepo repository.CaptureRepository) *SnapshotStore {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return &SnapshotStore{
		data:        make(map[int64][]byte),
		order:       make(map[string][]int64),
		limit:       limit,
		logger:      logger,
		captureRepo: captureRepo,
	}
}

// Add stores a snapshot and returns its capture ID. The oldest snapshot of the
// session is evicted once the per-session limit is reached.
func (s *SnapshotStore) Add(c model.Capture, data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.SizeBytes = int64(len(data))
	id, err := s.captureRepo.Insert(&c)
	if err != nil {
		return 0, fmt.Errorf("failed to index capture: %w", err)
	}

	s.data[id] = data
	s.order[c.SessionID] = append(s.order[c.SessionID], id)

	for len(s.order[c.SessionID]) > s.limit {
		oldest := s.order[c.SessionID][0]
		s.order[c.SessionID] = s.order[c.SessionID][1:]
		delete(s.data, oldest)
		if err := s.captureRepo.Delete(oldest); err != nil {
			s.logger.Error("Error evicting capture %d: %v", oldest, err)
		}
	}

	s.logger.Info("Stored capture %d for session %s: %d/%d", id, c.SessionID, len(s.order[c.SessionID]), s.limit)
	return id, nil
}

// Get returns a stored snapshot, or nil when it is unknown.
func (s *SnapshotStore) Get(id int64) (*Snapshot, error) {
	s.mu.Lock()
	data, ok := s.data[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	c, err := s.captureRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	return &Snapshot{Capture: *c, Data: data}, nil
}

// List returns capture metadata matching filter and the unpaged total.
func (s *SnapshotStore) List(filter *dto.CaptureFilters) ([]model.Capture, int, error) {
	captures, err := s.captureRepo.GetAll(filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.captureRepo.GetTotalCount(filter)
	if err != nil {
		return nil, 0, err
	}
	return captures, total, nil
}

// MemoryUsage returns the summed size of stored payloads.
func (s *SnapshotStore) MemoryUsage() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, d := range s.data {
		total += int64(len(d))
	}
	return total
}

// Delete removes one snapshot.
func (s *SnapshotStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.captureRepo.GetByID(id)
	if err != nil {
		return err
	}
	if c != nil {
		ids := s.order[c.SessionID]
		for i, v := range ids {
			if v == id {
				s.order[c.SessionID] = append(ids[:i:i], ids[i+1:]...)
				break
			}
		}
	}

	delete(s.data, id)
	return s.captureRepo.Delete(id)
}

// DropSession forgets every snapshot of a session.
func (s *SnapshotStore) DropSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.captureRepo.DeleteBySession(sessionID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		delete(s.data, id)
	}
	delete(s.order, sessionID)

	s.logger.Info("Dropped %d captures of session %s", len(ids), sessionID)
	return nil
}

// Clear forgets everything.
func (s *SnapshotStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.captureRepo.DeleteAll(); err != nil {
		return err
	}
	count := len(s.data)
	s.data = make(map[int64][]byte)
	s.order = make(map[string][]int64)

	s.logger.Info("Cleared %d captures", count)
	return nil
}
