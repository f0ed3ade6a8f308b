package storage

import (
	"testing"
	"time"

	"motioncapture/internal/dto"
	"motioncapture/internal/logger"
	"motioncapture/internal/model"
	"motioncapture/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, limit int) *SnapshotStore {
	t.Helper()
	db, err := sqlite.New(sqlite.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotStore(limit, logger.NewDiscard(), sqlite.NewCaptureRepository(db))
}

func capture(session string, seq uint64) model.Capture {
	return model.Capture{
		SessionID: session,
		Camera:    "front",
		Seq:       seq,
		Trigger:   "motion",
		Timestamp: time.Date(2025, 1, 1, 10, 0, int(seq), 0, time.UTC),
		Width:     4,
		Height:    4,
	}
}

func TestSnapshotStore_AddAndGet(t *testing.T) {
	s := newTestStore(t, 5)

	id, err := s.Add(capture("s1", 1), []byte("png-1"))
	require.NoError(t, err)

	snap, err := s.Get(id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []byte("png-1"), snap.Data)
	assert.Equal(t, int64(5), snap.Capture.SizeBytes)
	assert.Equal(t, int64(5), s.MemoryUsage())

	missing, err := s.Get(id + 1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSnapshotStore_EvictsOldestPerSession(t *testing.T) {
	s := newTestStore(t, 2)

	first, err := s.Add(capture("s1", 1), []byte("a"))
	require.NoError(t, err)
	_, err = s.Add(capture("s1", 2), []byte("b"))
	require.NoError(t, err)
	_, err = s.Add(capture("s2", 1), []byte("x"))
	require.NoError(t, err)
	_, err = s.Add(capture("s1", 3), []byte("c"))
	require.NoError(t, err)

	gone, err := s.Get(first)
	require.NoError(t, err)
	assert.Nil(t, gone)

	list, total, err := s.List(&dto.CaptureFilters{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(3), list[0].Seq)

	_, total, err = s.List(&dto.CaptureFilters{SessionID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSnapshotStore_DeleteDropClear(t *testing.T) {
	s := newTestStore(t, 10)

	a, _ := s.Add(capture("s1", 1), []byte("a"))
	_, _ = s.Add(capture("s1", 2), []byte("b"))
	_, _ = s.Add(capture("s2", 1), []byte("c"))

	require.NoError(t, s.Delete(a))
	_, total, err := s.List(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.NoError(t, s.DropSession("s1"))
	_, total, err = s.List(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, int64(1), s.MemoryUsage())

	require.NoError(t, s.Clear())
	_, total, err = s.List(nil)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, s.MemoryUsage())
}
