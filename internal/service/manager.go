package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"motioncapture/internal/config"
	"motioncapture/internal/dto"
	"motioncapture/internal/logger"
	"motioncapture/internal/model"
	"motioncapture/internal/repository"
	"motioncapture/internal/service/storage"
	"motioncapture/internal/trigger"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a camera has no running session.
var ErrNoSession = errors.New("no active session")

// Broadcaster pushes events to viewers.
type Broadcaster interface {
	BroadcastFrame(camera string, jpeg []byte)
	BroadcastCapture(event dto.CaptureEvent)
	BroadcastSession(event dto.SessionEvent)
}

type Manager struct {
	store       *storage.SnapshotStore
	hub         Broadcaster
	sessionRepo repository.SessionRepository
	codec       FrameCodec
	logger      *logger.Logger

	triggerConfig   trigger.Config
	defaultMode     trigger.Mode
	autoStart       bool
	processEveryNth int // Tick the engine on every Nth frame

	sessions   map[string]*Session // camera -> running session
	stopped    map[string]bool     // cameras stopped by hand, skipped by auto-start
	sessionsMu sync.Mutex
	now        func() time.Time
}

func NewManager(cfg *config.Config, codec FrameCodec, store *storage.SnapshotStore, hub Broadcaster,
	sessionRepo repository.SessionRepository, logger *logger.Logger) *Manager {
	every := cfg.ProcessingInterval
	if every < 1 {
		every = 1
	}

	triggerConfig := cfg.TriggerConfig()
	if err := triggerConfig.Validate(); err != nil {
		logger.Warning("Invalid trigger thresholds, using defaults: %v", err)
		triggerConfig = trigger.DefaultConfig()
	}
	defaultMode, err := trigger.ParseMode(cfg.TriggerMode)
	if err != nil {
		logger.Warning("Invalid TRIGGER_MODE, using %s: %v", trigger.ModeCombined, err)
		defaultMode = trigger.ModeCombined
	}

	manager := &Manager{
		store:           store,
		hub:             hub,
		sessionRepo:     sessionRepo,
		codec:           codec,
		logger:          logger,
		triggerConfig:   triggerConfig,
		defaultMode:     defaultMode,
		autoStart:       cfg.AutoStartSessions,
		processEveryNth: every,
		sessions:        make(map[string]*Session),
		stopped:         make(map[string]bool),
		now:             time.Now,
	}

	manager.logger.Info("🎬 Manager started - %s trigger, processing every %d frame(s)", manager.defaultMode, manager.processEveryNth)
	return manager
}

// HandleCameraImage forwards a live frame to viewers and ticks the camera's engine.
func (m *Manager) HandleCameraImage(image []byte, camera string) {
	m.hub.BroadcastFrame(camera, image)

	session := m.sessionFor(camera)
	if session == nil {
		return
	}
	now := m.now()

	session.mu.Lock()
	session.frameCount++
	frameCount := session.frameCount
	session.mu.Unlock()

	// Only every Nth frame runs the detector.
	if frameCount%m.processEveryNth != 0 {
		session.storeFrame(image, now)
		return
	}

	res, err := session.videoTick(image, now)
	if err != nil {
		m.logger.Error("Camera %s: video tick failed: %v", camera, err)
		return
	}
	m.logOutcome(camera, res)
}

// HandleAudioLevel feeds one amplitude reading for a camera.
func (m *Manager) HandleAudioLevel(camera string, level float64) {
	session := m.sessionFor(camera)
	if session == nil {
		return
	}

	res, err := session.audioTick(level, m.now())
	if err != nil {
		m.logger.Error("Camera %s: audio tick failed: %v", camera, err)
		return
	}
	m.logOutcome(camera, res)
}

func (m *Manager) logOutcome(camera string, res trigger.TickResult) {
	switch res.Outcome {
	case trigger.OutcomeCaptured:
		m.logger.Info("📸 Camera %s: capture #%d", camera, res.Seq)
	case trigger.OutcomeDuplicate:
		m.logger.Info("Camera %s: capture suppressed, frame identical to the previous one", camera)
	case trigger.OutcomeSkipped:
		if res.Decision == trigger.FireCapture {
			m.logger.Warning("Camera %s: trigger fired but no frame was available", camera)
		}
	}
}

func (m *Manager) sessionFor(camera string) *Session {
	m.sessionsMu.Lock()
	session, ok := m.sessions[camera]
	stopped := m.stopped[camera]
	m.sessionsMu.Unlock()
	if ok {
		return session
	}
	if !m.autoStart || stopped {
		return nil
	}

	session, err := m.startSession(camera, m.defaultMode, false)
	if err != nil {
		m.logger.Error("Failed to start session for camera %s: %v", camera, err)
		return nil
	}
	return session
}

// StartSession begins a fresh session for camera, replacing any running one.
func (m *Manager) StartSession(camera string, mode trigger.Mode) (model.Session, error) {
	session, err := m.startSession(camera, mode, true)
	if err != nil {
		return model.Session{}, err
	}
	return session.Info(), nil
}

func (m *Manager) startSession(camera string, mode trigger.Mode, replace bool) (*Session, error) {
	if camera == "" {
		return nil, fmt.Errorf("camera name required")
	}

	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	previous, exists := m.sessions[camera]
	if exists && !replace {
		return previous, nil
	}
	// A stop that raced with this auto-start wins.
	if !replace && m.stopped[camera] {
		return nil, fmt.Errorf("camera %s: %w", camera, ErrNoSession)
	}

	info := model.Session{
		ID:        uuid.NewString(),
		Camera:    camera,
		Mode:      mode.String(),
		StartedAt: m.now(),
	}
	if err := m.sessionRepo.Insert(&info); err != nil {
		return nil, err
	}
	delete(m.stopped, camera)

	frames := &frameSlot{codec: m.codec}
	levels := &levelSlot{}
	session := &Session{
		info:   info,
		frames: frames,
		levels: levels,
	}
	session.engine = trigger.NewEngine(m.triggerConfig, mode, frames, levels, m.codec, m.sinkFor(info))
	m.sessions[camera] = session

	if exists {
		m.finishSession(previous)
	}

	m.logger.Info("Session %s started for camera %s (%s)", info.ID, camera, info.Mode)
	m.hub.BroadcastSession(dto.SessionEvent{Camera: camera, SessionID: info.ID, Mode: info.Mode, Active: true})
	return session, nil
}

// StopSession ends the running session of camera. Auto-start stays off for
// that camera until StartSession is called for it again.
func (m *Manager) StopSession(camera string) error {
	m.sessionsMu.Lock()
	session, ok := m.sessions[camera]
	if ok {
		delete(m.sessions, camera)
		m.stopped[camera] = true
	}
	m.sessionsMu.Unlock()

	if !ok {
		return fmt.Errorf("camera %s: %w", camera, ErrNoSession)
	}
	m.finishSession(session)
	return nil
}

func (m *Manager) finishSession(session *Session) {
	info := session.Info()
	if err := m.sessionRepo.Stop(info.ID, m.now()); err != nil {
		m.logger.Error("Failed to record end of session %s: %v", info.ID, err)
	}
	m.logger.Info("Session %s stopped for camera %s", info.ID, info.Camera)
	m.hub.BroadcastSession(dto.SessionEvent{Camera: info.Camera, SessionID: info.ID, Mode: info.Mode, Active: false})
}

// Session returns the running session of camera, if any.
func (m *Manager) Session(camera string) (*Session, bool) {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()
	s, ok := m.sessions[camera]
	return s, ok
}

// Sessions reports every running session ordered by camera.
func (m *Manager) Sessions() []Status {
	m.sessionsMu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessionsMu.Unlock()

	statuses := make([]Status, 0, len(sessions))
	for _, s := range sessions {
		statuses = append(statuses, s.Status())
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Camera < statuses[j].Camera })
	return statuses
}

// GetStore exposes the snapshot store to handlers.
func (m *Manager) GetStore() *storage.SnapshotStore {
	return m.store
}

// Stop ends every running session.
func (m *Manager) Stop() {
	m.sessionsMu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.sessionsMu.Unlock()

	for _, s := range sessions {
		m.finishSession(s)
	}
	m.logger.Info("🛑 All sessions stopped")
}

func (m *Manager) sinkFor(info model.Session) trigger.Sink {
	return trigger.SinkFunc(func(snap trigger.Snapshot) {
		id, err := m.store.Add(model.Capture{
			SessionID: info.ID,
			Camera:    info.Camera,
			Seq:       snap.Seq,
			Trigger:   string(snap.Trigger),
			Timestamp: snap.CapturedAt,
			Width:     snap.Width,
			Height:    snap.Height,
			MimeType:  "image/png",
		}, snap.Data)
		if err != nil {
			m.logger.Error("Failed to store capture of camera %s: %v", info.Camera, err)
			return
		}

		m.hub.BroadcastCapture(dto.CaptureEvent{
			Camera:    info.Camera,
			SessionID: info.ID,
			CaptureID: id,
			Seq:       snap.Seq,
			Trigger:   string(snap.Trigger),
			Timestamp: snap.CapturedAt,
			URL:       CaptureURL(id),
		})
	})
}

// CaptureURL is where a stored snapshot can be fetched.
func CaptureURL(id int64) string {
	return fmt.Sprintf("/api/captures/view?id=%d", id)
}
