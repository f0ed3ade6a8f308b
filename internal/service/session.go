package service

import (
	"sync"
	"time"

	"motioncapture/internal/model"
	"motioncapture/internal/trigger"
)

// FrameCodec decodes raw camera images and encodes snapshots.
type FrameCodec interface {
	Decode(data []byte, at time.Time) (*trigger.PixelFrame, error)
	trigger.Encoder
}

// frameSlot holds the latest raw frame of a camera and renders it on demand.
type frameSlot struct {
	codec FrameCodec
	raw   []byte
	at    time.Time
}

func (s *frameSlot) put(raw []byte, at time.Time) {
	s.raw = raw
	s.at = at
}

func (s *frameSlot) RenderFrame() (*trigger.PixelFrame, error) {
	if s.raw == nil {
		return nil, trigger.ErrSourceUnavailable
	}
	return s.codec.Decode(s.raw, s.at)
}

// levelSlot holds the latest audio level of a camera.
type levelSlot struct {
	level float64
	ok    bool
}

func (s *levelSlot) put(level float64) {
	s.level = level
	s.ok = true
}

func (s *levelSlot) AudioLevel() (float64, error) {
	if !s.ok {
		return 0, trigger.ErrSourceUnavailable
	}
	return s.level, nil
}

// Session is one camera's streaming run. Its mutex serializes the video and
// audio tick streams into the engine.
type Session struct {
	info   model.Session
	engine *trigger.Engine
	frames *frameSlot
	levels *levelSlot

	frameCount    int
	motionPresent bool
	lastLevel     float64
	mu            sync.Mutex
}

// Status is a point-in-time view of a session.
type Status struct {
	model.Session
	MotionPresent bool    `json:"motion_present"`
	AudioLevel    float64 `json:"audio_level"`
	Captured      uint64  `json:"captured"`
	MotionArmed   bool    `json:"motion_armed"`
	AudioArmed    bool    `json:"audio_armed"`
}

// Info returns the session record.
func (s *Session) Info() model.Session { return s.info }

// Status reports the live trigger state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Session:       s.info,
		MotionPresent: s.motionPresent,
		AudioLevel:    s.lastLevel,
		Captured:      s.engine.Captured(),
		MotionArmed:   s.engine.Motion().Armed(),
		AudioArmed:    s.engine.Audio().Armed(),
	}
}

func (s *Session) videoTick(raw []byte, now time.Time) (trigger.TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames.put(raw, now)
	res, err := s.engine.VideoTick(now)
	if res.Outcome != trigger.OutcomeSkipped {
		s.motionPresent = res.MotionPresent
	}
	return res, err
}

func (s *Session) audioTick(level float64, now time.Time) (trigger.TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.levels.put(level)
	s.lastLevel = level
	return s.engine.AudioTick(now)
}

// storeFrame records a frame without ticking, used between processed frames
// so audio captures still see the newest image.
func (s *Session) storeFrame(raw []byte, now time.Time) {
	s.mu.Lock()
	s.frames.put(raw, now)
	s.mu.Unlock()
}
