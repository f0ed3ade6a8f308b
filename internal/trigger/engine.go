package trigger

import (
	"errors"
	"fmt"
	"time"
)

// ErrSourceUnavailable is returned by a source that has nothing to offer this tick.
// The engine skips the tick and keeps its state.
var ErrSourceUnavailable = errors.New("source unavailable")

// FrameSource renders the most recent video frame into a new buffer.
type FrameSource interface {
	RenderFrame() (*PixelFrame, error)
}

// AudioLevelSource reports the current amplitude on a 0-255 scale.
type AudioLevelSource interface {
	AudioLevel() (float64, error)
}

// Encoder turns a frame into a still image payload.
type Encoder interface {
	Encode(frame *PixelFrame) ([]byte, error)
}

// Sink receives committed snapshots. The engine keeps no reference to a
// delivered Snapshot.
type Sink interface {
	Deliver(snapshot Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

func (f SinkFunc) Deliver(s Snapshot) { f(s) }

// TriggerKind records which signal fired a capture.
type TriggerKind string

const (
	TriggerMotion TriggerKind = "motion"
	TriggerAudio  TriggerKind = "audio"
)

// Snapshot is one committed capture.
type Snapshot struct {
	Seq        uint64
	Trigger    TriggerKind
	CapturedAt time.Time
	Width      int
	Height     int
	Data       []byte
}

// Outcome is what a tick ended up doing.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCaptured
	OutcomeDuplicate
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCaptured:
		return "captured"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSkipped:
		return "skipped"
	}
	return "none"
}

// TickResult summarizes one VideoTick or AudioTick call.
type TickResult struct {
	Decision      Decision
	Outcome       Outcome
	MotionPresent bool
	Level         float64
	Seq           uint64 // set when Outcome is OutcomeCaptured
}

// Engine ties the motion and audio triggers to a frame source, an encoder and
// a sink. Calls must be serialized by the caller.
type Engine struct {
	cfg     Config
	mode    Mode
	frames  FrameSource
	levels  AudioLevelSource
	encoder Encoder
	sink    Sink

	motion       *MotionState
	audio        *AudioTriggerState
	lastAccepted *PixelFrame
	seq          uint64
}

// NewEngine builds an engine for one session. levels may be nil in motion mode.
func NewEngine(cfg Config, mode Mode, frames FrameSource, levels AudioLevelSource, encoder Encoder, sink Sink) *Engine {
	e := &Engine{
		cfg:     cfg,
		mode:    mode,
		frames:  frames,
		levels:  levels,
		encoder: encoder,
		sink:    sink,
	}
	e.Reset()
	return e
}

// Mode returns the trigger mode the engine was built with.
func (e *Engine) Mode() Mode { return e.mode }

// Motion exposes the motion detector state, for status reporting.
func (e *Engine) Motion() *MotionState { return e.motion }

// Audio exposes the audio gate state, for status reporting.
func (e *Engine) Audio() *AudioTriggerState { return e.audio }

// Captured returns how many snapshots have been delivered since the last Reset.
func (e *Engine) Captured() uint64 { return e.seq }

// Reset drops every piece of per-session state.
func (e *Engine) Reset() {
	e.motion = NewMotionState(e.cfg)
	e.audio = NewAudioTriggerState(e.cfg)
	e.lastAccepted = nil
	e.seq = 0
}

// VideoTick runs once per rendered frame.
func (e *Engine) VideoTick(now time.Time) (TickResult, error) {
	if !e.mode.UsesMotion() {
		return TickResult{}, nil
	}

	frame, err := e.frames.RenderFrame()
	if errors.Is(err, ErrSourceUnavailable) {
		return TickResult{Outcome: OutcomeSkipped}, nil
	}
	if err != nil {
		return TickResult{Outcome: OutcomeSkipped}, fmt.Errorf("failed to render frame: %w", err)
	}

	motion := e.motion.OnFrame(frame, now)
	result := TickResult{Decision: motion.Decision, MotionPresent: motion.MotionPresent}
	if motion.Decision != FireCapture {
		return result, nil
	}

	return e.commit(result, frame, TriggerMotion, now)
}

// AudioTick runs once per audio analysis pass.
func (e *Engine) AudioTick(now time.Time) (TickResult, error) {
	if !e.mode.UsesAudio() || e.levels == nil {
		return TickResult{}, nil
	}

	level, err := e.levels.AudioLevel()
	if errors.Is(err, ErrSourceUnavailable) {
		return TickResult{Outcome: OutcomeSkipped}, nil
	}
	if err != nil {
		return TickResult{Outcome: OutcomeSkipped}, fmt.Errorf("failed to read audio level: %w", err)
	}

	result := TickResult{Level: level, Decision: e.audio.OnAmplitudeSample(level)}
	if result.Decision != FireCapture {
		return result, nil
	}

	// The gate stays disarmed even if no frame can be captured now.
	frame, err := e.frames.RenderFrame()
	if errors.Is(err, ErrSourceUnavailable) {
		result.Outcome = OutcomeSkipped
		return result, nil
	}
	if err != nil {
		result.Outcome = OutcomeSkipped
		return result, fmt.Errorf("failed to render frame: %w", err)
	}

	return e.commit(result, frame, TriggerAudio, now)
}

func (e *Engine) commit(result TickResult, frame *PixelFrame, kind TriggerKind, now time.Time) (TickResult, error) {
	if !IsAcceptable(frame, e.lastAccepted) {
		result.Outcome = OutcomeDuplicate
		return result, nil
	}

	data, err := e.encoder.Encode(frame)
	if err != nil {
		result.Outcome = OutcomeSkipped
		return result, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	e.seq++
	e.lastAccepted = frame
	result.Outcome = OutcomeCaptured
	result.Seq = e.seq

	e.sink.Deliver(Snapshot{
		Seq:        e.seq,
		Trigger:    kind,
		CapturedAt: now,
		Width:      frame.Width,
		Height:     frame.Height,
		Data:       data,
	})
	return result, nil
}
