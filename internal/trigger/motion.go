package trigger

import "time"

// Decision is what a trigger concluded for one tick.
type Decision int

const (
	NoDecision Decision = iota
	FireCapture
)

func (d Decision) String() string {
	if d == FireCapture {
		return "fire"
	}
	return "none"
}

// MotionResult describes one OnFrame call.
type MotionResult struct {
	Decision       Decision
	Baseline       bool // frame only became the new baseline, nothing was compared
	MotionPresent  bool
	ChangedSamples int
}

// MotionState tracks frame-to-frame motion and fires once per stillness episode.
// It is not safe for concurrent use.
type MotionState struct {
	pixelDiffThreshold   int
	motionPixelThreshold int
	stillnessWindow      time.Duration

	lastFrame           *PixelFrame
	inactivityStartedAt time.Time
	inactive            bool
	fireArmed           bool
}

// NewMotionState creates an armed detector with no baseline.
func NewMotionState(cfg Config) *MotionState {
	return &MotionState{
		pixelDiffThreshold:   cfg.PixelDiffThreshold,
		motionPixelThreshold: cfg.MotionPixelThreshold,
		stillnessWindow:      cfg.StillnessWindow,
		fireArmed:            true,
	}
}

// OnFrame compares frame against the previous one and advances the state machine.
// frame becomes the baseline for the next call whatever the outcome.
func (s *MotionState) OnFrame(frame *PixelFrame, now time.Time) MotionResult {
	prev := s.lastFrame
	s.lastFrame = frame

	if prev == nil {
		return MotionResult{Baseline: true}
	}
	if !prev.SameSize(frame) {
		// New geometry means a new source; start over from this frame.
		s.inactive = false
		s.inactivityStartedAt = time.Time{}
		s.fireArmed = true
		return MotionResult{Baseline: true}
	}

	changed := ChangedSamples(prev, frame, s.pixelDiffThreshold)
	result := MotionResult{
		ChangedSamples: changed,
		MotionPresent:  changed > s.motionPixelThreshold,
	}

	if result.MotionPresent {
		s.inactive = false
		s.inactivityStartedAt = time.Time{}
		s.fireArmed = true
		return result
	}

	if !s.inactive {
		s.inactive = true
		s.inactivityStartedAt = now
		return result
	}

	if now.Sub(s.inactivityStartedAt) > s.stillnessWindow && s.fireArmed {
		result.Decision = FireCapture
		s.fireArmed = false
		s.inactive = false
		s.inactivityStartedAt = time.Time{}
	}
	return result
}

// InactiveSince returns when the current stillness run started, if one is running.
func (s *MotionState) InactiveSince() (time.Time, bool) {
	return s.inactivityStartedAt, s.inactive
}

// Armed reports whether the next stillness episode may fire.
func (s *MotionState) Armed() bool { return s.fireArmed }

// HasBaseline reports whether a previous frame is held.
func (s *MotionState) HasBaseline() bool { return s.lastFrame != nil }

// ChangedSamples counts pixels whose summed RGB difference exceeds threshold.
// Alpha is skipped. Frames must have the same size.
func ChangedSamples(prev, curr *PixelFrame, threshold int) int {
	a, b := prev.Pix, curr.Pix
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	count := 0
	for i := 0; i+2 < n; i += BytesPerPixel {
		diff := absDiff(a[i], b[i]) + absDiff(a[i+1], b[i+1]) + absDiff(a[i+2], b[i+2])
		if diff > threshold {
			count++
		}
	}
	return count
}

func absDiff(x, y byte) int {
	if x > y {
		return int(x - y)
	}
	return int(y - x)
}
