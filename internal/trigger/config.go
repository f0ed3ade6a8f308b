package trigger

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultPixelDiffThreshold is the summed |dR|+|dG|+|dB| a pixel must exceed to count as changed.
	DefaultPixelDiffThreshold = 50
	// DefaultMotionPixelThreshold is how many changed pixels make a frame "moving".
	DefaultMotionPixelThreshold = 500
	// DefaultStillnessWindow is how long the scene must stay still before a capture fires.
	DefaultStillnessWindow = 1000 * time.Millisecond
	// DefaultAudioHighThreshold fires an audio capture when the level rises above it.
	DefaultAudioHighThreshold = 15
	// DefaultAudioLowThreshold re-arms the audio trigger once the level drops to it.
	// Some deployments run with 0, which only re-arms on total silence.
	DefaultAudioLowThreshold = 5
)

// Config holds the trigger policy constants.
type Config struct {
	PixelDiffThreshold   int
	MotionPixelThreshold int
	StillnessWindow      time.Duration
	AudioHighThreshold   float64
	AudioLowThreshold    float64
}

// DefaultConfig returns the stock policy.
func DefaultConfig() Config {
	return Config{
		PixelDiffThreshold:   DefaultPixelDiffThreshold,
		MotionPixelThreshold: DefaultMotionPixelThreshold,
		StillnessWindow:      DefaultStillnessWindow,
		AudioHighThreshold:   DefaultAudioHighThreshold,
		AudioLowThreshold:    DefaultAudioLowThreshold,
	}
}

// Validate checks that the thresholds are usable.
func (c Config) Validate() error {
	if c.PixelDiffThreshold < 0 {
		return fmt.Errorf("pixel diff threshold must not be negative: %d", c.PixelDiffThreshold)
	}
	if c.MotionPixelThreshold < 0 {
		return fmt.Errorf("motion pixel threshold must not be negative: %d", c.MotionPixelThreshold)
	}
	if c.StillnessWindow < 0 {
		return fmt.Errorf("stillness window must not be negative: %s", c.StillnessWindow)
	}
	if c.AudioLowThreshold > c.AudioHighThreshold {
		return fmt.Errorf("audio low threshold %.1f is above high threshold %.1f", c.AudioLowThreshold, c.AudioHighThreshold)
	}
	return nil
}

// Mode selects which signal fires captures.
type Mode int

const (
	ModeMotion Mode = iota
	ModeAudio
	ModeCombined
)

func (m Mode) String() string {
	switch m {
	case ModeMotion:
		return "motion"
	case ModeAudio:
		return "audio"
	case ModeCombined:
		return "combined"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// UsesMotion reports whether video frames drive captures in this mode.
func (m Mode) UsesMotion() bool { return m == ModeMotion || m == ModeCombined }

// UsesAudio reports whether audio levels drive captures in this mode.
func (m Mode) UsesAudio() bool { return m == ModeAudio || m == ModeCombined }

// ParseMode accepts "motion", "audio" or "combined" (case-insensitive), plus
// the aliases "sound" for audio and "image"/"both" for combined.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "motion":
		return ModeMotion, nil
	case "audio", "sound":
		return ModeAudio, nil
	case "combined", "both", "image":
		return ModeCombined, nil
	}
	return ModeMotion, fmt.Errorf("unknown trigger mode %q", s)
}
