package trigger

import "math"

// AudioTriggerState is a hysteresis gate over amplitude samples.
// It fires once when the level rises above the high threshold and re-arms
// only after the level falls back to the low threshold.
type AudioTriggerState struct {
	high  float64
	low   float64
	armed bool
}

// NewAudioTriggerState returns an armed gate.
func NewAudioTriggerState(cfg Config) *AudioTriggerState {
	return &AudioTriggerState{
		high:  cfg.AudioHighThreshold,
		low:   cfg.AudioLowThreshold,
		armed: true,
	}
}

// OnAmplitudeSample feeds one level reading into the gate.
func (s *AudioTriggerState) OnAmplitudeSample(level float64) Decision {
	if level > s.high && s.armed {
		s.armed = false
		return FireCapture
	}
	if level <= s.low {
		s.armed = true
	}
	return NoDecision
}

// Armed reports whether the next crossing will fire.
func (s *AudioTriggerState) Armed() bool { return s.armed }

// LevelFromBins reduces frequency-domain magnitudes (0-255) to a single level:
// the mean bin value rounded up. An empty buffer is silence.
func LevelFromBins(bins []uint8) float64 {
	if len(bins) == 0 {
		return 0
	}
	sum := 0
	for _, b := range bins {
		sum += int(b)
	}
	return math.Ceil(float64(sum) / float64(len(bins)))
}
