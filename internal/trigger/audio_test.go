package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fireIndices(s *AudioTriggerState, levels []float64) []int {
	var fired []int
	for i, l := range levels {
		if s.OnAmplitudeSample(l) == FireCapture {
			fired = append(fired, i)
		}
	}
	return fired
}

func TestAudioTrigger_Hysteresis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AudioHighThreshold = 15
	cfg.AudioLowThreshold = 5

	got := fireIndices(NewAudioTriggerState(cfg), []float64{0, 20, 20, 3, 20})
	assert.Equal(t, []int{1, 4}, got)
}

func TestAudioTrigger_ZeroLowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AudioLowThreshold = 0

	got := fireIndices(NewAudioTriggerState(cfg), []float64{20, 3, 20, 0, 16})
	assert.Equal(t, []int{0, 4}, got)
}

func TestAudioTrigger_BandBetweenThresholdsHoldsState(t *testing.T) {
	s := NewAudioTriggerState(DefaultConfig())

	assert.Equal(t, FireCapture, s.OnAmplitudeSample(16))
	assert.Equal(t, NoDecision, s.OnAmplitudeSample(10))
	assert.False(t, s.Armed())
	assert.Equal(t, NoDecision, s.OnAmplitudeSample(15))
	assert.Equal(t, NoDecision, s.OnAmplitudeSample(5))
	assert.True(t, s.Armed())
}

func TestLevelFromBins(t *testing.T) {
	assert.Equal(t, 0.0, LevelFromBins(nil))
	assert.Equal(t, 2.0, LevelFromBins([]uint8{1, 2}))
	assert.Equal(t, 255.0, LevelFromBins([]uint8{255, 255, 255}))
}
