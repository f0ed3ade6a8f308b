package config

import (
	"testing"
	"time"

	"motioncapture/internal/trigger"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TRIGGER_MODE", "")
	t.Setenv("AUDIO_LOW_THRESHOLD", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, trigger.ModeCombined, cfg.DefaultMode())
	assert.Equal(t, trigger.DefaultConfig(), cfg.TriggerConfig())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STILLNESS_WINDOW_MS", "2500")
	t.Setenv("AUDIO_LOW_THRESHOLD", "0")
	t.Setenv("TRIGGER_MODE", "audio")
	t.Setenv("AUTO_START_SESSIONS", "false")
	t.Setenv("LOCAL_DEVICES", "0, 2,bogus,-1")
	t.Setenv("CAMERA_NAMES", "10.0.0.5=front, 10.0.0.6=yard,broken")

	cfg := Load()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.TriggerConfig().StillnessWindow)
	assert.Equal(t, 0.0, cfg.TriggerConfig().AudioLowThreshold)
	assert.Equal(t, trigger.ModeAudio, cfg.DefaultMode())
	assert.False(t, cfg.AutoStartSessions)
	assert.Equal(t, []int{0, 2}, cfg.LocalDevices)
	assert.Equal(t, "front", cfg.CameraName("10.0.0.5"))
	assert.Equal(t, "yard", cfg.CameraName("10.0.0.6"))
	assert.Equal(t, "unknown_10.0.0.7", cfg.CameraName("10.0.0.7"))
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("AUDIO_HIGH_THRESHOLD", "loud")
	t.Setenv("TRIGGER_MODE", "thermal")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, float64(trigger.DefaultAudioHighThreshold), cfg.AudioHighThreshold)
	assert.Equal(t, trigger.ModeCombined, cfg.DefaultMode())
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("AUDIO_HIGH_THRESHOLD", "")
	t.Setenv("AUDIO_LOW_THRESHOLD", "")
	t.Setenv("TRIGGER_MODE", "")

	cfg := Load()
	assert.NoError(t, cfg.Validate())

	cfg.AudioLowThreshold = 20
	assert.ErrorContains(t, cfg.Validate(), "invalid trigger config")

	cfg.AudioLowThreshold = trigger.DefaultAudioLowThreshold
	cfg.TriggerMode = "thermal"
	assert.ErrorContains(t, cfg.Validate(), "TRIGGER_MODE")
}
