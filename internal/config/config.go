package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"motioncapture/internal/trigger"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	Password    string
	CamerasPort int
	CameraNames map[string]string // camera IP -> display name

	FrameWidth  int
	FrameHeight int

	PixelDiffThreshold   int
	MotionPixelThreshold int
	StillnessWindowMs    int
	AudioHighThreshold   float64
	AudioLowThreshold    float64 // 5 re-arms on quiet, 0 only on silence
	TriggerMode          string

	ProcessingInterval int  // Tick the engine on every Nth received frame (1 = every frame)
	AutoStartSessions  bool // Start a session on the first frame from an unknown camera
	SnapshotLimit      int  // Snapshots kept in memory per session, oldest evicted
	LocalDevices       []int

	LogDirectory string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		Password:             getEnv("PASSWORD", "changeme"),
		CamerasPort:          getEnvAsInt("CAMERAS_PORT", 8081),
		CameraNames:          parseCameraNames(getEnv("CAMERA_NAMES", "")),
		FrameWidth:           getEnvAsInt("FRAME_WIDTH", 640),
		FrameHeight:          getEnvAsInt("FRAME_HEIGHT", 480),
		PixelDiffThreshold:   getEnvAsInt("PIXEL_DIFF_THRESHOLD", trigger.DefaultPixelDiffThreshold),
		MotionPixelThreshold: getEnvAsInt("MOTION_PIXEL_THRESHOLD", trigger.DefaultMotionPixelThreshold),
		StillnessWindowMs:    getEnvAsInt("STILLNESS_WINDOW_MS", int(trigger.DefaultStillnessWindow/time.Millisecond)),
		AudioHighThreshold:   getEnvAsFloat("AUDIO_HIGH_THRESHOLD", trigger.DefaultAudioHighThreshold),
		AudioLowThreshold:    getEnvAsFloat("AUDIO_LOW_THRESHOLD", trigger.DefaultAudioLowThreshold),
		TriggerMode:          getEnv("TRIGGER_MODE", "combined"),
		ProcessingInterval:   getEnvAsInt("PROCESSING_INTERVAL", 1),
		AutoStartSessions:    getEnvAsBool("AUTO_START_SESSIONS", true),
		SnapshotLimit:        getEnvAsInt("SNAPSHOT_LIMIT", 50),
		LocalDevices:         parseDeviceList(getEnv("LOCAL_DEVICES", "")),
		LogDirectory:         getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

// TriggerConfig maps the thresholds onto the engine policy.
func (c *Config) TriggerConfig() trigger.Config {
	return trigger.Config{
		PixelDiffThreshold:   c.PixelDiffThreshold,
		MotionPixelThreshold: c.MotionPixelThreshold,
		StillnessWindow:      time.Duration(c.StillnessWindowMs) * time.Millisecond,
		AudioHighThreshold:   c.AudioHighThreshold,
		AudioLowThreshold:    c.AudioLowThreshold,
	}
}

// Validate checks the trigger thresholds and mode.
func (c *Config) Validate() error {
	if err := c.TriggerConfig().Validate(); err != nil {
		return fmt.Errorf("invalid trigger config: %w", err)
	}
	if _, err := trigger.ParseMode(c.TriggerMode); err != nil {
		return fmt.Errorf("invalid TRIGGER_MODE: %w", err)
	}
	return nil
}

// DefaultMode parses TriggerMode, falling back to combined.
func (c *Config) DefaultMode() trigger.Mode {
	mode, err := trigger.ParseMode(c.TriggerMode)
	if err != nil {
		return trigger.ModeCombined
	}
	return mode
}

// CameraName resolves a sender IP to its configured name.
func (c *Config) CameraName(ip string) string {
	if name, ok := c.CameraNames[ip]; ok {
		return name
	}
	return "unknown_" + ip
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseCameraNames reads "10.0.0.5=front,10.0.0.6=yard".
func parseCameraNames(raw string) map[string]string {
	names := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		ip, name, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || ip == "" || name == "" {
			continue
		}
		names[strings.TrimSpace(ip)] = strings.TrimSpace(name)
	}
	return names
}

func parseDeviceList(raw string) []int {
	var devices []int
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if id, err := strconv.Atoi(field); err == nil && id >= 0 {
			devices = append(devices, id)
		}
	}
	return devices
}
