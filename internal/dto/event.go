package dto

import "time"

// Event types pushed to viewers.
const (
	EventFrame   = "frame"
	EventCapture = "capture"
	EventSession = "session"
)

// FrameEvent carries a live preview frame.
type FrameEvent struct {
	Type   string `json:"type"`
	Camera string `json:"camera"`
	Image  []byte `json:"image"` // base64 in JSON
}

// CaptureEvent announces a committed snapshot. Viewers append it to the
// gallery strip and may play a shutter sound.
type CaptureEvent struct {
	Type      string    `json:"type"`
	Camera    string    `json:"camera"`
	SessionID string    `json:"sessionId"`
	CaptureID int64     `json:"captureId"`
	Seq       uint64    `json:"seq"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
}

// SessionEvent announces a session starting or stopping.
type SessionEvent struct {
	Type      string `json:"type"`
	Camera    string `json:"camera"`
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
	Active    bool   `json:"active"`
}

// AudioSample is what audio clients send: either a ready level or raw analyser bins.
type AudioSample struct {
	Camera string   `json:"camera"`
	Level  *float64 `json:"level,omitempty"`
	Bins   []int    `json:"bins,omitempty"` // analyser magnitudes, 0-255
}
