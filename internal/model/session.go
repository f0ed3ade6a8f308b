package model

import "time"

// Session is one streaming run of a camera with fresh trigger state.
type Session struct {
	ID        string     `json:"id"`
	Camera    string     `json:"camera"`
	Mode      string     `json:"mode"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
}

// Active reports whether the session is still running.
func (s *Session) Active() bool { return s.StoppedAt == nil }
