package model

import "time"

// Capture is the metadata of one committed snapshot.
type Capture struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Camera    string    `json:"camera"`
	Seq       uint64    `json:"seq"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	MimeType  string    `json:"mime_type"`
}
