package dto

import (
	"encoding/json"
	"time"
)

// CaptureInfo is one gallery entry.
type CaptureInfo struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Camera    string    `json:"camera"`
	Seq       uint64    `json:"seq"`
	Trigger   string    `json:"trigger"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	URL       string    `json:"url"`
}

// MarshalJSON customizes JSON output for CaptureInfo to format date and time-of-day.
func (c CaptureInfo) MarshalJSON() ([]byte, error) {
	type Alias CaptureInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      c.Date.Format("02-01-2006"),
		TimeOfDay: c.TimeOfDay.Format("15:04:05"),
		Alias:     (Alias)(c),
	})
}
