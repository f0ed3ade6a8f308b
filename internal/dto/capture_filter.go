// CaptureFilters describe user-provided filters to narrow the capture list.
package dto

import "time"

type CaptureFilters struct {
	Camera    string
	SessionID string
	Trigger   string
	After     time.Time
	Before    time.Time
	Limit     int
	Offset    int
}
