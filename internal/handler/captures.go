package handler

import (
	"net/http"
	"strconv"
	"time"

	"motioncapture/internal/dto"
	"motioncapture/internal/logger"
	"motioncapture/internal/service"
)

// Paging bounds for the capture list.
const (
	defaultPageSize = 24
	maxPageSize     = 200
	maxPage         = 1 << 20
)

// GetCapturesHandler returns a filtered, paginated list of captures.
func GetCapturesHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		if page > maxPage {
			page = maxPage
		}
		limit := atoiDefault(q.Get("limit"), defaultPageSize)
		if limit > maxPageSize {
			limit = maxPageSize
		}

		filter := &dto.CaptureFilters{
			Camera:    q.Get("camera"),
			SessionID: q.Get("session"),
			Trigger:   q.Get("trigger"),
			After:     parseTimestamp(q.Get("after")),
			Before:    parseTimestamp(q.Get("before")),
			Limit:     limit,
			Offset:    (page - 1) * limit,
		}

		store := manager.GetStore()
		captures, total, err := store.List(filter)
		if err != nil {
			logger.Error("Error querying captures: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		infos := make([]dto.CaptureInfo, 0, len(captures))
		for _, c := range captures {
			infos = append(infos, dto.CaptureInfo{
				ID:        c.ID,
				SessionID: c.SessionID,
				Camera:    c.Camera,
				Seq:       c.Seq,
				Trigger:   c.Trigger,
				Date:      c.Timestamp,
				TimeOfDay: c.Timestamp,
				Width:     c.Width,
				Height:    c.Height,
				URL:       service.CaptureURL(c.ID),
			})
		}

		writeJSON(w, logger, dto.CapturesData{
			Captures:    infos,
			MemoryBytes: store.MemoryUsage(),
			Length:      total,
			TotalPages:  (total + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		})
	}
}

// ViewCaptureHandler serves one snapshot image.
func ViewCaptureHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid capture id", http.StatusBadRequest)
			return
		}

		snap, err := manager.GetStore().Get(id)
		if err != nil {
			logger.Error("Error loading capture %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if snap == nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", snap.Capture.MimeType)
		w.Header().Set("Content-Length", strconv.Itoa(len(snap.Data)))
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.Write(snap.Data)
	}
}

// DeleteCaptureHandler removes one snapshot.
func DeleteCaptureHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid capture id", http.StatusBadRequest)
			return
		}

		if err := manager.GetStore().Delete(id); err != nil {
			logger.Error("Error deleting capture %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		logger.Info("Capture %d deleted", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearCapturesHandler removes every snapshot, or those of one session.
func ClearCapturesHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var err error
		if session := r.FormValue("session"); session != "" {
			err = manager.GetStore().DropSession(session)
		} else {
			err = manager.GetStore().Clear()
		}
		if err != nil {
			logger.Error("Error clearing captures: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// atoiDefault parses a positive integer or returns def.
func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// parseTimestamp accepts RFC 3339 or "2006-01-02T15:04" (as sent by datetime-local inputs).
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
