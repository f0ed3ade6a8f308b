package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"motioncapture/internal/logger"
	"motioncapture/internal/service"
	"motioncapture/internal/trigger"
)

// GetSessionsHandler lists running sessions with their live trigger state.
func GetSessionsHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, manager.Sessions())
	}
}

// StartSessionHandler handles POST /api/sessions/start?camera=..&mode=..
// Starting on a camera that already streams resets its trigger state.
func StartSessionHandler(manager *service.Manager, logger *logger.Logger, defaultMode trigger.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		camera := r.FormValue("camera")
		if camera == "" {
			http.Error(w, "Camera required", http.StatusBadRequest)
			return
		}

		mode := defaultMode
		if raw := r.FormValue("mode"); raw != "" {
			parsed, err := trigger.ParseMode(raw)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mode = parsed
		}

		session, err := manager.StartSession(camera, mode)
		if err != nil {
			logger.Error("Error starting session for %s: %v", camera, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, logger, session)
	}
}

// StopSessionHandler handles POST /api/sessions/stop?camera=..
func StopSessionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		camera := r.FormValue("camera")
		err := manager.StopSession(camera)
		if errors.Is(err, service.ErrNoSession) {
			http.Error(w, "No active session", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Error stopping session for %s: %v", camera, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, v interface{}) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
