package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"motioncapture/internal/logger"
)

// ShowLogHandler serves one log file as text/plain.
func ShowLogHandler(log *logger.Logger, fileName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := filepath.Join(log.Dir(), fileName)

		if _, err := os.Stat(filePath); log.Dir() == "" || os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + fileName))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")

		http.ServeFile(w, r, filePath)
	}
}

// ClearLogHandler truncates one log file.
func ClearLogHandler(log *logger.Logger, fileName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := log.CleanLogs(fileName); err != nil {
			http.Error(w, "Could not clear log", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
