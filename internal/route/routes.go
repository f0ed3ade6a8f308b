package route

import (
	"net/http"
	"os"
	"path/filepath"

	"motioncapture/internal/config"
	"motioncapture/internal/handler"
	"motioncapture/internal/logger"
	"motioncapture/internal/middleware"
	"motioncapture/internal/service"
	"motioncapture/internal/service/websocket"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", filepath.Clean(path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers the API endpoints and static pages and wraps the mux
// with the authentication middleware.
func SetupRoutes(manager *service.Manager, hub *websocket.HubService, cfg *config.Config, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Live feeds
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, log))
	mux.HandleFunc("/api/audio", handler.AudioWebsocketHandler(manager, log))

	// Sessions
	mux.HandleFunc("/api/sessions", handler.GetSessionsHandler(manager, log))
	mux.HandleFunc("/api/sessions/start", handler.StartSessionHandler(manager, log, cfg.DefaultMode()))
	mux.HandleFunc("/api/sessions/stop", handler.StopSessionHandler(manager, log))

	// Captures
	mux.HandleFunc("/api/captures", handler.GetCapturesHandler(manager, log))
	mux.HandleFunc("/api/captures/view", handler.ViewCaptureHandler(manager, log))
	mux.HandleFunc("/api/captures/delete", handler.DeleteCaptureHandler(manager, log))
	mux.HandleFunc("/api/captures/clear", handler.ClearCapturesHandler(manager, log))

	// Logs
	for name, file := range map[string]string{
		"info":    logger.InfoFile,
		"warning": logger.WarningFile,
		"error":   logger.ErrorFile,
	} {
		mux.HandleFunc("/logs/"+name, handler.ShowLogHandler(log, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogHandler(log, file))
	}

	// Auth
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, log))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// /settings -> static/settings.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	return middleware.AuthMiddleware(mux)
}
