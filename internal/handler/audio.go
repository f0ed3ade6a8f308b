package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"motioncapture/internal/dto"
	"motioncapture/internal/logger"
	"motioncapture/internal/service"
	"motioncapture/internal/trigger"

	gorilla "github.com/gorilla/websocket"
)

// AudioWebsocketHandler accepts a stream of audio level samples, one JSON
// message per analysis tick, and feeds them to the camera's session.
func AudioWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		defer connection.Close()

		defaultCamera := r.URL.Query().Get("camera")
		logger.Info("Audio source connected (camera %q)", defaultCamera)

		for {
			_, msg, err := connection.ReadMessage()
			if err != nil {
				if !gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
					logger.Error("Audio source disconnected with error: %v", err)
				}
				return
			}

			camera, level, err := parseAudioSample(msg, defaultCamera)
			if err != nil {
				logger.Warning("Ignoring audio sample: %v", err)
				continue
			}
			manager.HandleAudioLevel(camera, level)
		}
	}
}

// parseAudioSample decodes one sample, preferring an explicit level over bins.
func parseAudioSample(msg []byte, defaultCamera string) (string, float64, error) {
	var sample dto.AudioSample
	if err := json.Unmarshal(msg, &sample); err != nil {
		return "", 0, fmt.Errorf("invalid JSON: %w", err)
	}

	camera := sample.Camera
	if camera == "" {
		camera = defaultCamera
	}
	if camera == "" {
		return "", 0, fmt.Errorf("camera required")
	}

	if sample.Level != nil {
		return camera, *sample.Level, nil
	}
	if len(sample.Bins) == 0 {
		return "", 0, fmt.Errorf("level or bins required")
	}

	bins := make([]uint8, len(sample.Bins))
	for i, b := range sample.Bins {
		switch {
		case b < 0:
			bins[i] = 0
		case b > 255:
			bins[i] = 255
		default:
			bins[i] = uint8(b)
		}
	}
	return camera, trigger.LevelFromBins(bins), nil
}
