package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"motioncapture/internal/config"
	"motioncapture/internal/handler"
	"motioncapture/internal/logger"
	"motioncapture/internal/media"
	"motioncapture/internal/repository/sqlite"
	"motioncapture/internal/route"
	"motioncapture/internal/service"
	"motioncapture/internal/service/storage"
	"motioncapture/internal/service/websocket"

	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	logger  *logger.Logger
	db      *sqlite.DB
	hub     *websocket.HubService
	manager *service.Manager
	devices []*media.DeviceCapture
}

func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(sqlite.MemoryDSN)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := storage.NewSnapshotStore(cfg.SnapshotLimit, log, sqlite.NewCaptureRepository(db))
	hub := websocket.NewHubService(log)
	codec := media.NewCodec(cfg.FrameWidth, cfg.FrameHeight)
	mng := service.NewManager(cfg, codec, store, hub, sqlite.NewSessionRepository(db), log)

	devices := make([]*media.DeviceCapture, 0, len(cfg.LocalDevices))
	for _, id := range cfg.LocalDevices {
		devices = append(devices, media.NewDeviceCapture(id, 30, log))
	}

	return &App{
		config:  cfg,
		logger:  log,
		db:      db,
		hub:     hub,
		manager: mng,
		devices: devices,
	}, nil
}

// Run serves until ctx is cancelled or the HTTP server fails, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	defer a.logger.Close()
	defer a.db.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		handler.UDPCameraHandler(ctx, a.manager, a.logger, a.config)
		return nil
	})
	for _, d := range a.devices {
		d := d
		g.Go(func() error {
			// A missing local camera should not take the server down.
			if err := d.Run(ctx, a.manager.HandleCameraImage); err != nil {
				a.logger.Error("Local device %s: %v", d.Name(), err)
			}
			return nil
		})
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: route.SetupRoutes(a.manager, a.hub, a.config, a.logger),
	}

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP shutdown: %v", err)
		}
		a.manager.Stop()
		return nil
	})

	a.logger.Info("🚀 Motion Capture Server")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("📹 Cameras UDP port: %d, trigger mode: %s", a.config.CamerasPort, a.config.DefaultMode())

	return g.Wait()
}
