package media

import (
	"context"
	"fmt"
	"time"

	"motioncapture/internal/logger"

	"gocv.io/x/gocv"
)

// DeviceCapture reads frames from a local camera.
type DeviceCapture struct {
	deviceID int
	name     string
	interval time.Duration
	logger   *logger.Logger
}

// NewDeviceCapture prepares capture from OpenCV device index id at roughly fps frames per second.
func NewDeviceCapture(id int, fps int, logger *logger.Logger) *DeviceCapture {
	if fps <= 0 {
		fps = 30
	}
	return &DeviceCapture{
		deviceID: id,
		name:     fmt.Sprintf("device_%d", id),
		interval: time.Second / time.Duration(fps),
		logger:   logger,
	}
}

// Name is the camera name frames are reported under.
func (d *DeviceCapture) Name() string { return d.name }

// Run reads frames until ctx is cancelled, handing each one over as JPEG.
func (d *DeviceCapture) Run(ctx context.Context, onFrame func(jpeg []byte, camera string)) error {
	webcam, err := gocv.VideoCaptureDevice(d.deviceID)
	if err != nil {
		return fmt.Errorf("failed to open capture device %d: %w", d.deviceID, err)
	}
	defer webcam.Close()

	img := gocv.NewMat()
	defer img.Close()

	d.logger.Info("Capturing from local device %d as %s", d.deviceID, d.name)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	misses := 0
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopped capture from device %d", d.deviceID)
			return nil
		case <-ticker.C:
		}

		if ok := webcam.Read(&img); !ok || img.Empty() {
			misses++
			if misses%100 == 1 {
				d.logger.Warning("Device %d returned no frame (%d misses)", d.deviceID, misses)
			}
			continue
		}
		misses = 0

		jpeg, err := EncodeJPEG(img)
		if err != nil {
			d.logger.Error("Device %d: %v", d.deviceID, err)
			continue
		}
		onFrame(jpeg, d.name)
	}
}
