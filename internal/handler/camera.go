package handler

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"

	"motioncapture/internal/config"
	"motioncapture/internal/logger"
	"motioncapture/internal/service"
)

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// maxFrameBytes drops a frame whose end marker never arrives.
const maxFrameBytes = 4 << 20

// frameAssembler rebuilds JPEG frames from per-camera UDP chunks. A chunk
// starting with SOI begins a new frame, one ending with EOI completes it.
type frameAssembler struct {
	buffers map[string]*bytes.Buffer
}

func newFrameAssembler() *frameAssembler {
	return &frameAssembler{buffers: make(map[string]*bytes.Buffer)}
}

// Push adds a chunk and returns a complete frame when one is finished.
func (a *frameAssembler) Push(camera string, data []byte) []byte {
	buf, ok := a.buffers[camera]
	if !ok {
		buf = new(bytes.Buffer)
		a.buffers[camera] = buf
	}

	if bytes.HasPrefix(data, jpegHeader) {
		buf.Reset()
	} else if buf.Len() == 0 {
		// Mid-frame chunk without a start; wait for the next SOI.
		return nil
	}
	buf.Write(data)

	if buf.Len() > maxFrameBytes {
		buf.Reset()
		return nil
	}

	if !bytes.HasSuffix(data, jpegFooter) {
		return nil
	}

	frame := make([]byte, buf.Len())
	copy(frame, buf.Bytes())
	buf.Reset()
	return frame
}

// UDPCameraHandler listens for UDP packets from cameras, reconstructs JPEG frames,
// and forwards complete frames to the Manager until ctx is cancelled.
func UDPCameraHandler(ctx context.Context, manager *service.Manager, logger *logger.Logger, config *config.Config) {
	port := strconv.Itoa(config.CamerasPort)

	addr, err := net.ResolveUDPAddr("udp", ":"+port)
	if err != nil {
		logger.Error("Failed to resolve UDP address: %v", err)
		return
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		logger.Error("Failed to listen on UDP port %s: %v", port, err)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Info("UDP Camera handler started on port %s", port)
	buffer := make([]byte, 65535)
	assembler := newFrameAssembler()

	for {
		n, remoteAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				logger.Info("UDP Camera handler stopped")
				return
			}
			logger.Error("Error reading UDP packet: %v", err)
			continue
		}

		cameraName := config.CameraName(remoteAddr.IP.String())
		if frame := assembler.Push(cameraName, buffer[:n]); frame != nil {
			manager.HandleCameraImage(frame, cameraName)
		}
	}
}
