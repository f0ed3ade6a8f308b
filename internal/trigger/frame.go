package trigger

import (
	"bytes"
	"fmt"
	"image"
	"time"
)

// BytesPerPixel is the sample stride of a PixelFrame (R, G, B, A).
const BytesPerPixel = 4

// PixelFrame is a fixed-size RGBA image captured at one instant.
// Frames are treated as immutable once produced.
type PixelFrame struct {
	Width      int
	Height     int
	Pix        []byte
	CapturedAt time.Time
}

// NewPixelFrame allocates a zeroed frame of the given size.
func NewPixelFrame(width, height int, at time.Time) *PixelFrame {
	return &PixelFrame{
		Width:      width,
		Height:     height,
		Pix:        make([]byte, width*height*BytesPerPixel),
		CapturedAt: at,
	}
}

// FrameFromPix wraps an existing RGBA buffer. The caller gives up ownership of pix.
func FrameFromPix(width, height int, pix []byte, at time.Time) (*PixelFrame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pix) != width*height*BytesPerPixel {
		return nil, fmt.Errorf("pixel buffer has %d bytes, expected %d", len(pix), width*height*BytesPerPixel)
	}
	return &PixelFrame{Width: width, Height: height, Pix: pix, CapturedAt: at}, nil
}

// SameSize reports whether both frames share dimensions.
func (f *PixelFrame) SameSize(other *PixelFrame) bool {
	return f.Width == other.Width && f.Height == other.Height && len(f.Pix) == len(other.Pix)
}

// Equal reports whether two frames are byte-for-byte identical.
func (f *PixelFrame) Equal(other *PixelFrame) bool {
	return f.SameSize(other) && bytes.Equal(f.Pix, other.Pix)
}

// RGBA returns an image.RGBA view sharing the frame's pixels.
func (f *PixelFrame) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}
