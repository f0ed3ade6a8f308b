package trigger

import (
	"time"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

const tick = time.Second / 60

func solidFrame(w, h int, v byte) *PixelFrame {
	f := NewPixelFrame(w, h, epoch)
	for i := 0; i < len(f.Pix); i += BytesPerPixel {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = v, v, v, 255
	}
	return f
}

// withChanged returns a copy of base where the first n pixels have red raised by delta.
func withChanged(base *PixelFrame, n int, delta byte) *PixelFrame {
	f := &PixelFrame{Width: base.Width, Height: base.Height, Pix: append([]byte(nil), base.Pix...)}
	for p := 0; p < n; p++ {
		f.Pix[p*BytesPerPixel] += delta
	}
	return f
}

type fakeFrames struct {
	frames []*PixelFrame
	next   int
	err    error
}

func (s *fakeFrames) RenderFrame() (*PixelFrame, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.frames) == 0 {
		return nil, ErrSourceUnavailable
	}
	f := s.frames[s.next]
	if s.next < len(s.frames)-1 {
		s.next++
	}
	return f, nil
}

type fakeLevels struct {
	levels []float64
	next   int
}

func (s *fakeLevels) AudioLevel() (float64, error) {
	if s.next >= len(s.levels) {
		return 0, ErrSourceUnavailable
	}
	l := s.levels[s.next]
	s.next++
	return l, nil
}

type byteEncoder struct{ fail error }

func (e byteEncoder) Encode(f *PixelFrame) ([]byte, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	return append([]byte(nil), f.Pix...), nil
}

type recordingSink struct{ got []Snapshot }

func (s *recordingSink) Deliver(snap Snapshot) { s.got = append(s.got, snap) }
