// Package replay drives a trigger engine over recorded frames with a
// synthetic clock, so threshold settings can be tried offline.
package replay

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"motioncapture/internal/trigger"

	"github.com/gabriel-vasile/mimetype"
)

// Codec decodes recorded images and encodes snapshots.
type Codec interface {
	Decode(data []byte, at time.Time) (*trigger.PixelFrame, error)
	trigger.Encoder
}

// Frame is one recorded image.
type Frame struct {
	Name string
	Data []byte
}

// Options controls a replay run.
type Options struct {
	Config trigger.Config
	Mode   trigger.Mode
	FPS    int
	Start  time.Time
}

// Event reports a tick that fired.
type Event struct {
	Index   int
	Name    string
	Offset  time.Duration // since the first frame
	Trigger trigger.TriggerKind
	Outcome trigger.Outcome
	Seq     uint64
	Data    []byte // encoded snapshot, only when captured
}

// Summary counts what happened over a run.
type Summary struct {
	Frames     int
	Captures   int
	Duplicates int
	Skipped    int
}

var imageTypes = []string{"image/jpeg", "image/png"}

// LoadFrames reads every JPEG or PNG image in dir, ordered by file name.
// Files are recognised by content, so extensions do not matter.
func LoadFrames(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	frames := make([]Frame, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %s: %w", name, err)
		}
		if !mimetype.EqualsAny(mimetype.Detect(data).String(), imageTypes...) {
			continue
		}
		frames = append(frames, Frame{Name: name, Data: data})
	}
	return frames, nil
}

// LoadLevels reads one audio level per line. Blank lines and lines starting
// with # are ignored.
func LoadLevels(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open levels file: %w", err)
	}
	defer f.Close()

	var levels []float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("levels line %d: %w", line, err)
		}
		levels = append(levels, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read levels file: %w", err)
	}
	return levels, nil
}

type recordedSource struct {
	codec   Codec
	current Frame
	at      time.Time
	ok      bool
}

func (s *recordedSource) RenderFrame() (*trigger.PixelFrame, error) {
	if !s.ok {
		return nil, trigger.ErrSourceUnavailable
	}
	return s.codec.Decode(s.current.Data, s.at)
}

type recordedLevel struct {
	level float64
	ok    bool
}

func (l *recordedLevel) AudioLevel() (float64, error) {
	if !l.ok {
		return 0, trigger.ErrSourceUnavailable
	}
	return l.level, nil
}

// Run ticks the engine once per frame, FPS frames per synthetic second.
// levels[i], when present, is fed as an audio tick right after frame i.
func Run(frames []Frame, levels []float64, codec Codec, opts Options, report func(Event)) (Summary, error) {
	if err := opts.Config.Validate(); err != nil {
		return Summary{}, err
	}
	if opts.FPS <= 0 {
		return Summary{}, fmt.Errorf("fps must be positive, got %d", opts.FPS)
	}
	if report == nil {
		report = func(Event) {}
	}

	source := &recordedSource{codec: codec}
	level := &recordedLevel{}
	var delivered []byte
	sink := trigger.SinkFunc(func(s trigger.Snapshot) { delivered = s.Data })
	engine := trigger.NewEngine(opts.Config, opts.Mode, source, level, codec, sink)

	step := time.Second / time.Duration(opts.FPS)
	var sum Summary

	emit := func(i int, offset time.Duration, kind trigger.TriggerKind, res trigger.TickResult) {
		switch res.Outcome {
		case trigger.OutcomeCaptured:
			sum.Captures++
		case trigger.OutcomeDuplicate:
			sum.Duplicates++
		case trigger.OutcomeSkipped:
			sum.Skipped++
		}
		if res.Decision != trigger.FireCapture {
			return
		}
		ev := Event{Index: i, Name: frames[i].Name, Offset: offset, Trigger: kind, Outcome: res.Outcome, Seq: res.Seq}
		if res.Outcome == trigger.OutcomeCaptured {
			ev.Data = delivered
		}
		delivered = nil
		report(ev)
	}

	for i, f := range frames {
		offset := time.Duration(i) * step
		now := opts.Start.Add(offset)
		source.current, source.at, source.ok = f, now, true
		sum.Frames++

		res, err := engine.VideoTick(now)
		if err != nil {
			return sum, fmt.Errorf("frame %s: %w", f.Name, err)
		}
		emit(i, offset, trigger.TriggerMotion, res)

		if i < len(levels) {
			level.level, level.ok = levels[i], true
			res, err := engine.AudioTick(now)
			if err != nil {
				return sum, fmt.Errorf("frame %s audio: %w", f.Name, err)
			}
			emit(i, offset, trigger.TriggerAudio, res)
		}
	}
	return sum, nil
}
