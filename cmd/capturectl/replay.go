package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"motioncapture/internal/media"
	"motioncapture/internal/replay"
	"motioncapture/internal/trigger"

	"github.com/spf13/cobra"
)

// ReplayOptions holds command options
type ReplayOptions struct {
	Dir          string
	Levels       string
	Out          string
	Mode         string
	FPS          int
	Width        int
	Height       int
	PixelDiff    int
	MotionPixels int
	StillnessMs  int
	AudioHigh    float64
	AudioLow     float64
}

// NewReplayCommand creates the replay command
func NewReplayCommand() *cobra.Command {
	opts := &ReplayOptions{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Run the capture triggers over recorded frames",
		Long: `Replay a directory of JPEG/PNG frames (sorted by name) through the capture
triggers at a fixed frame rate and print every tick that fired. An optional
levels file supplies one audio level per frame.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts)
		},
	}

	def := trigger.DefaultConfig()
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "Directory with recorded frames")
	cmd.Flags().StringVar(&opts.Levels, "levels", "", "File with one audio level per frame")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Write accepted snapshots as PNG to this directory")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "combined", "Trigger mode: motion, audio or combined")
	cmd.Flags().IntVar(&opts.FPS, "fps", 30, "Synthetic frame rate")
	cmd.Flags().IntVar(&opts.Width, "width", 640, "Frame width after decoding")
	cmd.Flags().IntVar(&opts.Height, "height", 480, "Frame height after decoding")
	cmd.Flags().IntVar(&opts.PixelDiff, "pixel-diff", def.PixelDiffThreshold, "Summed RGB difference for a pixel to count as changed")
	cmd.Flags().IntVar(&opts.MotionPixels, "motion-pixels", def.MotionPixelThreshold, "Changed pixels needed for motion")
	cmd.Flags().IntVar(&opts.StillnessMs, "stillness-ms", int(def.StillnessWindow/time.Millisecond), "Stillness needed before a motion capture")
	cmd.Flags().Float64Var(&opts.AudioHigh, "audio-high", def.AudioHighThreshold, "Level above which audio fires")
	cmd.Flags().Float64Var(&opts.AudioLow, "audio-low", def.AudioLowThreshold, "Level at or below which audio re-arms")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions) error {
	mode, err := trigger.ParseMode(opts.Mode)
	if err != nil {
		return err
	}

	frames, err := replay.LoadFrames(opts.Dir)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames found in %s", opts.Dir)
	}

	var levels []float64
	if opts.Levels != "" {
		if levels, err = replay.LoadLevels(opts.Levels); err != nil {
			return err
		}
	}

	if opts.Out != "" {
		if err := os.MkdirAll(opts.Out, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	replayOpts := replay.Options{
		Config: trigger.Config{
			PixelDiffThreshold:   opts.PixelDiff,
			MotionPixelThreshold: opts.MotionPixels,
			StillnessWindow:      time.Duration(opts.StillnessMs) * time.Millisecond,
			AudioHighThreshold:   opts.AudioHigh,
			AudioLowThreshold:    opts.AudioLow,
		},
		Mode:  mode,
		FPS:   opts.FPS,
		Start: time.Now(),
	}

	var writeErr error
	report := func(ev replay.Event) {
		fmt.Fprintf(out, "%8s  %-24s %-6s %s", ev.Offset.Truncate(time.Millisecond), ev.Name, ev.Trigger, ev.Outcome)
		if ev.Outcome == trigger.OutcomeCaptured {
			fmt.Fprintf(out, " #%d", ev.Seq)
		}
		fmt.Fprintln(out)

		if opts.Out != "" && ev.Data != nil && writeErr == nil {
			name := fmt.Sprintf("capture_%04d.png", ev.Seq)
			writeErr = os.WriteFile(filepath.Join(opts.Out, name), ev.Data, 0644)
		}
	}

	fmt.Fprintf(out, "Replaying %d frames at %d fps (%s)\n", len(frames), opts.FPS, mode)
	sum, err := replay.Run(frames, levels, media.NewCodec(opts.Width, opts.Height), replayOpts, report)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write snapshot: %w", writeErr)
	}

	fmt.Fprintf(out, "\n📊 %d frames, %d captures, %d duplicates suppressed, %d skipped\n",
		sum.Frames, sum.Captures, sum.Duplicates, sum.Skipped)
	return nil
}
