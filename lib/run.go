package lib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// prefetchFrames bounds how far the decoder may run ahead of the
// filter and encoder.
const prefetchFrames = 64

type Options struct {
	// Level is the requested sharpness level. Values outside
	// [MinLevel, MaxLevel] are clamped by the kernel builder.
	Level int

	// Progress shows a terminal bar during video runs.
	Progress bool

	// ReportPath, if set, receives a YAML run summary.
	ReportPath string

	// PlotPath, if set, receives a PNG chart of per-frame deltas.
	PlotPath string

	Logger *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// ProcessMedia sharpens the input file into the output path, deciding
// between the image and video pipelines by the input extension.
func ProcessMedia(input, output string, opts Options) (*Report, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", input, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input %s is a directory: %w", input, os.ErrNotExist)
	}

	switch DetectMediaKind(input) {
	case MediaImage:
		return sharpenImageFile(input, output, opts)
	case MediaVideo:
		return sharpenVideoFile(input, output, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedMedia, filepath.Ext(input))
}

func sharpenImageFile(input, output string, opts Options) (*Report, error) {
	logger := opts.logger()
	start := time.Now()

	im, err := LoadImageFile(input)
	if err != nil {
		return nil, err
	}
	kernel := BuildKernel(opts.Level)
	logger.WithFields(logrus.Fields{
		"input":  input,
		"width":  im.Width,
		"height": im.Height,
		"level":  ClampLevel(opts.Level),
	}).Debug("image loaded")

	out, err := Sharpen(im, kernel)
	if err != nil {
		return nil, err
	}
	if err := SaveImageFile(out, output); err != nil {
		return nil, err
	}

	report := &Report{
		Input:          input,
		Output:         output,
		Media:          MediaImage.String(),
		Level:          ClampLevel(opts.Level),
		KernelSum:      kernel.Sum(),
		Width:          im.Width,
		Height:         im.Height,
		Frames:         1,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	var deltas []float64
	if opts.ReportPath != "" || opts.PlotPath != "" {
		report.MeanDelta = frameDelta(im, out)
		deltas = []float64{report.MeanDelta}
	}
	saveArtifacts(report, deltas, opts, logger)
	return report, nil
}

func sharpenVideoFile(input, output string, opts Options) (*Report, error) {
	logger := opts.logger()
	start := time.Now()

	meta, err := ProbeVideo(input)
	if err != nil {
		return nil, err
	}
	if meta.FPS <= 0 {
		logger.WithField("input", input).Warn("could not determine frame rate, assuming 25 fps")
		meta.FPS = 25
	}
	encoder, mapped := EncoderForCodec(meta.Codec)
	if !mapped {
		logger.WithFields(logrus.Fields{
			"codec":   meta.Codec,
			"encoder": encoder,
		}).Warn("no encoder mapping for source codec, using default")
	}
	logger.WithFields(logrus.Fields{
		"input":  input,
		"codec":  meta.Codec,
		"width":  meta.Width,
		"height": meta.Height,
		"fps":    meta.FPS,
		"frames": meta.Frames,
	}).Debug("video probed")

	kernel := BuildKernel(opts.Level)

	reader, err := OpenVideoReader(input, meta)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	depth := prefetchFrames
	if meta.Frames > 0 {
		depth = MinInt(depth, meta.Frames)
	}
	depth = MaxInt(depth, 1)
	buffered := NewBufferedVideoReader(reader, depth)
	defer buffered.Stop()

	writer, fallbackUsed, err := AcquireVideoWriter(output, meta, encoder)
	if err != nil {
		return nil, err
	}
	defer writer.Close()
	if fallbackUsed {
		logger.WithFields(logrus.Fields{
			"encoder":  encoder,
			"fallback": DefaultVideoEncoder,
		}).Warn("mapped encoder unavailable, using default")
	}

	var stats *StatsObserver
	var observers MultiObserver
	if opts.ReportPath != "" || opts.PlotPath != "" {
		stats = NewStatsObserver()
		observers = append(observers, stats)
	}
	if opts.Progress {
		observers = append(observers, NewProgressObserver(meta.Frames))
	}
	observers = append(observers, NewLogObserver(logger, progressLogInterval))

	frames := 0
	for idx := 0; ; idx++ {
		frame, eof := buffered.GetFrame(idx)
		if eof {
			break
		}
		out, err := Sharpen(frame, kernel)
		if err != nil {
			return nil, err
		}
		if err := writer.WriteFrame(out); err != nil {
			return nil, err
		}
		observers.OnFrame(idx, frame, out)
		buffered.Discard(idx + 1)
		frames++
	}
	if err := buffered.Err(); err != nil {
		return nil, err
	}
	observers.OnFinish(frames)
	if err := writer.Close(); err != nil {
		return nil, err
	}

	report := &Report{
		Input:           input,
		Output:          output,
		Media:           MediaVideo.String(),
		Level:           ClampLevel(opts.Level),
		KernelSum:       kernel.Sum(),
		Width:           meta.Width,
		Height:          meta.Height,
		Frames:          frames,
		FPS:             meta.FPS,
		Codec:           meta.Codec,
		Encoder:         writer.Encoder,
		EncoderFallback: fallbackUsed,
		ElapsedSeconds:  time.Since(start).Seconds(),
	}
	var deltas []float64
	if stats != nil {
		report.MeanDelta = stats.MeanDelta()
		deltas = stats.Deltas()
	}
	saveArtifacts(report, deltas, opts, logger)
	return report, nil
}

// saveArtifacts writes the optional report and plot. Failures here do
// not fail the run; the sharpened output already exists.
func saveArtifacts(report *Report, deltas []float64, opts Options, logger *logrus.Logger) {
	if opts.ReportPath != "" {
		if err := SaveReport(*report, opts.ReportPath); err != nil {
			logger.WithError(err).Warn("could not write report")
		}
	}
	if opts.PlotPath != "" {
		if err := SaveDeltaPlot(deltas, opts.PlotPath); err != nil {
			logger.WithError(err).Warn("could not write delta plot")
		}
	}
}
