package lib

import (
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// progressLogInterval is how many frames pass between debug log lines
// during a video run.
const progressLogInterval = 30

// FrameObserver is notified after each frame is sharpened. Observers
// replace ad-hoc counters inside the pipeline; the video loop drives
// them in frame order.
type FrameObserver interface {
	OnFrame(idx int, in, out Image)
	OnFinish(total int)
}

// MultiObserver fans notifications out to each observer in order.
type MultiObserver []FrameObserver

func (m MultiObserver) OnFrame(idx int, in, out Image) {
	for _, o := range m {
		o.OnFrame(idx, in, out)
	}
}

func (m MultiObserver) OnFinish(total int) {
	for _, o := range m {
		o.OnFinish(total)
	}
}

// ProgressObserver renders a terminal bar. With an unknown total it
// degrades to a spinner.
type ProgressObserver struct {
	bar *progressbar.ProgressBar
}

func NewProgressObserver(total int) *ProgressObserver {
	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][SV][reset] Sharpening video"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &ProgressObserver{bar: bar}
}

func (p *ProgressObserver) OnFrame(idx int, in, out Image) {
	p.bar.Add(1)
}

func (p *ProgressObserver) OnFinish(total int) {
	p.bar.Finish()
}

// LogObserver writes a structured debug line every interval frames.
type LogObserver struct {
	logger   *logrus.Logger
	interval int
}

func NewLogObserver(logger *logrus.Logger, interval int) *LogObserver {
	if interval <= 0 {
		interval = progressLogInterval
	}
	return &LogObserver{logger: logger, interval: interval}
}

func (l *LogObserver) OnFrame(idx int, in, out Image) {
	if (idx+1)%l.interval == 0 {
		l.logger.WithField("frames", idx+1).Debug("sharpened frames")
	}
}

func (l *LogObserver) OnFinish(total int) {
	l.logger.WithField("frames", total).Debug("video pass complete")
}

// StatsObserver records the mean absolute channel delta of every frame
// pair it sees. The series feeds the run report and the delta plot.
type StatsObserver struct {
	deltas []float64
}

func NewStatsObserver() *StatsObserver {
	return &StatsObserver{}
}

func (s *StatsObserver) OnFrame(idx int, in, out Image) {
	s.deltas = append(s.deltas, frameDelta(in, out))
}

func (s *StatsObserver) OnFinish(total int) {}

func (s *StatsObserver) Deltas() []float64 {
	deltas := make([]float64, len(s.deltas))
	copy(deltas, s.deltas)
	return deltas
}

func (s *StatsObserver) MeanDelta() float64 {
	return Mean(s.deltas)
}

func frameDelta(a, b Image) float64 {
	n := MinInt(len(a.Bytes), len(b.Bytes))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := int(a.Bytes[i]) - int(b.Bytes[i])
		if d < 0 {
			d = -d
		}
		sum += float64(d)
	}
	return sum / float64(n)
}
