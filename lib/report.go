package lib

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v2"
)

// Report summarizes one sharpening run.
type Report struct {
	Input           string  `yaml:"input"`
	Output          string  `yaml:"output"`
	Media           string  `yaml:"media"`
	Level           int     `yaml:"level"`
	KernelSum       float64 `yaml:"kernel_sum"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Frames          int     `yaml:"frames"`
	FPS             float64 `yaml:"fps,omitempty"`
	Codec           string  `yaml:"codec,omitempty"`
	Encoder         string  `yaml:"encoder,omitempty"`
	EncoderFallback bool    `yaml:"encoder_fallback,omitempty"`
	ElapsedSeconds  float64 `yaml:"elapsed_seconds"`
	MeanDelta       float64 `yaml:"mean_delta,omitempty"`
}

func SaveReport(report Report, savePath string) error {
	yamlData, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %v", err)
	}
	if err := os.WriteFile(savePath, yamlData, 0644); err != nil {
		return fmt.Errorf("write report: %v", err)
	}
	return nil
}

// SaveDeltaPlot draws the per-frame delta series as a line chart.
func SaveDeltaPlot(deltas []float64, savePath string) error {
	p := plot.New()

	p.Title.Text = "Per-frame sharpening delta"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Mean absolute delta"

	data := make(plotter.XYs, len(deltas))
	for i := range data {
		data[i].X = float64(i)
		data[i].Y = deltas[i]
	}

	if err := plotutil.AddLinePoints(p, "Delta", data); err != nil {
		return fmt.Errorf("plot deltas: %v", err)
	}
	if err := p.Save(12*vg.Inch, 10*vg.Inch, savePath); err != nil {
		return fmt.Errorf("save plot: %v", err)
	}
	return nil
}
