package lib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestSaveReportRoundtrip(t *testing.T) {
	report := Report{
		Input:           "clip.mp4",
		Output:          "sharpened.mp4",
		Media:           "video",
		Level:           3,
		KernelSum:       4,
		Width:           1280,
		Height:          720,
		Frames:          240,
		FPS:             29.97,
		Codec:           "h264",
		Encoder:         "libx264",
		EncoderFallback: true,
		ElapsedSeconds:  12.5,
		MeanDelta:       4.25,
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := SaveReport(report, path); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var back Report
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if back != report {
		t.Errorf("roundtrip report = %+v, want %+v", back, report)
	}
}

// Image runs have no codec or encoder; omitempty keeps those keys out
// of the file entirely.
func TestSaveReportOmitsVideoFieldsForImages(t *testing.T) {
	report := Report{
		Input:     "photo.png",
		Output:    "sharpened.png",
		Media:     "image",
		Level:     DefaultLevel,
		KernelSum: 4,
		Width:     640,
		Height:    480,
		Frames:    1,
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := SaveReport(report, path); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, key := range []string{"fps", "codec", "encoder", "mean_delta"} {
		if strings.Contains(string(data), key+":") {
			t.Errorf("report contains %q for an image run:\n%s", key, data)
		}
	}
	if !strings.Contains(string(data), "frames: 1") {
		t.Errorf("report missing frame count:\n%s", data)
	}
}

func TestSaveReportBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.yaml")
	if err := SaveReport(Report{}, path); err == nil {
		t.Errorf("SaveReport into a missing directory succeeded, want error")
	}
}

func TestSaveDeltaPlot(t *testing.T) {
	deltas := []float64{0, 1.5, 3, 2.25, 4}
	path := filepath.Join(t.TempDir(), "deltas.png")
	if err := SaveDeltaPlot(deltas, path); err != nil {
		t.Fatalf("SaveDeltaPlot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("plot file is empty")
	}
}

func TestSaveDeltaPlotBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "deltas.png")
	if err := SaveDeltaPlot([]float64{1, 2}, path); err == nil {
		t.Errorf("SaveDeltaPlot into a missing directory succeeded, want error")
	}
}
