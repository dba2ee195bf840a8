package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/yaml.v3"
)

// Report describes one post-processing run.
type Report struct {
	RunID      string          `yaml:"run_id"`
	Source     string          `yaml:"source"`
	Output     string          `yaml:"output"`
	StartedAt  time.Time       `yaml:"started_at"`
	FinishedAt time.Time       `yaml:"finished_at"`
	Metadata   PrintMetadata   `yaml:"metadata"`
	Thumbnail  ThumbnailReport `yaml:"thumbnail"`
	Progress   AnnotationStats `yaml:"progress"`
}

type ThumbnailReport struct {
	Found        bool `yaml:"found"`
	BeginLine    int  `yaml:"begin_line"`
	EndLine      int  `yaml:"end_line"`
	PayloadBytes int  `yaml:"payload_bytes"`
	PayloadLines int  `yaml:"payload_lines"`
}

func NewReport(runID, src, dst string, started, finished time.Time, res *Result) Report {
	return Report{
		RunID:      runID,
		Source:     src,
		Output:     dst,
		StartedAt:  started,
		FinishedAt: finished,
		Metadata:   res.Metadata,
		Thumbnail: ThumbnailReport{
			Found:        res.Thumbnail.Found(),
			BeginLine:    res.Thumbnail.StartIndex,
			EndLine:      res.Thumbnail.EndIndex,
			PayloadBytes: len(res.Thumbnail.RawPayload),
			PayloadLines: res.ThumbnailLines,
		},
		Progress: res.Annotation,
	}
}

func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteMetrics writes the run as gauges in the Prometheus text format, for
// the node_exporter textfile collector.
func WriteMetrics(path string, r Report) error {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"file": filepath.Base(r.Source)}

	gauge := func(name, help string, v float64) {
		factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "printdata",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}).Set(v)
	}

	gauge("filament_length_meters", "Filament length of the print, rounded up.", float64(r.Metadata.FilamentLengthMeters))
	gauge("filament_mass_grams", "Filament mass of the print, rounded up.", float64(r.Metadata.FilamentMassGrams))
	gauge("total_layers", "Layer count declared by the slicer.", float64(r.Metadata.TotalLayers))
	gauge("estimated_print_minutes", "Estimated print time in normal mode.", r.Metadata.EstimatedMinutes)
	gauge("progress_groups_inserted", "Progress directive groups inserted.", float64(r.Progress.Groups))
	gauge("layers_annotated", "Layer changes counted after the first layer.", float64(r.Progress.LayersAnnotated))
	gauge("last_run_duration_seconds", "Wall time of the last run.", r.FinishedAt.Sub(r.StartedAt).Seconds())
	gauge("last_run_timestamp_seconds", "Unix time the last run finished.", float64(r.FinishedAt.Unix()))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, reg)
}
