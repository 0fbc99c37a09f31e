// Package metrics records run counters in a Prometheus registry and exports
// them as a node_exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "randaudit/internal/errors"
	"randaudit/internal/runner"
)

const namespace = "randaudit"

// Recorder owns a private registry, so two runs in one process never collide.
type Recorder struct {
	registry *prometheus.Registry

	TestsTotal   *prometheus.CounterVec
	FilesTotal   *prometheus.CounterVec
	RunDuration  prometheus.Gauge
	PlannedTests prometheus.Gauge
}

// NewRecorder registers every run metric on a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		TestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tests_total",
			Help:      "Executed statistical tests by test name and status.",
		}, []string{"test", "status"}),
		FilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Input files by outcome (processed, failed).",
		}, []string{"outcome"}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		PlannedTests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "planned_tests",
			Help:      "Tests planned for the last run.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun adds a finished run to the counters.
func (r *Recorder) ObserveRun(report *runner.RunReport) {
	for _, file := range report.Files {
		if file.Failed() {
			r.FilesTotal.WithLabelValues("failed").Inc()
			continue
		}
		r.FilesTotal.WithLabelValues("processed").Inc()
		for _, res := range file.Results {
			r.TestsTotal.WithLabelValues(res.TestName, string(res.Status)).Inc()
		}
	}
	r.RunDuration.Set(report.Duration.Seconds())
	r.PlannedTests.Set(float64(report.PlannedTests))
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return apperrors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
