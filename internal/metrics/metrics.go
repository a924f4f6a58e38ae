// Package metrics records the outcome of a template build and writes it in
// the Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/pvetemplate/internal/qm"
)

const namespace = "pvetemplate"

// Recorder collects metrics for a single run.
type Recorder struct {
	registry *prometheus.Registry
	now      func() time.Time

	buildSuccess  *prometheus.GaugeVec
	buildDuration prometheus.Gauge
	lastRun       prometheus.Gauge
	downloadBytes prometheus.Gauge
	stepDuration  *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		now:      time.Now,

		buildSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_success",
				Help:      "Whether the last template build succeeded (1) or failed (0)",
			},
			[]string{"vmid", "profile"},
		),
		buildDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of the last template build in seconds",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_last_run_timestamp_seconds",
			Help:      "Unix time the last template build finished",
		}),
		downloadBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "image_download_bytes",
			Help:      "Bytes fetched for the cloud image, 0 when the file was already present",
		}),
		stepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of each qm step of the last build in seconds",
			},
			[]string{"step"},
		),
	}

	r.registry.MustRegister(
		r.buildSuccess,
		r.buildDuration,
		r.lastRun,
		r.downloadBytes,
		r.stepDuration,
	)
	return r
}

// ObserveDownload records the number of bytes fetched.
func (r *Recorder) ObserveDownload(bytes int64) {
	r.downloadBytes.Set(float64(bytes))
}

// StepStarted implements qm.Observer.
func (r *Recorder) StepStarted(qm.Step) {}

// StepFinished implements qm.Observer.
func (r *Recorder) StepFinished(step qm.Step, elapsed time.Duration, _ error) {
	r.stepDuration.WithLabelValues(step.Action).Set(elapsed.Seconds())
}

// Finish records the build result. profile may be empty when the build
// failed before a profile was selected.
func (r *Recorder) Finish(vmID int, profile string, elapsed time.Duration, err error) {
	success := 1.0
	if err != nil {
		success = 0
	}
	r.buildSuccess.WithLabelValues(strconv.Itoa(vmID), profile).Set(success)
	r.buildDuration.Set(elapsed.Seconds())
	r.lastRun.Set(float64(r.now().Unix()))
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

var _ qm.Observer = (*Recorder)(nil)
