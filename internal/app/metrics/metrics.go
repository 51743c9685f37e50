package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hywhisper"

// Outcome labels for transcription requests
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Recorder collects request metrics on its own registry so that several
// servers (tests included) can coexist in one process.
type Recorder struct {
	registry       *prometheus.Registry
	transcriptions *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	uploadBytes    prometheus.Histogram
	errors         *prometheus.CounterVec
}

// NewRecorder creates a recorder. liveFiles, if non-nil, is sampled for the
// scratch file gauge.
func NewRecorder(liveFiles func() int64) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription requests by producing service and outcome.",
		}, []string{"service", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall-clock time of completed transcription requests.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 10, 20, 30, 60, 120},
		}, []string{"service"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of accepted uploads.",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 2, 10),
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed or rejected requests by error kind.",
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		r.transcriptions,
		r.duration,
		r.uploadBytes,
		r.errors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if liveFiles != nil {
		r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scratch_files",
			Help:      "Uploads currently held in the scratch directory.",
		}, func() float64 { return float64(liveFiles()) }))
	}

	return r
}

// RecordSuccess records a completed transcription
func (r *Recorder) RecordSuccess(service string, elapsed time.Duration, size int64) {
	r.transcriptions.WithLabelValues(service, OutcomeCompleted).Inc()
	r.duration.WithLabelValues(service).Observe(elapsed.Seconds())
	r.uploadBytes.Observe(float64(size))
}

// RecordFailure records a rejected or failed request. service may be empty
// when the request never reached a transcriber.
func (r *Recorder) RecordFailure(service, outcome, kind string) {
	r.transcriptions.WithLabelValues(service, outcome).Inc()
	r.errors.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
