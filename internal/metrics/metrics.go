// Package metrics holds the prometheus collectors exposed on /metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "file_share"

type Metrics struct {
	Registry *prometheus.Registry

	Uploads          *prometheus.CounterVec
	UploadBytes      prometheus.Counter
	Downloads        *prometheus.CounterVec
	DownloadBytes    prometheus.Counter
	AccessLogLost    prometheus.Counter
	StagingRemoved   prometheus.Counter
	StagingFailed    prometheus.Counter
	RequestDurations *prometheus.HistogramVec
}

// New registers every collector on a fresh registry so tests can create as
// many instances as they like
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome.",
		}, []string{"outcome"}),
		UploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes accepted from successful uploads.",
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by outcome.",
		}, []string{"outcome"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes staged for successful downloads.",
		}),
		AccessLogLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_log_failures_total",
			Help:      "Access log entries that could not be written after retries.",
		}),
		StagingRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staging_files_removed_total",
			Help:      "Staging copies removed by scheduled cleanup or sweeps.",
		}),
		StagingFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staging_cleanup_failures_total",
			Help:      "Staging copies that could not be removed.",
		}),
		RequestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent answering HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Uploads,
		m.UploadBytes,
		m.Downloads,
		m.DownloadBytes,
		m.AccessLogLost,
		m.StagingRemoved,
		m.StagingFailed,
		m.RequestDurations,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
