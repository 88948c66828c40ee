package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StoreRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "painel", Name: "store_requests_total", Help: "Remote document store requests",
	}, []string{"op", "outcome"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "painel", Name: "handler_errors_total", Help: "Handler errors",
	})
	AutosaveFlushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "painel", Name: "autosave_flushes_total", Help: "Debounced config autosave flushes",
	}, []string{"outcome"})
	RecordsAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "painel", Name: "records_appended_total", Help: "Attendance records appended",
	})
	SyncStatus = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "painel", Name: "sync_status", Help: "Sync status: 0 syncing, 1 saved, 2 offline",
	})
	MirrorPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "painel", Name: "mirror_ping_seconds", Help: "Local mirror ping latency",
		Buckets: prometheus.DefBuckets,
	})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "painel", Name: "http_request_duration_seconds", Help: "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

func init() {
	prometheus.MustRegister(StoreRequests, HandlerErrors, AutosaveFlushes,
		RecordsAppended, SyncStatus, MirrorPing, HTTPDuration)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveMirrorPing(d time.Duration) { MirrorPing.Observe(d.Seconds()) }
