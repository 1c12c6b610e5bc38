package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/courserec/service"
)

// Metrics 是服务的 Prometheus 指标，注册在独立的 Registry 上。
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reloads         *prometheus.CounterVec
	results         prometheus.Histogram
}

// NewMetrics 创建指标并注册快照规模的 GaugeFunc。
func NewMetrics(reg *prometheus.Registry, rec *service.Recommender) *Metrics {
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courserec_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courserec_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courserec_snapshot_reloads_total",
				Help: "Total number of dataset reloads",
			},
			[]string{"result"}, // ok / error
		),
		results: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "courserec_recommendations_returned",
				Help:    "Number of courses returned per recommendation request",
				Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
			},
		),
	}

	courses := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "courserec_snapshot_courses",
			Help: "Distinct courses in the live snapshot",
		},
		func() float64 {
			if snap := rec.Snapshot(); snap != nil {
				return float64(snap.Content.Len())
			}
			return 0
		},
	)
	users := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "courserec_snapshot_users",
			Help: "Distinct users in the live snapshot",
		},
		func() float64 {
			if snap := rec.Snapshot(); snap != nil {
				return float64(snap.Similarity.Len())
			}
			return 0
		},
	)

	reg.MustRegister(m.requests, m.requestDuration, m.reloads, m.results, courses, users)
	return m
}

func (m *Metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) observeReload(err error) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
}
