// Package metrics exposes prometheus collectors for snapshot refreshes and
// upstream fetches.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Refresh results.
const (
	RefreshResultSuccess   = "success"
	RefreshResultError     = "error"
	RefreshResultCollapsed = "collapsed"
	RefreshResultStale     = "stale"
)

// Fetch results.
const (
	FetchResultOK       = "ok"
	FetchResultError    = "error"
	FetchResultCanceled = "canceled"
)

// Metrics holds the dashboard collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	refreshes     *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	totalArrears  prometheus.Gauge
	generation    prometheus.Gauge
	wsClients     prometheus.Gauge
	httpDuration  *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultSet  *Metrics
)

// Default returns the collectors registered on the default prometheus
// registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultSet = New(prometheus.DefaultRegisterer)
	})
	return defaultSet
}

// New creates the collectors and registers them on registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tagihan_snapshot_refresh_total",
			Help: "Snapshot refresh attempts by result.",
		}, []string{"reason", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tagihan_upstream_fetch_duration_seconds",
			Help:    "Latency of upstream collection fetches.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"collection", "result"}),
		totalArrears: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tagihan_total_arrears_rupiah",
			Help: "Total outstanding amount across unpaid bills in the current snapshot.",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tagihan_snapshot_generation",
			Help: "Generation number of the current snapshot.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tagihan_stream_clients",
			Help: "Connected dashboard stream clients, websocket and SSE.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tagihan_http_request_duration_seconds",
			Help:    "Latency of API requests by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registerer.MustRegister(m.refreshes, m.fetchDuration, m.totalArrears, m.generation, m.wsClients, m.httpDuration)
	return m
}

// ObserveFetch records one upstream collection fetch.
func (m *Metrics) ObserveFetch(collection string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(collection, ClassifyFetch(err)).Observe(elapsed.Seconds())
}

// ClassifyFetch maps a fetch error to a low-cardinality result label.
func ClassifyFetch(err error) string {
	switch {
	case err == nil:
		return FetchResultOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FetchResultCanceled
	default:
		return FetchResultError
	}
}

// RecordRefresh counts a refresh attempt.
func (m *Metrics) RecordRefresh(reason, result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(reason, result).Inc()
}

// SetSnapshot publishes the generation and arrears total of the snapshot
// now being served.
func (m *Metrics) SetSnapshot(generation int64, totalArrears decimal.Decimal) {
	if m == nil {
		return
	}
	m.generation.Set(float64(generation))
	m.totalArrears.Set(totalArrears.InexactFloat64())
}

// ObserveRequest records one served API request. route is the matched route
// pattern, never the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// StreamClientConnected and StreamClientDisconnected track live dashboard
// stream subscribers.
func (m *Metrics) StreamClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) StreamClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}
