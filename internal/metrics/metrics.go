package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed metrics.
var (
	FeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sattrack_feed_connected",
		Help: "1 when the upstream satellite feed connection is established, 0 otherwise",
	})

	FeedFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sattrack_feed_frames_total",
		Help: "Total frames received from the feed, counted before decoding",
	})

	FeedMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sattrack_feed_messages_total",
		Help: "Decoded feed messages by classified kind",
	}, []string{"kind"})

	FeedDecodeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sattrack_feed_decode_failures_total",
		Help: "Feed frames dropped because the payload could not be decoded",
	})

	FeedReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sattrack_feed_reconnects_total",
		Help: "Reconnection attempts scheduled after a drop or dial failure",
	})
)

// Store metrics.
var (
	SatellitesTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sattrack_satellites_tracked",
		Help: "Number of satellites with a known position in the store",
	})
)

// View metrics.
var (
	ViewClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sattrack_view_clients",
		Help: "Browser clients currently connected to the live view relay",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sattrack_http_requests_total",
		Help: "Total HTTP requests processed by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sattrack_http_request_duration_seconds",
		Help:    "HTTP request latency distribution in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"endpoint", "method"})
)
