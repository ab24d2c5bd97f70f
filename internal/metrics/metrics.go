// Package metrics exposes Prometheus collectors for the chat pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream service names
const (
	UpstreamLLM      = "llm"
	UpstreamGeocoder = "geocoder"
	UpstreamAmadeus  = "amadeus"
)

type Metrics struct {
	chatReplies      *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamFailures *prometheus.CounterVec
	fallbackSearches *prometheus.CounterVec
	offersReturned   prometheus.Histogram
}

// New registers the collectors with prometheus.DefaultRegisterer
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_chat_replies_total",
			Help: "Chat replies by outcome (ok, no_results, or the failing error kind)",
		}, []string{"outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hotelbot_upstream_request_duration_seconds",
			Help:    "Latency of calls to the language model, geocoder and hotel API",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"upstream", "operation"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_upstream_failures_total",
			Help: "Failed upstream calls",
		}, []string{"upstream", "operation"}),
		fallbackSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_fallback_searches_total",
			Help: "Searches that fell back to the hotel-id strategy, by result",
		}, []string{"result"}),
		offersReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hotelbot_offers_per_search",
			Help:    "Priced offers found per completed search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}

	reg.MustRegister(m.chatReplies, m.upstreamLatency, m.upstreamFailures, m.fallbackSearches, m.offersReturned)
	return m
}

// ObserveUpstream records one upstream call
func (m *Metrics) ObserveUpstream(upstream, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(upstream, operation).Observe(time.Since(started).Seconds())
	if err != nil {
		m.upstreamFailures.WithLabelValues(upstream, operation).Inc()
	}
}

// ChatReply counts one reply by outcome
func (m *Metrics) ChatReply(outcome string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(outcome).Inc()
}

// Fallback counts a fallback search; result is "ok", "no_ids" or "error"
func (m *Metrics) Fallback(result string) {
	if m == nil {
		return
	}
	m.fallbackSearches.WithLabelValues(result).Inc()
}

// OffersFound records how many priced offers a search produced
func (m *Metrics) OffersFound(n int) {
	if m == nil {
		return
	}
	m.offersReturned.Observe(float64(n))
}
