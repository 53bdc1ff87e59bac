package lobby

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Discard reasons recorded by the dispatcher.
const (
	discardMalformed     = "malformed"
	discardNotApplicable = "not_applicable"
	discardInternal      = "internal"
)

// Metrics holds the Prometheus collectors for the engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SessionsConnected prometheus.Gauge
	SessionsWaiting   prometheus.Gauge
	RoomsActive       prometheus.Gauge
	RoomsCreated      prometheus.Counter
	RoomsClosed       prometheus.Counter
	MessagesPosted    prometheus.Counter
	FramesDiscarded   *prometheus.CounterVec
}

// NewMetrics creates and registers the engine collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		SessionsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stranger_sessions_connected",
			Help: "Number of connected sessions",
		}),
		SessionsWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stranger_sessions_waiting",
			Help: "Number of sessions waiting for a stranger",
		}),
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stranger_rooms_active",
			Help: "Number of active two-party rooms",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stranger_rooms_created_total",
			Help: "Total number of rooms created by the matchmaker",
		}),
		RoomsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stranger_rooms_closed_total",
			Help: "Total number of rooms torn down after a participant left",
		}),
		MessagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stranger_messages_posted_total",
			Help: "Total number of chat messages appended to rooms",
		}),
		FramesDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stranger_frames_discarded_total",
				Help: "Inbound frames that produced no state change",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		m.SessionsConnected,
		m.SessionsWaiting,
		m.RoomsActive,
		m.RoomsCreated,
		m.RoomsClosed,
		m.MessagesPosted,
		m.FramesDiscarded,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(s Stats) {
	m.SessionsConnected.Set(float64(s.Sessions))
	m.SessionsWaiting.Set(float64(s.Waiting))
	m.RoomsActive.Set(float64(s.Rooms))
}

func (m *Metrics) roomOpened() {
	if m != nil {
		m.RoomsCreated.Inc()
	}
}

func (m *Metrics) roomClosed() {
	if m != nil {
		m.RoomsClosed.Inc()
	}
}

func (m *Metrics) messagePosted() {
	if m != nil {
		m.MessagesPosted.Inc()
	}
}

func (m *Metrics) discarded(reason string) {
	if m != nil {
		m.FramesDiscarded.WithLabelValues(reason).Inc()
	}
}
