// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts change-feed traffic. A nil *Metrics records nothing,
// so clients built without one need no checks.
type Metrics struct {
	messages        prometheus.Counter
	events          *prometheus.CounterVec
	decodeFailures  prometheus.Counter
	connectAttempts *prometheus.CounterVec
	connectionState prometheus.Gauge
}

// NewMetrics creates the change-feed collectors and registers them
// with registerer. Pass prometheus.NewRegistry() in tests.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boarding",
			Subsystem: "changefeed",
			Name:      "messages_received_total",
			Help:      "Messages read from the notification socket.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boarding",
			Subsystem: "changefeed",
			Name:      "events_total",
			Help:      "Decoded change events by model, action and outcome.",
		}, []string{"kind", "action", "outcome"}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boarding",
			Subsystem: "changefeed",
			Name:      "decode_failures_total",
			Help:      "Messages dropped because they were not valid change events.",
		}),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boarding",
			Subsystem: "changefeed",
			Name:      "connection_attempts_total",
			Help:      "WebSocket handshakes attempted, by result.",
		}, []string{"result"}),
		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boarding",
			Subsystem: "changefeed",
			Name:      "connection_state",
			Help:      "Current state: 0 disconnected, 1 connecting, 2 connected, 3 reconnecting.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		metrics.messages,
		metrics.events,
		metrics.decodeFailures,
		metrics.connectAttempts,
		metrics.connectionState,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

func (m *Metrics) messageReceived() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *Metrics) eventHandled(kind, action string, outcome Outcome) {
	if m != nil {
		m.events.WithLabelValues(kind, action, outcome.String()).Inc()
	}
}

func (m *Metrics) decodeFailed() {
	if m != nil {
		m.decodeFailures.Inc()
	}
}

func (m *Metrics) connectAttempted(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) stateChanged(state State) {
	if m != nil {
		m.connectionState.Set(float64(state))
	}
}
