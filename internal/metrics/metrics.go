// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InteractionsTotal counts like/save toggles by kind and resulting state.
	InteractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "selera_interactions_total",
		Help: "Number of like/save toggles processed.",
	}, []string{"kind", "state"})

	// ChatMessagesTotal counts chat messages accepted for broadcast.
	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "selera_chat_messages_total",
		Help: "Number of chat messages broadcast.",
	})

	// ExternalRequestsTotal counts outbound calls to third-party APIs.
	ExternalRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "selera_external_requests_total",
		Help: "Number of outbound third-party API requests.",
	}, []string{"api", "outcome"})
)
