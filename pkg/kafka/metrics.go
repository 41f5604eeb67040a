package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event publishing metrics, labelled by event type.
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accounts",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Account events accepted by the Kafka writer",
		},
		[]string{"event_type"},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accounts",
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Account events the Kafka writer rejected",
		},
		[]string{"event_type"},
	)

	EventPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "accounts",
			Subsystem: "events",
			Name:      "publish_duration_seconds",
			Help:      "Time spent in WriteMessages per account event",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"event_type"},
	)

	// EventPayloadBytes tracks envelope size; address payloads should stay
	// well under the broker's message.max.bytes.
	EventPayloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "accounts",
			Subsystem: "events",
			Name:      "payload_bytes",
			Help:      "Encoded size of account event envelopes",
			Buckets:   prometheus.ExponentialBuckets(128, 2, 8),
		},
		[]string{"event_type"},
	)
)
