// Package metrics содержит метрики Prometheus трекера и генератора.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK          = "ok"
	ResultDecodeError = "decode_error"
	ResultEncodeError = "encode_error"
	ResultPublishErr  = "publish_error"
)

var (
	TrackerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotrack",
		Subsystem: "tracker",
		Name:      "messages_total",
		Help:      "Processed location messages by result.",
	}, []string{"result"})

	TrackerDistance = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geotrack",
		Subsystem: "tracker",
		Name:      "distance_km_total",
		Help:      "Accumulated great-circle distance in kilometers.",
	})

	TrackerLastLeg = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geotrack",
		Subsystem: "tracker",
		Name:      "last_leg_km",
		Help:      "Distance between the two most recent positions in kilometers.",
	})

	GeneratorTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotrack",
		Subsystem: "generator",
		Name:      "ticks_total",
		Help:      "Generator ticks by result.",
	}, []string{"result"})
)
