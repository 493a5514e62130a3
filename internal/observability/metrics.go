package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	inputLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldwire",
			Subsystem: "input",
			Name:      "lines_total",
			Help:      "Field lines read, by result.",
		},
		[]string{"result"},
	)
	messageSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fieldwire",
			Subsystem: "message",
			Name:      "size_bytes",
			Help:      "Serialized message size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
		},
	)
	sinkSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldwire",
			Subsystem: "sink",
			Name:      "sends_total",
			Help:      "Messages handed to a sink.",
		},
		[]string{"sink", "success"},
	)
	sinkBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldwire",
			Subsystem: "sink",
			Name:      "bytes_total",
			Help:      "Message bytes accepted by a sink.",
		},
		[]string{"sink"},
	)
)

// Registry returns the registry holding the fieldwire collectors.
func Registry() *prometheus.Registry {
	RegisterMetrics()
	return registry
}

func RegisterMetrics() {
	registerOnce.Do(func() {
		registry.MustRegister(inputLines, messageSize, sinkSends, sinkBytes)
	})
}

func RecordInputLine(accepted bool) {
	RegisterMetrics()
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	inputLines.WithLabelValues(result).Inc()
}

func RecordMessageSize(size int) {
	RegisterMetrics()
	messageSize.Observe(float64(size))
}

func RecordSinkSend(sink string, written int, success bool) {
	RegisterMetrics()
	sinkSends.WithLabelValues(sink, strconv.FormatBool(success)).Inc()
	if written > 0 {
		sinkBytes.WithLabelValues(sink).Add(float64(written))
	}
}

// WriteTextfile dumps the current metrics in the node exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry())
}
