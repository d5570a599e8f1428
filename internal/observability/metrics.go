package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the ingest counters exposed on /metrics.
type Metrics struct {
	MessagesReceived prometheus.Counter
	PayloadsRejected prometheus.Counter
	RowsWritten      prometheus.Counter
	WriteFailures    prometheus.Counter
	WriteLatency     prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_messages_received_total",
			Help: "Total number of inbound messages handed to the ingest handler",
		}),
		PayloadsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_payload_rejected_total",
			Help: "Total number of messages whose payload could not be decoded",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_rows_written_total",
			Help: "Total number of rows successfully written",
		}),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_row_write_failures_total",
			Help: "Total number of row writes that failed after client retries",
		}),
		WriteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_row_write_seconds",
			Help:    "Time to write a single row, retries included",
			Buckets: prometheus.ExponentialBuckets(0.002, 2, 12),
		}),
	}

	reg.MustRegister(m.MessagesReceived, m.PayloadsRejected, m.RowsWritten, m.WriteFailures, m.WriteLatency)
	return m
}
