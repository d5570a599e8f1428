package ingest

import (
	"context"
	"time"

	"github.com/cun0/sensor-ingest/internal/domain"
	"github.com/cun0/sensor-ingest/internal/jsonlog"
	"github.com/cun0/sensor-ingest/internal/observability"
)

type Config struct {
	ColumnFamily   string
	WriteTimeout   time.Duration
	OnWriteFailure WriteFailurePolicy
}

// Handler turns one inbound message into one stored row.
// It holds no per-message state and is safe for concurrent use.
type Handler struct {
	writer  RowWriter
	cfg     Config
	logger  *jsonlog.Logger
	metrics *observability.Metrics
	clock   func() time.Time
}

func NewHandler(writer RowWriter, cfg Config, logger *jsonlog.Logger, metrics *observability.Metrics) *Handler {
	if cfg.ColumnFamily == "" {
		cfg.ColumnFamily = "data"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	return &Handler{
		writer:  writer,
		cfg:     cfg,
		logger:  logger.With(map[string]string{"component": "ingest_handler"}),
		metrics: metrics,
		clock:   time.Now,
	}
}

// WithClock replaces the clock used for row keys.
func (h *Handler) WithClock(clock func() time.Time) *Handler {
	h.clock = clock
	return h
}

// Handle decodes ev and stores it, then calls done.
//
// Payload errors are returned before any write and done is not called.
// Write errors are logged; under AckOnWriteFailure done is still called
// and Handle returns nil.
func (h *Handler) Handle(ctx context.Context, ev InboundEvent, done func()) error {
	h.metrics.MessagesReceived.Inc()

	payload, err := ev.Payload()
	if err != nil {
		h.reject(err, ev.MessageID)
		return err
	}
	return h.handle(ctx, payload, ev.MessageID, done)
}

// HandlePayload is Handle for transports that deliver already decoded bytes.
func (h *Handler) HandlePayload(ctx context.Context, payload []byte, messageID string, done func()) error {
	h.metrics.MessagesReceived.Inc()
	return h.handle(ctx, payload, messageID, done)
}

func (h *Handler) handle(ctx context.Context, payload []byte, messageID string, done func()) error {
	reading, err := domain.ParseReading(payload)
	if err != nil {
		h.reject(err, messageID)
		return err
	}

	row := reading.ToRow(h.cfg.ColumnFamily, h.clock())

	if err := h.insert(ctx, row); err != nil {
		h.metrics.WriteFailures.Inc()
		h.logger.PrintError(err, map[string]string{
			"device_id":  reading.DeviceID,
			"row_key":    row.Key,
			"message_id": messageID,
			"policy":     h.cfg.OnWriteFailure.String(),
		})

		if h.cfg.OnWriteFailure == NackOnWriteFailure {
			return &WriteError{RowKey: row.Key, Err: err}
		}
	} else {
		h.metrics.RowsWritten.Inc()
		h.logger.PrintDebug("row written", map[string]string{
			"row_key":    row.Key,
			"message_id": messageID,
		})
	}

	done()
	return nil
}

func (h *Handler) insert(ctx context.Context, row domain.Row) error {
	// bounded context so a stuck backend cannot hold the message forever
	ctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := h.writer.InsertRow(ctx, row)
	h.metrics.WriteLatency.Observe(time.Since(start).Seconds())
	return err
}

func (h *Handler) reject(err error, messageID string) {
	h.metrics.PayloadsRejected.Inc()
	h.logger.PrintInfo("payload rejected", map[string]string{
		"error":      err.Error(),
		"message_id": messageID,
	})
}
