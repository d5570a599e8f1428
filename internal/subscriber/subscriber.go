package subscriber

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

// PayloadHandler receives the decoded bytes of a pulled message and calls
// done once the message is complete.
type PayloadHandler interface {
	HandlePayload(ctx context.Context, payload []byte, messageID string, done func()) error
}

// Subscriber pulls from one subscription. A completed message is acked,
// a message the handler returned an error for is nacked.
type Subscriber struct {
	sub     *pubsub.Subscription
	handler PayloadHandler
	logger  *jsonlog.Logger
}

func New(client *pubsub.Client, subscription string, maxOutstanding int, handler PayloadHandler, logger *jsonlog.Logger) *Subscriber {
	sub := client.Subscription(subscription)
	sub.ReceiveSettings.MaxOutstandingMessages = maxOutstanding

	return &Subscriber{
		sub:     sub,
		handler: handler,
		logger:  logger.With(map[string]string{"component": "pubsub_pull", "subscription": subscription}),
	}
}

// Run blocks until ctx is done or the subscription fails.
func (s *Subscriber) Run(ctx context.Context) error {
	s.logger.PrintInfo("receiving", nil)

	err := s.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if err := s.handler.HandlePayload(ctx, m.Data, m.ID, m.Ack); err != nil {
			m.Nack()
		}
	})
	if err != nil {
		return fmt.Errorf("receive %s: %w", s.sub.ID(), err)
	}

	s.logger.PrintInfo("stopped receiving", nil)
	return nil
}
