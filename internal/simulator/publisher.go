package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

type readingMessage struct {
	DeviceID    string  `json:"device_id"`
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
}

// Publisher sends one reading per tick for a single device.
type Publisher struct {
	topic    *pubsub.Topic
	deviceID string
	sensor   Sensor
	logger   *jsonlog.Logger
}

func NewPublisher(topic *pubsub.Topic, deviceID string, sensor Sensor, logger *jsonlog.Logger) *Publisher {
	return &Publisher{
		topic:    topic,
		deviceID: deviceID,
		sensor:   sensor,
		logger:   logger.With(map[string]string{"component": "publisher", "device_id": deviceID}),
	}
}

// PublishOnce samples the sensor and waits for the server to accept the message.
func (p *Publisher) PublishOnce(ctx context.Context) (string, error) {
	msg := readingMessage{
		DeviceID:    p.deviceID,
		Temperature: p.sensor.Temperature(),
		Pressure:    p.sensor.Pressure(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	id, err := p.topic.Publish(ctx, &pubsub.Message{Data: data}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", p.topic.ID(), err)
	}

	p.logger.PrintInfo("message published", map[string]string{
		"message_id":  id,
		"temperature": strconv.FormatFloat(msg.Temperature, 'f', -1, 64),
		"pressure":    strconv.FormatFloat(msg.Pressure, 'f', -1, 64),
	})
	return id, nil
}

// Run publishes every interval until ctx is done. Failed publishes are
// logged and the loop continues.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.PublishOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.PrintError(err, nil)
		}

		select {
		case <-ctx.Done():
			p.topic.Stop()
			return nil
		case <-ticker.C:
		}
	}
}
