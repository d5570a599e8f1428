package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/cun0/sensor-ingest/internal/config"
	"github.com/cun0/sensor-ingest/internal/simulator"
)

// RunPublisher publishes simulated readings for one device until SIGINT/SIGTERM.
func RunPublisher(version string) error {
	cfg, err := config.LoadPublisher()
	if err != nil {
		return err
	}

	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := pubsub.NewClient(ctx, cfg.Project)
	if err != nil {
		return fmt.Errorf("pubsub client: %w", err)
	}
	defer client.Close()

	sensor := simulator.NewRandomWalk(uint64(time.Now().UnixNano()))
	p := simulator.NewPublisher(client.Topic(cfg.Topic), cfg.DeviceID, sensor, logger)

	logger.PrintInfo("publisher started", map[string]string{
		"version":   version,
		"project":   cfg.Project,
		"topic":     cfg.Topic,
		"device_id": cfg.DeviceID,
		"interval":  cfg.Interval.String(),
	})

	return p.Run(ctx, cfg.Interval)
}
