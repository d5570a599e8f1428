package simulator

import (
	"context"
	"io"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cun0/sensor-ingest/internal/domain"
	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

type fixedSensor struct{ temperature, pressure float64 }

func (s fixedSensor) Temperature() float64 { return s.temperature }
func (s fixedSensor) Pressure() float64    { return s.pressure }

func newTopic(t *testing.T) (*pstest.Server, *pubsub.Topic) {
	t.Helper()
	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := pubsub.NewClient(ctx, "proj", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "readings")
	require.NoError(t, err)
	return srv, topic
}

func TestPublisher_PublishOnce(t *testing.T) {
	srv, topic := newTopic(t)
	p := NewPublisher(topic, "rasp-bi-00", fixedSensor{21.5, 1012}, jsonlog.New(io.Discard, jsonlog.LevelInfo))

	id, err := p.PublishOnce(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"device_id":"rasp-bi-00","temperature":21.5,"pressure":1012}`, string(msgs[0].Data))

	r, err := domain.ParseReading(msgs[0].Data)
	require.NoError(t, err)
	assert.Equal(t, "21.5", r.Temperature.String())
	assert.Equal(t, "1012", r.Pressure.String())
}

func TestPublisher_RunStopsOnCancel(t *testing.T) {
	srv, topic := newTopic(t)
	p := NewPublisher(topic, "d1", NewRandomWalk(1), jsonlog.New(io.Discard, jsonlog.LevelInfo))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool { return len(srv.Messages()) >= 3 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestRandomWalk_StaysInRange(t *testing.T) {
	s := NewRandomWalk(42)
	for i := 0; i < 10_000; i++ {
		temp := s.Temperature()
		pressure := s.Pressure()
		require.GreaterOrEqual(t, temp, -40.0)
		require.LessOrEqual(t, temp, 85.0)
		require.GreaterOrEqual(t, pressure, 300.0)
		require.LessOrEqual(t, pressure, 1100.0)
	}
}
