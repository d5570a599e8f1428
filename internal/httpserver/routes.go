package httpserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cun0/sensor-ingest/internal/httpserver/middleware"
	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

type Config struct {
	RequestTimeout time.Duration
}

func BuildHandler(cfg Config, logger *jsonlog.Logger, ingest EventHandler, gatherer prometheus.Gatherer) http.Handler {
	h := New(logger, ingest)

	mux := http.NewServeMux()

	// Pub/Sub caps push messages at 10MB including the envelope.
	const maxPushBody = 10 << 20

	mux.HandleFunc("/healthz", h.Healthz)

	mux.Handle("/pubsub/push",
		middleware.BodyLimit(maxPushBody)(
			http.HandlerFunc(h.PostPush),
		),
	)

	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.Timeout(cfg.RequestTimeout)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recover(logger)(handler)

	return handler
}
