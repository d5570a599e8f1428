package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cun0/sensor-ingest/internal/config"
	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

// Serve runs the HTTP server until ctx is done, then calls onShutdown and
// drains in-flight requests.
func Serve(ctx context.Context, cfg config.HTTPConfig, logger *jsonlog.Logger, handler http.Handler, onShutdown func(context.Context) error) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ErrorLog:          log.New(logger, "", 0),
		IdleTimeout:       60 * time.Second,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	shutdownError := make(chan error, 1)

	go func() {
		<-ctx.Done()

		logger.PrintInfo("shutting down server", map[string]string{
			"reason": context.Cause(ctx).Error(),
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Stop background consumers first
		if onShutdown != nil {
			if err := onShutdown(shutdownCtx); err != nil {
				logger.PrintError(err, map[string]string{
					"component": "shutdown_hook",
				})
			}
		}

		shutdownError <- srv.Shutdown(shutdownCtx)
	}()

	logger.PrintInfo("starting server", map[string]string{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Wait for shutdown result.
	if err := <-shutdownError; err != nil {
		return err
	}

	logger.PrintInfo("stopped server", map[string]string{
		"addr": srv.Addr,
	})

	return nil
}
