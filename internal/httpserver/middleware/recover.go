package middleware

import (
	"fmt"
	"net/http"

	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

func Recover(logger *jsonlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					props := map[string]string{
						"request_id": GetRequestID(r.Context()),
						"method":     r.Method,
						"path":       r.URL.Path,
						"component":  "recover",
					}
					logger.PrintErrorWithTrace(errFromPanic(rec), props)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
				}
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

type panicError struct{ msg string }

func (e panicError) Error() string { return e.msg }

func errFromPanic(rec any) error {
	switch v := rec.(type) {
	case error:
		return v
	case string:
		return panicError{msg: v}
	default:
		return panicError{msg: fmt.Sprintf("panic: %v", v)}
	}
}
