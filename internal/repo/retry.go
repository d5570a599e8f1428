package repo

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryPolicy bounds the transient-error retries of a storage client.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// do runs op until it succeeds, fails with a non-transient error, the retry
// budget is spent or ctx is done. Backoff grows linearly per attempt.
func (p RetryPolicy) do(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op(ctx)
		if err == nil || attempt >= p.MaxRetries || !transient(ctx, err) {
			return err
		}

		wait := time.NewTimer(p.Backoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			wait.Stop()
			return errors.Join(err, ctx.Err())
		case <-wait.C:
		}
	}
}

func transient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Aborted, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
