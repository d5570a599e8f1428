package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigtable"
	"google.golang.org/api/option"

	"github.com/cun0/sensor-ingest/internal/config"
	"github.com/cun0/sensor-ingest/internal/domain"
)

const defaultRetryBackoff = 100 * time.Millisecond

// NewBigtableClient builds the process-wide data client. It is safe for
// concurrent use and must be closed on shutdown.
func NewBigtableClient(ctx context.Context, cfg config.BigtableConfig, opts ...option.ClientOption) (*bigtable.Client, error) {
	client, err := bigtable.NewClientWithConfig(ctx, cfg.Project, cfg.Instance, bigtable.ClientConfig{
		AppProfile: cfg.AppProfile,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigtable client %s/%s: %w", cfg.Project, cfg.Instance, err)
	}
	return client, nil
}

type BigtableRepo struct {
	table *bigtable.Table
	name  string
	retry RetryPolicy
}

func NewBigtableRepo(client *bigtable.Client, table string, maxRetries int) *BigtableRepo {
	return &BigtableRepo{
		table: client.Open(table),
		name:  table,
		retry: RetryPolicy{MaxRetries: maxRetries, Backoff: defaultRetryBackoff},
	}
}

// InsertRow writes every column of row with one client-side timestamp, which
// keeps the mutation idempotent across retries.
func (r *BigtableRepo) InsertRow(ctx context.Context, row domain.Row) error {
	ts := bigtable.Now()

	mut := bigtable.NewMutation()
	for _, c := range row.Columns {
		mut.Set(row.Family, c.Qualifier, ts, []byte(c.Value))
	}

	err := r.retry.do(ctx, func(ctx context.Context) error {
		return r.table.Apply(ctx, row.Key, mut)
	})
	if err != nil {
		return fmt.Errorf("bigtable insert into %s: %w", r.name, err)
	}
	return nil
}
