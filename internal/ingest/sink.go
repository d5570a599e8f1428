package ingest

import (
	"context"

	"github.com/cun0/sensor-ingest/internal/domain"
)

// RowWriter stores a single row. Implementations own their retry policy.
type RowWriter interface {
	InsertRow(ctx context.Context, row domain.Row) error
}
