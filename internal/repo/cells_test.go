package repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cun0/sensor-ingest/internal/domain"
)

func TestBuildUpsertCellsSQL(t *testing.T) {
	row := domain.Row{
		Key:    "d1#abc",
		Family: "data",
		Columns: []domain.Column{
			{Qualifier: "temperature", Value: "21.5"},
			{Qualifier: "pressure", Value: "1012"},
		},
	}

	sql, args := buildUpsertCellsSQL(`"data"`, row)

	assert.Contains(t, sql, `INSERT INTO "data" (row_key, family, qualifier, value)`)
	assert.Contains(t, sql, "($1,$2,$3,$4),\n($5,$6,$7,$8)")
	assert.Contains(t, sql, "ON CONFLICT (row_key, family, qualifier)")
	assert.Equal(t, 1, strings.Count(sql, "ON CONFLICT"))
	assert.Equal(t, []any{
		"d1#abc", "data", "temperature", "21.5",
		"d1#abc", "data", "pressure", "1012",
	}, args)
}

func TestNewCellRepo_QuotesTableName(t *testing.T) {
	r := NewCellRepo(nil, `sensor"data`)

	assert.Equal(t, `"sensor""data"`, r.table)
}
