package domain

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var rowKeyPattern = regexp.MustCompile(`^(.+)#([0-9a-f]{32})$`)

func TestUnixSeconds(t *testing.T) {
	tests := []struct {
		millis int64
		want   string
	}{
		{1700000000123, "1700000000.123"},
		{1700000000500, "1700000000.5"},
		{1700000000120, "1700000000.12"},
		{1700000000000, "1700000000"},
		{1, "0.001"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, UnixSeconds(time.UnixMilli(tt.millis)))
		})
	}
}

func TestBuildRowKey_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	key := BuildRowKey("rasp-bi-00", now)

	m := rowKeyPattern.FindStringSubmatch(key)
	if assert.NotNil(t, m, "row key %q has unexpected format", key) {
		assert.Equal(t, "rasp-bi-00", m[1])

		sum := md5.Sum([]byte("1700000000.123"))
		assert.Equal(t, hex.EncodeToString(sum[:]), m[2])
	}
}

func TestBuildRowKey_DeterministicForFixedClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 250*int(time.Millisecond), time.UTC)

	assert.Equal(t, BuildRowKey("d1", now), BuildRowKey("d1", now))
}

func TestBuildRowKey_SubMillisecondIgnored(t *testing.T) {
	base := time.UnixMilli(1700000000123)

	assert.Equal(t, BuildRowKey("d1", base), BuildRowKey("d1", base.Add(400*time.Microsecond)))
}

func TestBuildRowKey_AdvancingClock(t *testing.T) {
	base := time.UnixMilli(1700000000123)

	first := BuildRowKey("d1", base)
	second := BuildRowKey("d1", base.Add(time.Millisecond))

	assert.NotEqual(t, first, second)
}
