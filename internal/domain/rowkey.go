package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const rowKeySeparator = "#"

// BuildRowKey returns "<deviceID>#<md5 hex of the unix time in seconds>".
// The hash only spreads writes across tablets; it is not a uniqueness guarantee.
func BuildRowKey(deviceID string, now time.Time) string {
	sum := md5.Sum([]byte(UnixSeconds(now)))

	var b strings.Builder
	b.Grow(len(deviceID) + len(rowKeySeparator) + hex.EncodedLen(len(sum)))
	b.WriteString(deviceID)
	b.WriteString(rowKeySeparator)
	b.WriteString(hex.EncodeToString(sum[:]))
	return b.String()
}

// UnixSeconds renders t as fractional unix seconds at millisecond
// resolution, e.g. "1700000000.123", "1700000000.5" or "1700000000".
func UnixSeconds(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMilli())/1000, 'f', -1, 64)
}
