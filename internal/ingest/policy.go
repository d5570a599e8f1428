package ingest

import (
	"fmt"
	"strings"
)

// WriteFailurePolicy decides what a failed row write means to the transport.
type WriteFailurePolicy int

const (
	// AckOnWriteFailure logs the failure and still completes the message.
	// Readings lost this way are only visible in logs and metrics.
	AckOnWriteFailure WriteFailurePolicy = iota
	// NackOnWriteFailure leaves the message incomplete so it is redelivered.
	NackOnWriteFailure
)

func (p WriteFailurePolicy) String() string {
	switch p {
	case AckOnWriteFailure:
		return "ack"
	case NackOnWriteFailure:
		return "nack"
	default:
		return ""
	}
}

// ParseWriteFailurePolicy parses "ack" or "nack" (case-insensitive).
func ParseWriteFailurePolicy(s string) (WriteFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ack":
		return AckOnWriteFailure, nil
	case "nack":
		return NackOnWriteFailure, nil
	default:
		return AckOnWriteFailure, fmt.Errorf("invalid write failure policy %q (allowed: ack, nack)", s)
	}
}

// WriteError is returned by the handler when a row write fails under
// NackOnWriteFailure.
type WriteError struct {
	RowKey string
	Err    error
}

func (e *WriteError) Error() string {
	return "write row " + e.RowKey + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }
