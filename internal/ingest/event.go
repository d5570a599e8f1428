package ingest

import (
	"encoding/base64"

	"github.com/cun0/sensor-ingest/internal/domain"
)

// InboundEvent is one pub/sub message as delivered to the handler.
type InboundEvent struct {
	// Data is the base64 encoded payload.
	Data       string
	MessageID  string
	Attributes map[string]string
}

// Payload returns the decoded bytes of Data.
func (e InboundEvent) Payload() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, &domain.PayloadError{Field: "data", Reason: "must be base64", Err: err}
	}
	return b, nil
}
