package domain

import "errors"

// ErrInvalidPayload matches every *PayloadError.
var ErrInvalidPayload = errors.New("invalid payload")

// PayloadError reports why an inbound message could not be turned into a Reading.
type PayloadError struct {
	Field  string
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PayloadError) Unwrap() error { return e.Err }

func (e *PayloadError) Is(target error) bool { return target == ErrInvalidPayload }
