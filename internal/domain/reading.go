package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	ColumnTemperature = "temperature"
	ColumnPressure    = "pressure"
)

// Measurement is a sensor value in the string form it is stored with.
// Strings are kept verbatim, numbers are rendered in shortest decimal form.
type Measurement string

func (m *Measurement) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("empty value")
	}

	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Measurement(s)
		return nil

	case c == '-' || (c >= '0' && c <= '9'):
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return errors.New("invalid number")
		}
		*m = Measurement(formatNumber(f))
		return nil

	default:
		return errors.New("must be a number or a string")
	}
}

func (m Measurement) String() string { return string(m) }

// formatNumber renders f without exponent and without trailing zeros.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Reading is one decoded sensor message.
type Reading struct {
	DeviceID    string
	Temperature Measurement
	Pressure    Measurement
}

// ParseReading decodes a JSON reading. Every failure is a *PayloadError.
func ParseReading(raw []byte) (Reading, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Reading{}, &PayloadError{Reason: "must be a JSON object", Err: err}
	}

	var r Reading

	v, ok := present(fields, "device_id")
	if !ok {
		return Reading{}, &PayloadError{Field: "device_id", Reason: "is required"}
	}
	if err := json.Unmarshal(v, &r.DeviceID); err != nil {
		return Reading{}, &PayloadError{Field: "device_id", Reason: "must be a string", Err: err}
	}
	if strings.TrimSpace(r.DeviceID) == "" {
		return Reading{}, &PayloadError{Field: "device_id", Reason: "is required"}
	}

	if err := measurement(fields, ColumnTemperature, &r.Temperature); err != nil {
		return Reading{}, err
	}
	if err := measurement(fields, ColumnPressure, &r.Pressure); err != nil {
		return Reading{}, err
	}

	return r, nil
}

// present treats an explicit null like an absent field.
func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	v, ok := fields[name]
	if !ok || string(bytes.TrimSpace(v)) == "null" {
		return nil, false
	}
	return v, true
}

func measurement(fields map[string]json.RawMessage, name string, dst *Measurement) error {
	v, ok := present(fields, name)
	if !ok {
		return &PayloadError{Field: name, Reason: "is required"}
	}
	if err := dst.UnmarshalJSON(v); err != nil {
		return &PayloadError{Field: name, Reason: err.Error()}
	}
	return nil
}

// ToRow builds the storage row for r at time now.
func (r Reading) ToRow(family string, now time.Time) Row {
	return Row{
		Key:    BuildRowKey(r.DeviceID, now),
		Family: family,
		Columns: []Column{
			{Qualifier: ColumnTemperature, Value: r.Temperature.String()},
			{Qualifier: ColumnPressure, Value: r.Pressure.String()},
		},
	}
}

type Column struct {
	Qualifier string
	Value     string
}

// Row is a single wide-column row inside one column family.
type Row struct {
	Key     string
	Family  string
	Columns []Column
}

// Value returns the value of the named column.
func (r Row) Value(qualifier string) (string, bool) {
	for _, c := range r.Columns {
		if c.Qualifier == qualifier {
			return c.Value, true
		}
	}
	return "", false
}
