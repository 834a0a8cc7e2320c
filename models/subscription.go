package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Subscription is the push subscription blob handed out by the client's push
// service. Its shape belongs to the provider; the server only checks that it
// is a JSON object and stores it verbatim.
type Subscription []byte

var ErrInvalidSubscription = errors.New("subscription must be a JSON object")

// ParseSubscription validates raw request JSON and returns a compacted copy.
func ParseSubscription(raw []byte) (Subscription, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidSubscription
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, ErrInvalidSubscription
	}
	if buf.String() == "{}" {
		return nil, ErrInvalidSubscription
	}
	return Subscription(buf.Bytes()), nil
}

func (s Subscription) IsZero() bool {
	return len(s) == 0
}

func (s Subscription) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

func (s *Subscription) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	parsed, err := ParseSubscription(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the blob as TEXT; an empty subscription becomes NULL.
func (s Subscription) Value() (driver.Value, error) {
	if s.IsZero() {
		return nil, nil
	}
	return string(s), nil
}

func (s *Subscription) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case string:
		*s = Subscription(v)
	case []byte:
		*s = append(Subscription(nil), v...)
	default:
		return fmt.Errorf("cannot scan %T into Subscription", src)
	}
	return nil
}
