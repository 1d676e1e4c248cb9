package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// FlexibleTime accepts either an RFC3339 timestamp or a bare YYYY-MM-DD date.
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	parsed, err := ParseFlexibleTime(raw)
	if err != nil {
		return err
	}
	f.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexibleTime) MarshalJSON() ([]byte, error) {
	if f.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.UTC().Format(time.RFC3339))
}

// ParseFlexibleTime parses RFC3339 first and falls back to a calendar date in UTC.
func ParseFlexibleTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339 or YYYY-MM-DD", value)
	}
	return t.UTC(), nil
}
