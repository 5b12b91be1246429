package timeutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is the wire form of a point in time. Documents store RFC3339
// strings; in memory the value behaves like a plain time.Time. A null or
// empty wire value round-trips as the zero Timestamp.
type Timestamp struct {
	time.Time
}

// At wraps a time.Time in a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTime parses an RFC3339 wire value.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatTime renders v in the wire format.
func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(fmt.Sprintf("%q", t.UTC().Format(time.RFC3339Nano))), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
