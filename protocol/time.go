package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeFormat is the layout of timestamps returned by nodes. Times are UTC
// but carry no zone.
const TimeFormat = "2006-01-02T15:04:05"

// Time is a point in time with second resolution.
type Time struct {
	time.Time
}

// NewTime truncates t to seconds in UTC.
func NewTime(t time.Time) Time {
	return Time{t.UTC().Truncate(time.Second)}
}

// ParseTime parses a TimeFormat timestamp.
func ParseTime(s string) (Time, error) {
	t, err := time.ParseInLocation(TimeFormat, s, time.UTC)
	if err != nil {
		return Time{}, err
	}
	return Time{t}, nil
}

func (t Time) String() string {
	return t.UTC().Format(TimeFormat)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%T: expected JSON string", t)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return fmt.Errorf("%T: %w", t, err)
	}
	*t = parsed
	return nil
}

// MarshalBinary writes the unix time as a uint32.
func (t Time) MarshalBinary(enc *Encoder) {
	enc.Uint32(uint32(t.Unix()))
}
