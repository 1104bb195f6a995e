package schedule

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Clock is a local wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

var reClock = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})(?::(\d{2})(?:\.\d+)?)?\s*$`)

// At returns a Clock without validation; use ParseClock for untrusted input.
func At(hour, minute int) Clock { return Clock{Hour: hour, Minute: minute} }

// ParseClock accepts "HH:MM" and ISO "HH:MM:SS" (seconds are dropped).
func ParseClock(raw string) (Clock, error) {
	m := reClock.FindStringSubmatch(raw)
	if m == nil {
		return Clock{}, fmt.Errorf("invalid time %q (want HH:MM or HH:MM:SS)", raw)
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	if mm > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", raw)
	}
	if m[3] != "" {
		if ss, _ := strconv.Atoi(m[3]); ss > 59 {
			return Clock{}, fmt.Errorf("invalid second in %q", raw)
		}
	}
	return Clock{Hour: hh, Minute: mm}, nil
}

// MinuteOfDay returns the offset in minutes since local midnight.
func (c Clock) MinuteOfDay() int { return c.Hour*60 + c.Minute }

// HHMM formats as "15:04".
func (c Clock) HHMM() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// String formats as ISO "15:04:05", the form stored in documents.
func (c Clock) String() string { return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute) }

func (c Clock) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
