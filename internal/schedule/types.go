package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the recurrence kind of a Schedule.
type Type string

const (
	// EveryXDays runs every Day days.
	EveryXDays Type = "every_x_days"
	// Weekly runs on ISO weekday Day (1=Monday..7=Sunday).
	Weekly Type = "weekly"
	// Monthly runs on day-of-month Day (1..31).
	Monthly Type = "monthly"
)

// ParseType coerces a textual tag into a Type.
func ParseType(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case EveryXDays:
		return EveryXDays, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown schedule type %q (want %s, %s or %s)", raw, EveryXDays, Weekly, Monthly)
	}
}

func (t Type) String() string { return string(t) }

func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("schedule type must be a string: %w", err)
	}
	v, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Schedule describes one recurring job.
//
// Name is the identity key used for replace/remove/list.
type Schedule struct {
	Name    string `json:"name"`
	Type    Type   `json:"type"`
	Day     int    `json:"day"`
	Time    Clock  `json:"time"`
	Command string `json:"command"`
	CatchUp bool   `json:"catch_up"`
}

// New builds a Schedule from raw fields, coercing the type tag.
func New(name, typ string, day int, at Clock, command string, catchUp bool) (Schedule, error) {
	t, err := ParseType(typ)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Name: name, Type: t, Day: day, Time: at, Command: command, CatchUp: catchUp}, nil
}

// UnmarshalJSON decodes strictly. Older documents wrote the type under
// "stype"; both keys are accepted but not together.
func (s *Schedule) UnmarshalJSON(b []byte) error {
	type wire struct {
		Name    string `json:"name"`
		Type    *Type  `json:"type"`
		SType   *Type  `json:"stype"`
		Day     int    `json:"day"`
		Time    *Clock `json:"time"`
		Command string `json:"command"`
		CatchUp bool   `json:"catch_up"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var w wire
	if err := dec.Decode(&w); err != nil {
		return err
	}

	var t *Type
	switch {
	case w.Type != nil && w.SType != nil:
		return fmt.Errorf("schedule %q: both type and stype set", w.Name)
	case w.Type != nil:
		t = w.Type
	case w.SType != nil:
		t = w.SType
	default:
		return fmt.Errorf("schedule %q: type required", w.Name)
	}
	if w.Time == nil {
		return fmt.Errorf("schedule %q: time required", w.Name)
	}

	*s = Schedule{
		Name:    w.Name,
		Type:    *t,
		Day:     w.Day,
		Time:    *w.Time,
		Command: w.Command,
		CatchUp: w.CatchUp,
	}
	return nil
}

func (s Schedule) String() string {
	return fmt.Sprintf("%s(%s day=%d at %s)", s.Name, s.Type, s.Day, s.Time.HHMM())
}
