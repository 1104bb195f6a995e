// Package conflict detects schedules that would fire too close to each other.
//
// Several scheduled commands share one content index; two of them starting
// within Threshold minutes of each other race on it. The check works on the
// time of day only: the firing day is deliberately ignored, so a weekly and a
// monthly job at the same time conflict even if they never meet.
package conflict

import (
	"fmt"

	"pipesched/internal/schedule"
)

// Threshold is the minimum separation, in minutes, between two schedules.
const Threshold = 10

const minutesPerDay = 24 * 60

// Conflict is a pair of schedules closer than Threshold.
type Conflict struct {
	A, B     schedule.Schedule
	Distance int
}

// Err converts the conflict into an *Error.
func (c *Conflict) Err() error {
	if c == nil {
		return nil
	}
	return &Error{A: c.A.Name, AAt: c.A.Time, B: c.B.Name, BAt: c.B.Time, Distance: c.Distance}
}

// Error aborts an install before anything native is touched.
type Error struct {
	A, B     string
	AAt, BAt schedule.Clock
	Distance int
}

func (e *Error) Error() string {
	return fmt.Sprintf(
		"schedule conflict: %q runs at %s and %q runs at %s (%d min apart, need more than %d)",
		e.A, e.AAt.HHMM(), e.B, e.BAt.HHMM(), e.Distance, Threshold,
	)
}

// Distance is the circular distance between two minute-of-day offsets.
func Distance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= minutesPerDay
	if w := minutesPerDay - d; w < d {
		return w
	}
	return d
}

type offset struct {
	s   schedule.Schedule
	min int
}

// offsets yields one representative minute-of-day per schedule.
func offsets(list []schedule.Schedule) []offset {
	out := make([]offset, 0, len(list))
	for _, s := range list {
		switch s.Type {
		case schedule.EveryXDays, schedule.Weekly, schedule.Monthly:
			out = append(out, offset{s: s, min: s.Time.MinuteOfDay()})
		}
	}
	return out
}

// Detect returns the first pair of differently named schedules whose
// circular distance is at most Threshold, or nil.
func Detect(list []schedule.Schedule) *Conflict {
	offs := offsets(list)
	for i := 0; i < len(offs); i++ {
		for j := i + 1; j < len(offs); j++ {
			a, b := offs[i], offs[j]
			if a.s.Name == b.s.Name {
				continue
			}
			if d := Distance(a.min, b.min); d <= Threshold {
				return &Conflict{A: a.s, B: b.s, Distance: d}
			}
		}
	}
	return nil
}

// Check is Detect returning an error.
func Check(list []schedule.Schedule) error {
	return Detect(list).Err()
}
