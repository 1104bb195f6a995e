package backend

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"pipesched/internal/schedule"
)

// standard five-field parser, no descriptors and no seconds
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronWeekday maps ISO weekday 1=Monday..7=Sunday to cron's 0=Sunday..6=Saturday.
func CronWeekday(isoDay int) int { return isoDay % 7 }

// checkSchedule validates the time and the type-dependent day range.
// maxInterval bounds every_x_days; 0 means unbounded.
func checkSchedule(s schedule.Schedule, maxInterval int) error {
	if s.Time.Hour < 0 || s.Time.Hour > 23 || s.Time.Minute < 0 || s.Time.Minute > 59 {
		return fmt.Errorf("%w: %q: time %s out of range", ErrInvalidSchedule, s.Name, s.Time.HHMM())
	}
	lo, hi := 1, 0
	switch s.Type {
	case schedule.EveryXDays:
		hi = maxInterval
	case schedule.Weekly:
		hi = 7
	case schedule.Monthly:
		hi = 31
	default:
		return fmt.Errorf("%w: %q: unknown type %q", ErrInvalidSchedule, s.Name, s.Type)
	}
	if s.Day < lo || (hi > 0 && s.Day > hi) {
		if hi == 0 {
			return fmt.Errorf("%w: %q: %s day must be >= %d, got %d", ErrInvalidSchedule, s.Name, s.Type, lo, s.Day)
		}
		return fmt.Errorf("%w: %q: %s day must be in %d..%d, got %d", ErrInvalidSchedule, s.Name, s.Type, lo, hi, s.Day)
	}
	return nil
}

// Expr returns the five-field crontab time expression for s.
//
// every_x_days uses the day-of-month step ("*/N"); it restarts at the first
// of each month, so it drifts when N does not divide the month length.
// monthly on day 29..31 does not fire in shorter months.
func Expr(s schedule.Schedule) (string, error) {
	if err := checkSchedule(s, 31); err != nil {
		return "", err
	}
	m, h := s.Time.Minute, s.Time.Hour

	var expr string
	switch s.Type {
	case schedule.EveryXDays:
		expr = fmt.Sprintf("%d %d */%d * *", m, h, s.Day)
	case schedule.Weekly:
		expr = fmt.Sprintf("%d %d * * %d", m, h, CronWeekday(s.Day))
	case schedule.Monthly:
		expr = fmt.Sprintf("%d %d %d * *", m, h, s.Day)
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return "", fmt.Errorf("%w: %q: generated %q: %v", ErrInvalidSchedule, s.Name, expr, err)
	}
	return expr, nil
}

// NextRun returns the next firing of a crontab expression after t, in t's location.
func NextRun(expr string, after time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}
