package scheduler

import (
	"time"

	"pipesched/internal/backend"
	"pipesched/internal/schedule"
)

// PlanRow previews how one schedule maps onto cron time.
type PlanRow struct {
	Schedule schedule.Schedule
	// Expr is the crontab expression; on launchd it describes the trigger
	// in the same notation.
	Expr string
	Next time.Time
	Err  error
}

// Plan translates every schedule without touching the backend.
//
// For every_x_days Next follows the day-of-month step, which is what the
// crontab backend installs; launchd's wrapper may skip that day.
func Plan(list []schedule.Schedule, now time.Time) []PlanRow {
	rows := make([]PlanRow, 0, len(list))
	for _, s := range list {
		row := PlanRow{Schedule: s}
		row.Expr, row.Err = backend.Expr(s)
		if row.Err == nil {
			row.Next, row.Err = backend.NextRun(row.Expr, now)
		}
		rows = append(rows, row)
	}
	return rows
}
