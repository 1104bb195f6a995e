package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pipesched/internal/config"
	"pipesched/internal/scheduler"
)

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <config-path>",
		Short: "Show how a config would be scheduled, without installing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := config.LoadFrom(args[0])
			if err != nil {
				return err
			}
			now := time.Now()
			rows := make([][]interface{}, 0, len(rec.Schedules))
			var bad int
			for _, r := range scheduler.Plan(rec.Schedules, now) {
				s := r.Schedule
				if r.Err != nil {
					bad++
					rows = append(rows, []interface{}{s.Name, s.Type, s.Day, s.Time.HHMM(), "-", r.Err.Error()})
					continue
				}
				next := r.Next.Format("Mon 2006-01-02 15:04") + " (" + humanize.RelTime(now, r.Next, "ago", "from now") + ")"
				rows = append(rows, []interface{}{s.Name, s.Type, s.Day, s.Time.HHMM(), r.Expr, next})
			}
			out := cmd.OutOrStdout()
			renderTable(out, []string{"Schedule", "Type", "Day", "Time", "Cron", "Next run"}, rows)

			if err := scheduler.Preflight(rec.Schedules); err != nil {
				fmt.Fprintf(out, "install would be rejected: %v\n", err)
				return err
			}
			if bad > 0 {
				return fmt.Errorf("%d schedules cannot be translated", bad)
			}
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <config-path>",
		Short: "Write the built-in default config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Default(a.paths).SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
