package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pipesched/internal/config"
	"pipesched/internal/conflict"
	"pipesched/internal/schedule"
)

func newInstallCmd(a *app) *cobra.Command {
	var resolveBin bool
	cmd := &cobra.Command{
		Use:   "install <config-path>",
		Short: "Install every schedule of a config (replacing same-named ones)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := config.LoadFrom(args[0])
			if err != nil {
				return err
			}
			// Commands are installed as written unless asked otherwise.
			list := rec.Schedules
			if resolveBin {
				list = make([]schedule.Schedule, 0, len(rec.Schedules))
				for _, s := range rec.Schedules {
					list = append(list, a.paths.Resolve(s))
				}
			}

			sch, err := a.scheduler()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rep, err := sch.InstallAll(cmd.Context(), list)
			if err != nil {
				var ce *conflict.Error
				if errors.As(err, &ce) {
					fmt.Fprintf(out, "Schedule conflict between %q and %q\n", ce.A, ce.B)
					fmt.Fprintf(out, "  %q runs at %s\n", ce.A, ce.AAt.HHMM())
					fmt.Fprintf(out, "  %q runs at %s\n", ce.B, ce.BAt.HHMM())
					fmt.Fprintf(out, "  Schedules must be more than %d minutes apart; nothing was installed.\n", conflict.Threshold)
				}
				return err
			}

			for _, res := range rep.Results {
				if res.Err != nil {
					fmt.Fprintf(out, "Failed to install schedule %s: %v\n", res.Name, res.Err)
					continue
				}
				fmt.Fprintf(out, "Installed schedule %s\n", res.Name)
			}
			if !rep.OK() {
				return fmt.Errorf("%d of %d schedules failed to install", len(rep.Failed()), len(rep.Results))
			}
			fmt.Fprintf(out, "All %d schedules installed via %s\n", len(rep.Results), sch.BackendName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&resolveBin, "resolve-bin", false, "prefix relative commands with <project-root>/bin/")
	return cmd
}
