package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <schedule-name>",
		Short: "Remove one managed schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := a.scheduler()
			if err != nil {
				return err
			}
			if err := sch.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s removed\n", args[0])
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List managed schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := a.scheduler()
			if err != nil {
				return err
			}
			names, err := sch.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No managed schedules found")
				return nil
			}
			rows := make([][]interface{}, 0, len(names))
			for _, n := range names {
				rows = append(rows, []interface{}{n, sch.BackendName()})
			}
			renderTable(out, []string{"Schedule", "Backend"}, rows)
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every managed schedule, leaving other entries alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := a.scheduler()
			if err != nil {
				return err
			}
			if err := sch.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All managed schedules cleared")
			return nil
		},
	}
}
