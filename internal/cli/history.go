package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scheduler operations from the audit store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openAudit()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if st == nil {
				fmt.Fprintln(out, "Audit store disabled")
				return nil
			}
			entries, err := st.RecentAudit(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No operations recorded")
				return nil
			}
			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				status := "ok"
				if !e.OK {
					status = "FAILED: " + e.Error
				}
				rows = append(rows, []interface{}{humanize.Time(e.At), e.Action, e.Target, e.Backend, status})
			}
			renderTable(out, []string{"When", "Action", "Target", "Backend", "Status"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
