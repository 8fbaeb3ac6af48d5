package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gofitml/gofit/runlog"
)

func newRunsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runlog.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMODEL\tSTATUS\tEPOCHS\tSTARTED")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					run.ID, run.Model, run.Status, run.Epochs,
					run.StartedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "runs.db", "path to the run log database")

	return cmd
}
