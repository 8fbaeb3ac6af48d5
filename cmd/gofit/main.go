package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gofit",
		Short: "Train feed-forward models with best-checkpoint reload",
		Long: `gofit trains a configured model on a train/valid/test dataset,
checkpoints the best weights by a monitored metric, and reloads them
after training. Runs can be recorded to a SQLite run log.`,
		SilenceUsage: true,
	}

	root.AddCommand(newTrainCmd())
	root.AddCommand(newRunsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
