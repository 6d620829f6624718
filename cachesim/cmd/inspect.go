package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect DATABASE",
	Short: "List the tables of a recorded run and their sizes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		ctx := cmd.Context()

		tables, err := reader.ListTables(ctx)
		if err != nil {
			return err
		}

		for _, table := range tables {
			n, err := reader.Count(ctx, table)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", table, n)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
