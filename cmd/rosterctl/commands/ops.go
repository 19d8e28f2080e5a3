package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sanjit42/naming-service/internal/bootstrap"
)

func newReindexCmd(app *bootstrap.App) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Copy every stored intern into the search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := app.Reindexer()
			if r == nil {
				return errors.New("no search index configured, run with --search elastic")
			}
			n, err := r.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d interns\n", n)
			return nil
		},
	}
}

func newWatchCmd(app *bootstrap.App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Import CSV files dropped into the inbox directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inbox, err := app.Inbox()
			if err != nil {
				return err
			}
			return inbox.Run(cmd.Context())
		},
	}
}

func newRunsCmd(app *bootstrap.App) *cobra.Command {
	var limit int

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded import runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.Imports.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), runs)
		},
	}
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	return runsCmd
}
