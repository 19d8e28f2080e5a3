package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sanjit42/naming-service/internal/bootstrap"
	"github.com/Sanjit42/naming-service/pkg/rosterexcel"
)

func newSearchCmd(app *bootstrap.App) *cobra.Command {
	var filterPairs []string

	searchCmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search interns by free text and filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(filterPairs)
			if err != nil {
				return err
			}
			interns, err := app.Roster.Search(cmd.Context(), searchTerm(args), filters)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), interns)
		},
	}
	searchCmd.Flags().StringArrayVarP(&filterPairs, "filter", "f", nil, "filter as name=value, repeatable")
	return searchCmd
}

func newExportCmd(app *bootstrap.App) *cobra.Command {
	var filterPairs []string
	var outPath string

	exportCmd := &cobra.Command{
		Use:   "export [term]",
		Short: "Export matching interns to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(filterPairs)
			if err != nil {
				return err
			}
			interns, err := app.Roster.Search(cmd.Context(), searchTerm(args), filters)
			if err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()

			if err := rosterexcel.WriteInterns(f, app.Layout, interns); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d interns to %s\n", len(interns), outPath)
			return nil
		},
	}
	exportCmd.Flags().StringArrayVarP(&filterPairs, "filter", "f", nil, "filter as name=value, repeatable")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "roster.xlsx", "output file")
	return exportCmd
}
