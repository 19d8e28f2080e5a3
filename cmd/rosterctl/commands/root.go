// Package commands implements the rosterctl command line.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/Sanjit42/naming-service/internal/bootstrap"
	"github.com/Sanjit42/naming-service/internal/config"
	"github.com/Sanjit42/naming-service/internal/search"
)

// New returns the root command. Every subcommand runs against app, wired
// from the environment before the first subcommand starts.
func New(app *bootstrap.App) *cobra.Command {
	var storeBackend, searchBackend string

	rootCmd := &cobra.Command{
		Use:          "rosterctl",
		Short:        "Import, search and export the intern roster",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Imports != nil {
				return nil
			}
			ctx := cmd.Context()
			app.LoadConfig(ctx)
			if storeBackend != "" {
				config.DefaultEnvConfig.STORE_BACKEND = storeBackend
			}
			if searchBackend != "" {
				config.DefaultEnvConfig.SEARCH_BACKEND = searchBackend
			}
			return app.Build(ctx)
		},
	}
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "store backend: postgres or memory (default from STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&searchBackend, "search", "", "search backend: store or elastic (default from SEARCH_BACKEND)")

	rootCmd.AddCommand(
		newImportCmd(app),
		newSearchCmd(app),
		newExportCmd(app),
		newReindexCmd(app),
		newWatchCmd(app),
		newRunsCmd(app),
	)
	return rootCmd
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// parseFilters turns name=value pairs into search filters.
func parseFilters(pairs []string) (search.Filters, error) {
	filters := search.Filters{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("filter %q is not name=value", p)
		}
		filters[strings.TrimSpace(name)] = value
	}
	return filters, nil
}

func searchTerm(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
