package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sanjit42/naming-service/internal/bootstrap"
	"github.com/Sanjit42/naming-service/internal/service"
)

func newImportCmd(app *bootstrap.App) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk import interns from CSV",
	}

	fileCmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Import a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			out, err := app.Imports.ImportFile(cmd.Context(), filepath.Base(args[0]), f)
			return printOutcome(cmd.OutOrStdout(), out, err)
		},
	}

	textCmd := &cobra.Command{
		Use:   "text",
		Short: "Import CSV text read from stdin (CRLF separated lines)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			out, err := app.Imports.ImportText(cmd.Context(), string(data))
			return printOutcome(cmd.OutOrStdout(), out, err)
		},
	}

	importCmd.AddCommand(fileCmd, textCmd)
	return importCmd
}

// printOutcome prints the import result, also when the run was interrupted.
func printOutcome(w io.Writer, out *service.ImportOutcome, err error) error {
	if out != nil && out.Result != nil {
		if perr := printJSON(w, out.Result); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if !out.Result.HeaderAccepted {
		return fmt.Errorf("import rejected: invalid header %v", out.Result.InvalidHeader)
	}
	return nil
}
