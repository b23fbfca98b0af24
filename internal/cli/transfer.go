package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/berrythewa/clipstash/internal/ipc"
	"github.com/berrythewa/clipstash/pkg/utils"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export text and URL history as JSON",
		Long: `Export the history as a JSON document. Images are not exported.
Without a file, the document is written to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if _, err := a.send(cmd.Context(), ipc.CmdExport, nil, &data); err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := utils.WriteFileAtomic(args[0], data, 0600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History exported to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON export into the history",
		Long: `Merge entries from a JSON export ahead of the current history.
Entries already present are skipped. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}

			var res ipc.ImportResult
			resp, err := a.send(cmd.Context(), ipc.CmdImport, ipc.ImportArgs{Data: data}, &res)
			if err != nil {
				return err
			}
			if a.useJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
