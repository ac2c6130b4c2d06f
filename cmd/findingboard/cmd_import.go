package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"findingboard/internal/app"
	"findingboard/internal/config"
)

var importFlags struct {
	from []string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the spreadsheet into the SQLite findings table",
	Long: `Read the findings spreadsheet (.xlsx or .csv) and replace the contents
of the SQLite findings table at db_path. Serve from it with data_source: sqlite.

Without --from, the first existing path in data_paths is used.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringArrayVar(&importFlags.from, "from", nil, "Source file to import (repeatable; first existing wins)")
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	n, err := app.Import(cmd.Context(), cfg, importFlags.from)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows into %s\n", n, cfg.DBPath)
	return nil
}
