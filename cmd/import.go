package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scholarmap/bibnet/internal/ingest"
)

var importJSON bool

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.json>",
	Short: "Load a publication table into the database, replacing the stored corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		records, err := ingest.ReadFile(args[0])
		if err != nil {
			return err
		}

		d, err := OpenDatabase(cfg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		n, err := d.ImportPublications(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		logger.Info().
			Str("file", args[0]).
			Str("db", d.Path).
			Int("records", len(records)).
			Int("publications", n).
			Msg("corpus imported")

		if importJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"db": d.Path, "records": len(records), "publications": n})
		}
		fmt.Printf("Imported %d publications (%d records) into %s\n", n, len(records), d.Path)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(importCmd)
}
