package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholarmap/bibnet/internal/corpus"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id|id-prefix|title words>",
	Short: "Show a stored publication with its citing set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		d, err := OpenDatabase(cfg, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		p, err := ResolvePublication(ctx, d, strings.Join(args, " "))
		if err != nil {
			return err
		}
		citedBy, err := d.CitedBy(ctx, p.ID)
		if err != nil {
			return err
		}

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*corpus.Publication
				CitedBy []string `json:"cited_by"`
			}{p, citedBy})
		}

		fmt.Printf("\n  %s\n", p.Title)
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  ID:        %s\n", p.ID)
		fmt.Printf("  Kind:      %s\n", p.Kind)
		if p.Year > 0 {
			fmt.Printf("  Year:      %d\n", p.Year)
		} else {
			fmt.Println("  Year:      unknown")
		}
		if len(p.Authors) > 0 {
			fmt.Printf("  Authors:   %s\n", p.AuthorList())
		}
		fmt.Printf("  Citations: %d\n", p.CitationCount)
		if p.Hyperlink != "" {
			fmt.Printf("  Link:      %s\n", p.Hyperlink)
		}
		if p.Topic.Number != corpus.NoTopic {
			fmt.Printf("  Topic:     %d %s (%.2f)\n", p.Topic.Number, p.Topic.Label, p.Topic.Probability)
		}
		if p.Abstract != "" {
			fmt.Printf("\n  %s\n", truncTitle(p.Abstract, 400))
		}
		if len(p.CitingIDs) > 0 {
			fmt.Printf("\n  Citing set (%d):\n", len(p.CitingIDs))
			for _, id := range p.CitingIDs {
				fmt.Printf("    - %s\n", id)
			}
		}
		if len(citedBy) > 0 {
			fmt.Printf("\n  Listed by %d root publications:\n", len(citedBy))
			for _, id := range citedBy {
				fmt.Printf("    - %s\n", id)
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
}
