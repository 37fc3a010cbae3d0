package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	runsJSON  bool
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored analysis runs, or the cluster summaries of one run",
	Args:  cobra.MaximumNArgs(1),
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

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			sums, err := d.RunSummaries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if runsJSON {
				return enc.Encode(sums)
			}
			if len(sums) == 0 {
				fmt.Printf("No clusters stored for run %s\n", args[0])
				return nil
			}
			for _, s := range sums {
				fmt.Printf("  %3d  %-24s %-22s size=%-4d growth=%s impact=%s\n",
					s.ID, truncTitle(s.Name, 24), s.Type, s.Size, optional(s.GrowthIndex), optional(s.ImpactIndex))
			}
			return nil
		}

		runs, err := d.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if runsJSON {
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs (analyze with --format sqlite to store one).")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("  %s  %s  %-13s clusters=%-3d modularity=%.3f  window=%d-%d\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Oracle, r.Clusters, r.Modularity, r.MinYear, r.MaxYear)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Output as JSON")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
