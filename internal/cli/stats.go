package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/ledger"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print processed-notification statistics from the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		limit, err := cmd.Flags().GetInt("recent")
		if err != nil {
			return err
		}
		jsonOut, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		store, err := ledger.Open(cfg.Ledger.DSN())
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := commandContext(cmd)
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		recent := []ledger.Entry{}
		if limit > 0 {
			recent, err = store.Recent(ctx, limit)
			if err != nil {
				return err
			}
		}

		if jsonOut {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(struct {
				Stats  ledger.Stats   `json:"stats"`
				Recent []ledger.Entry `json:"recent"`
			}{stats, recent})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed: %d\nreferences found: %d\nrelevant: %d\nposted: %d\n",
			stats.Total, stats.ReferencesFound, stats.Relevant, stats.Posted)
		if len(recent) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROCESSED\tEMAIL\tPOST\tCOMMENT")
		for _, entry := range recent {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				entry.ProcessedAt.Format("2006-01-02 15:04"),
				entry.EmailID,
				dashIfEmpty(entry.PostID),
				dashIfEmpty(entry.CommentID),
			)
		}
		return w.Flush()
	},
}

func init() {
	addConfigFlags(statsCmd)
	statsCmd.Flags().Int("recent", 10, "Number of recent entries to list")
	statsCmd.Flags().Bool("json", false, "Print as JSON")
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
