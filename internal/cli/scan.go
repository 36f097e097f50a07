package cli

import (
	"encoding/json"
	"fmt"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Resolve pending F5Bot notifications once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.ValidateEnv(); err != nil {
			return err
		}

		jsonOut, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		svc, err := newServices(cmd, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		summary, err := svc.scanOnce(commandContext(cmd))
		if err != nil {
			return err
		}

		if jsonOut {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(summary)
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"run %s: fetched=%d resolved=%d unresolved=%d skipped=%d unmatched=%d announce_failures=%d\n",
			summary.RunID,
			summary.Fetched,
			summary.Resolved,
			summary.Unresolved,
			summary.Skipped,
			summary.Unmatched,
			summary.AnnounceFailures,
		)
		return nil
	},
}

func init() {
	addConfigFlags(scanCmd)
	scanCmd.Flags().Bool("json", false, "Print the run summary as JSON")
}
