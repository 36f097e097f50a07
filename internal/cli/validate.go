package cli

import (
	"fmt"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file and print a summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Summary(cfg))

		requireEnv, err := cmd.Flags().GetBool("require-env")
		if err != nil {
			return err
		}
		if err := config.ValidateEnv(); err != nil {
			if requireEnv {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		return nil
	},
}

func init() {
	addConfigFlags(validateCmd)
	validateCmd.Flags().Bool("require-env", false, "Fail when IMAP environment variables are missing")
}
