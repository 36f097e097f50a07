package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/notification"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/parser"
	"github.com/spf13/cobra"
)

var errNoReference = errors.New("no reference found")

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve a single notification email and print the result as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		rawText, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return err
		}
		subject, err := cmd.Flags().GetString("subject")
		if err != nil {
			return err
		}

		p, err := resolveParser(cmd)
		if err != nil {
			return err
		}

		body := string(raw)
		if !rawText {
			parsed, err := notification.Parse(raw)
			if err != nil {
				return err
			}
			body = parsed.Body
			if strings.TrimSpace(subject) == "" {
				subject = parsed.Subject
			}
		}

		result, ok := p.Resolve(subject, body)
		if !ok {
			return errNoReference
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	resolveCmd.Flags().Bool("raw", false, "Treat input as a plain body rather than an RFC 5322 message")
	resolveCmd.Flags().String("subject", "", "Subject to use (defaults to the message Subject header)")
	resolveCmd.Flags().String("config", "", "Optional YAML config supplying parser settings")
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return raw, nil
}

// resolveParser honours parser settings from --config when one is given.
func resolveParser(cmd *cobra.Command) (*parser.Parser, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfgPath) == "" {
		return parser.New(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return newParser(cfg.Parser), nil
}
