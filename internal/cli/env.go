package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const configEnvVar = "REDDITBOT_CONFIG"
const defaultEnvFile = ".env"

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to YAML config file (or set REDDITBOT_CONFIG)")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")
}

func resolveConfigPath(cmd *cobra.Command) (string, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfgPath) == "" {
		cfgPath = os.Getenv(configEnvVar)
	}
	if strings.TrimSpace(cfgPath) == "" {
		return "", errors.New("config path is required via --config or REDDITBOT_CONFIG")
	}
	return cfgPath, nil
}

func loadEnvFile() error {
	if _, err := os.Stat(defaultEnvFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(defaultEnvFile)
}

// loadConfig resolves, loads and validates the config file for cmd.
func loadConfig(cmd *cobra.Command) (string, config.Config, error) {
	cfgPath, err := resolveConfigPath(cmd)
	if err != nil {
		return "", config.Config{}, err
	}
	if err := loadEnvFile(); err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return "", config.Config{}, err
	}
	return cfgPath, cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
