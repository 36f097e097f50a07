package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolver, ledger stats and on-demand scans over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		svc, err := newServices(cmd, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		opts := []server.Option{
			server.WithParser(svc.parser),
			server.WithLedger(svc.ledger),
			server.WithLogger(svc.log),
		}
		if err := config.ValidateEnv(); err == nil {
			opts = append(opts, server.WithScan(svc.scanOnce))
		} else {
			svc.log.Warn("scan endpoint disabled", "error", err)
		}
		srv := server.New(opts...)

		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Server.ListenAddr()
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	addConfigFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr from config)")
}
