package cli

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/announcer"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/searches"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/sessionmanager"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/ledger"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/parser"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/scanrunner"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/telemetry"
	"github.com/spf13/cobra"
)

// services bundles what the long-running commands build from one config.
type services struct {
	cfg       config.Config
	log       *slog.Logger
	telemetry *telemetry.Provider
	metrics   *telemetry.Metrics
	ledger    *ledger.Store
	parser    *parser.Parser
	announcer scanrunner.Announcer
}

func newServices(cmd *cobra.Command, cfg config.Config) (*services, error) {
	ctx := commandContext(cmd)
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	provider, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: telemetry.DefaultServiceName,
		DSN:         config.TelemetryDSN(),
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry setup: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := provider.NewLogger(cmd.ErrOrStderr(), level)

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	store, err := ledger.Open(cfg.Ledger.DSN())
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	return &services{
		cfg:       cfg,
		log:       log,
		telemetry: provider,
		metrics:   metrics,
		ledger:    store,
		parser:    newParser(cfg.Parser),
		announcer: announcer.New(announcer.WithWebhookURL(config.WebhookURL())),
	}, nil
}

func (r *services) Close() {
	_ = r.ledger.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.telemetry.Shutdown(ctx); err != nil {
		r.log.Warn("telemetry shutdown failed", "error", err)
	}
}

// scanDeps wires one scan against mailbox.
func (r *services) scanDeps(mailbox imap.Mailbox) (scanrunner.Deps, error) {
	since, err := r.cfg.Mailbox.Since(time.Now())
	if err != nil {
		return scanrunner.Deps{}, err
	}
	return scanrunner.Deps{
		Mailbox:   mailbox,
		Ledger:    r.ledger,
		Announcer: r.announcer,
		Parser:    r.parser,
		Rules:     r.cfg.Rules,
		Log:       r.log,
		Metrics:   r.metrics,
		Folder:    r.cfg.Mailbox.FolderName(),
		Query: searches.Query{
			UnseenOnly:    r.cfg.Mailbox.OnlyUnseen(),
			Since:         since,
			FromSubstring: r.cfg.Mailbox.FromSubstring,
		},
		Limit:         r.cfg.Mailbox.FetchLimit(),
		MarkSeen:      r.cfg.Mailbox.SeenAfterScan(),
		ArchiveFolder: r.cfg.Mailbox.ArchiveFolder,
		RunID:         ledger.NewRunID(),
	}, nil
}

// scanOnce connects, runs a single scan and disconnects.
func (r *services) scanOnce(ctx context.Context) (scanrunner.Summary, error) {
	imapEnv, err := config.IMAPEnvFromEnv()
	if err != nil {
		return scanrunner.Summary{}, err
	}
	client := newIMAPClient(imapEnv)
	if err := client.Connect(); err != nil {
		return scanrunner.Summary{}, err
	}
	defer client.Close()

	deps, err := r.scanDeps(client)
	if err != nil {
		return scanrunner.Summary{}, err
	}
	return scanrunner.Run(ctx, deps, nil)
}

func newIMAPClient(env config.IMAPEnv, opts ...sessionmanager.Option) *imap.Client {
	opts = append([]sessionmanager.Option{
		sessionmanager.WithAddr(env.Addr()),
		sessionmanager.WithCreds(env.User, env.Pass),
		sessionmanager.WithTLSConfig(&tls.Config{ServerName: env.Host, MinVersion: tls.VersionTLS12}),
	}, opts...)
	return imap.New(opts...)
}

func newParser(opts config.ParserOptions) *parser.Parser {
	var popts []parser.Option
	if opts.CommentIDMaxLen > 0 {
		popts = append(popts, parser.WithCommentIDMaxLen(opts.CommentIDMaxLen))
	}
	if opts.MinContentLen > 0 {
		popts = append(popts, parser.WithMinContentLen(opts.MinContentLen))
	}
	if len(opts.Vocabulary) > 0 {
		popts = append(popts, parser.WithVocabulary(opts.Vocabulary...))
	}
	if len(opts.FooterMarkers) > 0 {
		popts = append(popts, parser.WithFooterMarkers(opts.FooterMarkers...))
	}
	return parser.New(popts...)
}
