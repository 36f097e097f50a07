package cli

import (
	"fmt"
	"time"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/sessionmanager"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/ledger"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/scanrunner"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the notification folder for new mail (IDLE)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgPath, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reloadEvery, err := cfg.Watch.ReloadInterval()
		if err != nil {
			return err
		}

		imapEnv, err := config.IMAPEnvFromEnv()
		if err != nil {
			return err
		}

		svc, err := newServices(cmd, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		reloadTicker := time.NewTicker(reloadEvery)
		defer reloadTicker.Stop()

		ctx := commandContext(cmd)

		updateCh := make(chan uint32, 1)
		client := newIMAPClient(imapEnv, sessionmanager.WithMailboxUpdates(updateCh))
		if err := client.Connect(); err != nil {
			return err
		}
		defer client.Close()

		deps, err := svc.scanDeps(client)
		if err != nil {
			return err
		}

		// catch up on anything that arrived while not watching
		state := &scanrunner.State{}
		if _, err := scanrunner.Run(ctx, deps, state); err != nil {
			return err
		}
		selection, err := client.SelectMailbox(ctx, deps.Folder)
		if err != nil {
			return err
		}
		state.LastCount = selection.NumMessages
		if selection.UIDNext > 0 {
			state.LastUID = uint32(selection.UIDNext - 1)
		}
		svc.log.Info("watching mailbox", "mailbox", deps.Folder, "messages", state.LastCount)

		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			idleCmd, err := client.Idle()
			if err != nil {
				svc.log.Warn("idle failed, reconnecting", "error", err)
				if _, err := scanrunner.Reconnect(ctx, deps, state); err != nil {
					return err
				}
				continue
			}
			select {
			case newCount := <-updateCh:
				_ = idleCmd.Close()
				if err := idleCmd.Wait(); err != nil && !scanrunner.IsBenignIdleError(err) {
					svc.log.Warn("idle ended with error, reconnecting", "error", err)
					if _, err := scanrunner.Reconnect(ctx, deps, state); err != nil {
						return err
					}
					continue
				}
				if newCount > state.LastCount {
					svc.log.Info("new mail detected", "messages", newCount)
					uids, err := client.SearchUIDsNewerThan(ctx, state.LastUID)
					if err != nil {
						return err
					}
					deps.RunID = ledger.NewRunID()
					if _, err := scanrunner.ProcessUIDs(ctx, deps, state, uids); err != nil {
						return err
					}
				}
				state.LastCount = newCount
				svc.log.Debug("ready for next update")
			case <-ctx.Done():
				_ = idleCmd.Close()
				_ = idleCmd.Wait()
				return ctx.Err()
			case <-reloadTicker.C:
				_ = idleCmd.Close()
				if err := idleCmd.Wait(); err != nil && !scanrunner.IsBenignIdleError(err) {
					svc.log.Warn("idle ended with error", "error", err)
				}
				updated, err := reloadWatchConfig(cfgPath)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "watch config reload failed: %v\n", err)
					continue
				}
				deps.Rules = updated.Rules
				deps.MarkSeen = updated.Mailbox.SeenAfterScan()
				deps.ArchiveFolder = updated.Mailbox.ArchiveFolder
				svc.log.Info("watch config reloaded", "rules", len(updated.Rules))
			}
		}
	},
}

func init() {
	addConfigFlags(watchCmd)
}

func reloadWatchConfig(cfgPath string) (config.Config, error) {
	updated, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(updated); err != nil {
		return config.Config{}, err
	}
	return updated, nil
}
