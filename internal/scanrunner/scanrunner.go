// Package scanrunner turns fetched notification emails into ledger entries
// and operator announcements.
package scanrunner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/announcer"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/searches"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/ledger"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/matchers"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/notification"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/parser"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/scanrunner")

type Deps struct {
	Mailbox   imap.Mailbox
	Ledger    Ledger
	Announcer Announcer
	// Parser defaults to the package-level parser when nil.
	Parser  *parser.Parser
	Rules   []config.Rule
	Log     *slog.Logger
	Metrics *telemetry.Metrics

	Folder        string
	Query         searches.Query
	Limit         int
	MarkSeen      bool
	ArchiveFolder string
	RunID         string
	Now           func() time.Time
}

type State struct {
	LastUID   uint32
	LastCount uint32
}

// Summary counts what happened to each fetched message.
type Summary struct {
	RunID            string `json:"run_id"`
	Fetched          int    `json:"fetched"`
	Skipped          int    `json:"skipped"`
	Unmatched        int    `json:"unmatched"`
	Resolved         int    `json:"resolved"`
	Unresolved       int    `json:"unresolved"`
	AnnounceFailures int    `json:"announce_failures"`
}

// recorded counts the messages that were written to the ledger.
func (s Summary) recorded() int {
	return s.Resolved + s.Unresolved
}

func (s *Summary) add(other Summary) {
	s.Fetched += other.Fetched
	s.Skipped += other.Skipped
	s.Unmatched += other.Unmatched
	s.Resolved += other.Resolved
	s.Unresolved += other.Unresolved
	s.AnnounceFailures += other.AnnounceFailures
}

// Run selects the folder, searches for notifications and works through them
// oldest first until Limit of them have been recorded. Messages that are
// already in the ledger or match no rule do not count towards Limit.
func Run(ctx context.Context, deps Deps, state *State) (Summary, error) {
	ctx, span := tracer.Start(ctx, "scan")
	defer span.End()

	if err := validateDeps(deps); err != nil {
		return Summary{}, err
	}
	started := deps.now()
	defer func() {
		deps.Metrics.ScanDuration(ctx, deps.now().Sub(started))
	}()

	selection, err := deps.Mailbox.SelectMailbox(ctx, deps.Folder)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Summary{RunID: deps.RunID}, err
	}
	if state != nil {
		state.LastCount = selection.NumMessages
	}

	uids, err := deps.Mailbox.SearchNotifications(ctx, deps.Query)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Summary{RunID: deps.RunID}, err
	}
	deps.Log.Info("scan started", "folder", deps.Folder, "run_id", deps.RunID, "uids", len(uids))
	span.SetAttributes(attribute.Int("scan.uids", len(uids)))

	summary := Summary{RunID: deps.RunID}
	for pending := uids; len(pending) > 0; {
		n := len(pending)
		if deps.Limit > 0 {
			remaining := deps.Limit - summary.recorded()
			if remaining <= 0 {
				break
			}
			n = min(n, remaining)
		}
		batch := pending[:n]
		pending = pending[n:]

		outcome, err := ProcessUIDs(ctx, deps, state, batch)
		summary.add(outcome)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return summary, err
		}
	}
	deps.Log.Info("scan finished",
		"run_id", deps.RunID,
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"unmatched", summary.Unmatched,
		"resolved", summary.Resolved,
		"unresolved", summary.Unresolved,
		"announce_failures", summary.AnnounceFailures,
	)
	return summary, nil
}

// ProcessUIDs fetches uids from the selected folder and handles each
// message. Messages already in the ledger or matching no rule are skipped.
func ProcessUIDs(ctx context.Context, deps Deps, state *State, uids []uint32) (Summary, error) {
	summary := Summary{RunID: deps.RunID}
	if len(uids) == 0 {
		return summary, nil
	}
	messages, err := deps.Mailbox.FetchMessages(ctx, deps.Folder, uids)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(messages)
	deps.Log.Debug("fetched messages for processing", "messages", len(messages))

	handled := make([]uint32, 0, len(messages))
	for _, message := range messages {
		outcome, err := processMessage(ctx, deps, message)
		if err != nil {
			return summary, err
		}
		summary.add(outcome)
		if outcome.Unmatched == 0 {
			handled = append(handled, message.UID)
		}
	}

	if err := finish(ctx, deps, handled); err != nil {
		return summary, err
	}
	if state != nil {
		state.LastUID = maxUID(state.LastUID, uids)
		deps.Log.Debug("updated last uid", "last_uid", state.LastUID)
	}
	return summary, nil
}

func processMessage(ctx context.Context, deps Deps, message notification.Message) (Summary, error) {
	id := message.ID()
	log := deps.Log.With("email_id", id, "uid", message.UID)

	done, err := deps.Ledger.IsProcessed(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	if done {
		log.Debug("already processed")
		deps.Metrics.Skipped(ctx, "processed")
		return Summary{Skipped: 1}, nil
	}

	rule, ok, err := matchers.FirstMatch(deps.Rules, matchers.ClientMessage{
		Subject: message.Subject,
		From:    message.From,
		Body:    message.Body,
	})
	if err != nil {
		return Summary{}, err
	}
	if !ok {
		log.Info("no rule matched", "subject", message.Subject)
		deps.Metrics.Skipped(ctx, "unmatched")
		return Summary{Unmatched: 1}, nil
	}

	var (
		result parser.Result
		found  bool
	)
	if deps.Parser != nil {
		result, found = deps.Parser.Resolve(message.Subject, message.Body)
	} else {
		result, found = parser.Resolve(message.Subject, message.Body)
	}

	entry := ledger.Entry{
		EmailID:        id,
		RunID:          deps.RunID,
		Subject:        message.Subject,
		ReferenceFound: found,
		ProcessedAt:    deps.now().UTC(),
	}
	if found {
		entry.ReferenceURL = result.Reference.URL
		entry.PostID = result.Reference.PostID
		entry.CommentID = result.Reference.CommentID
		entry.Excerpt = result.Content.Body
	}
	if err := deps.Ledger.Record(ctx, entry); err != nil {
		return Summary{}, err
	}

	if !found {
		log.Info("no reddit reference found", "rule", rule, "subject", message.Subject)
		deps.Metrics.Unresolved(ctx, rule)
		return Summary{Unresolved: 1}, nil
	}

	log.Info("notification resolved",
		"rule", rule,
		"post_id", result.Reference.PostID,
		"comment_id", result.Reference.CommentID,
		"url", result.Reference.URL,
	)
	deps.Metrics.Resolved(ctx, rule)
	outcome := Summary{Resolved: 1}

	if deps.Announcer != nil {
		announcement := announcer.Resolved(
			message.Subject,
			result.Reference.URL,
			result.Reference.PostID,
			result.Reference.CommentID,
			result.Content.Body,
		)
		if err := deps.Announcer.Announce(ctx, announcement); err != nil {
			log.Error("announce failed", "error", err)
			outcome.AnnounceFailures = 1
		}
	}
	return outcome, nil
}

func finish(ctx context.Context, deps Deps, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	if deps.MarkSeen {
		if err := deps.Mailbox.MarkSeen(ctx, uids); err != nil {
			return err
		}
	}
	if strings.TrimSpace(deps.ArchiveFolder) != "" {
		if err := deps.Mailbox.MoveUIDs(ctx, uids, deps.ArchiveFolder); err != nil {
			return err
		}
		deps.Log.Info("archived messages", "folder", deps.ArchiveFolder, "count", len(uids))
	}
	return nil
}

// Reconnect re-establishes the session after an IDLE failure and catches up
// on anything that arrived while disconnected.
func Reconnect(ctx context.Context, deps Deps, state *State) (Summary, error) {
	_ = deps.Mailbox.Close()
	if err := deps.Mailbox.Connect(); err != nil {
		return Summary{}, err
	}
	selection, err := deps.Mailbox.SelectMailbox(ctx, deps.Folder)
	if err != nil {
		return Summary{}, err
	}
	deps.Log.Info("reconnected", "mailbox", deps.Folder, "messages", selection.NumMessages)
	uids, err := deps.Mailbox.SearchUIDsNewerThan(ctx, state.LastUID)
	if err != nil {
		return Summary{}, err
	}
	summary, err := ProcessUIDs(ctx, deps, state, uids)
	if err != nil {
		return summary, err
	}
	state.LastCount = selection.NumMessages
	return summary, nil
}

func IsBenignIdleError(err error) bool {
	if err == nil {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

func validateDeps(deps Deps) error {
	if deps.Mailbox == nil {
		return errors.New("mailbox is required")
	}
	if deps.Ledger == nil {
		return errors.New("ledger is required")
	}
	if deps.Log == nil {
		return errors.New("logger is required")
	}
	if strings.TrimSpace(deps.Folder) == "" {
		return errors.New("folder is required")
	}
	return nil
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func maxUID(current uint32, uids []uint32) uint32 {
	max := current
	for _, uid := range uids {
		if uid > max {
			max = uid
		}
	}
	return max
}
