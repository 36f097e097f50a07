package imap

import (
	"context"
	"crypto/tls"
	"strings"
	"testing"
	"time"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/ftest"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/searches"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/sessionmanager"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/parser"
	"github.com/emersion/go-imap/v2"
	giimapclient "github.com/emersion/go-imap/v2/imapclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertBody = "F5Bot found something!\r\n" +
	"\r\n" +
	"Reddit Comments (/r/AusFinance/): 'Debt recycling question'\r\n" +
	"https://f5bot.com/url?u=3Dhttps%3A%2F%2Fwww.reddit.com%2Fr%2FAusFinance%2Fcomm=\r\n" +
	"ents%2Fabc123%2Fdebt_recycling_question%2Fxy9%2F&i=3D1\r\n" +
	"I have been thinking about debt recycling with my offset account and want to=\r\n" +
	" know if the loan interest is deductible.\r\n"

func notificationFixtures() []ftest.RawMessage {
	return []ftest.RawMessage{
		{
			Raw:  ftest.NotificationMessage("old@f5bot.com", "F5Bot found something: debt recycling", alertBody),
			Time: time.Now().Add(-72 * time.Hour),
		},
		{
			Raw:   ftest.NotificationMessage("seen@f5bot.com", "F5Bot found something: already read", alertBody),
			Flags: []imap.Flag{imap.FlagSeen},
		},
		{
			Raw: ftest.PlainMessage("News <news@example.com>", "Weekly digest", "Nothing to see here."),
		},
		{
			Raw: ftest.NotificationMessage("new@f5bot.com", "F5Bot found something: borrow to invest", alertBody),
		},
	}
}

func TestSearchNotificationsLocalServer(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, nil, nil, notificationFixtures())
	t.Cleanup(cleanup)

	uids := srv.UIDs
	cases := []struct {
		name     string
		query    searches.Query
		wantUIDs []uint32
	}{
		{
			name:     "everything",
			query:    searches.Query{},
			wantUIDs: uids,
		},
		{
			name:     "unseen only",
			query:    searches.Query{UnseenOnly: true},
			wantUIDs: []uint32{uids[0], uids[2], uids[3]},
		},
		{
			name:     "from substring",
			query:    searches.Query{FromSubstring: []string{"f5bot.com"}},
			wantUIDs: []uint32{uids[0], uids[1], uids[3]},
		},
		{
			name: "unseen from f5bot since yesterday",
			query: searches.Query{
				UnseenOnly:    true,
				FromSubstring: []string{"f5bot.com"},
				Since:         time.Now().Add(-24 * time.Hour),
			},
			wantUIDs: []uint32{uids[3]},
		},
		{
			name:     "either sender",
			query:    searches.Query{FromSubstring: []string{"f5bot.com", "news@example.com"}},
			wantUIDs: uids,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			t.Cleanup(cancel)

			got, err := client.SearchNotifications(ctx, tc.query)
			assert.NoError(t, err, "search error")
			assert.ElementsMatch(t, tc.wantUIDs, got, "unexpected matches")
		})
	}
}

func TestSearchUIDsNewerThanLocalServer(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, nil, nil, notificationFixtures())
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	got, err := client.SearchUIDsNewerThan(ctx, srv.UIDs[1])
	require.NoError(t, err)
	assert.Equal(t, []uint32{srv.UIDs[2], srv.UIDs[3]}, got)

	got, err = client.SearchUIDsNewerThan(ctx, srv.UIDs[3])
	require.NoError(t, err)
	assert.Empty(t, got, "highest uid must not be reported again")
}

func TestFetchMessagesLocalServer(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, nil, nil, notificationFixtures())
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	messages, err := client.FetchMessages(ctx, "INBOX", []uint32{srv.UIDs[3], srv.UIDs[2]})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, srv.UIDs[2], messages[0].UID, "messages are ordered by uid")
	assert.Equal(t, "Weekly digest", messages[0].Subject)
	assert.Equal(t, []string{"news@example.com"}, messages[0].From)

	alert := messages[1]
	assert.Equal(t, "INBOX", alert.Folder)
	assert.Equal(t, "new@f5bot.com", alert.ID())
	assert.Equal(t, []string{"admin@f5bot.com"}, alert.From)
	assert.Equal(t, "F5Bot found something: borrow to invest", alert.Subject)
	assert.False(t, alert.Date.IsZero(), "expected envelope date")
	assert.NotContains(t, alert.Body, "=\r\n", "quoted-printable soft breaks should be decoded")

	result, ok := parser.Resolve(alert.Subject, alert.Body)
	require.True(t, ok, "expected a reddit reference in %q", alert.Body)
	assert.Equal(t, "abc123", result.Reference.PostID)
	assert.Equal(t, "xy9", result.Reference.CommentID)
	assert.True(t, strings.Contains(result.Content.Body, "debt recycling"), "body %q", result.Content.Body)
}

func TestFetchMessagesEmpty(t *testing.T) {
	client, _, cleanup := setupTestServer(t, nil, nil, nil)
	t.Cleanup(cleanup)

	messages, err := client.FetchMessages(context.Background(), "INBOX", nil)
	assert.NoError(t, err)
	assert.Empty(t, messages)
}

func TestFetchMessagesDoesNotSetSeen(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, nil, nil, notificationFixtures())
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	uids := []uint32{srv.UIDs[0]}
	flagsBefore, err := fetchMessageFlags(ctx, client, uids)
	require.NoError(t, err)
	assert.False(t, containsFlag(flagsBefore, imap.FlagSeen), "expected unseen before fetch, got %v", flagsBefore)

	_, err = client.FetchMessages(ctx, "INBOX", uids)
	require.NoError(t, err)

	flagsAfter, err := fetchMessageFlags(ctx, client, uids)
	require.NoError(t, err)
	assert.False(t, containsFlag(flagsAfter, imap.FlagSeen), "expected unseen after fetch, got %v", flagsAfter)
}

func TestFetchMessagesReturnsErrorOnFetchFailure(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, nil, nil, notificationFixtures())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	cleanup()
	_, err := client.FetchMessages(ctx, "INBOX", srv.UIDs)
	if err == nil {
		t.Fatal("expected fetch error after server shutdown")
	}
}

func TestMarkSeenLocalServer(t *testing.T) {
	client, srv, cleanup := setupTestServer(t, nil, nil, notificationFixtures())
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	err := client.MarkSeen(ctx, []uint32{srv.UIDs[3]})
	require.NoError(t, err)

	flags, err := fetchMessageFlags(ctx, client, []uint32{srv.UIDs[3]})
	require.NoError(t, err)
	assert.True(t, containsFlag(flags, imap.FlagSeen), "expected \\Seen, got %v", flags)

	got, err := client.SearchNotifications(ctx, searches.Query{UnseenOnly: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{srv.UIDs[0], srv.UIDs[2]}, got)

	assert.NoError(t, client.MarkSeen(ctx, nil), "empty uid list is a no-op")
}

func TestMoveUIDsLocalServer(t *testing.T) {
	cases := []struct {
		name           string
		caps           imap.CapSet
		destination    string
		extraMailboxes []string
		expectError    bool
	}{
		{
			name:           "move-capability",
			destination:    "Processed",
			extraMailboxes: []string{"Processed"},
			caps: imap.CapSet{
				imap.CapIMAP4rev1: {},
				imap.CapMove:      {},
			},
		},
		{
			name:           "move-fallback",
			destination:    "Processed",
			extraMailboxes: []string{"Processed"},
		},
		{
			name:        "missing-destination",
			destination: "DoesNotExist",
			expectError: true,
		},
		{
			name:        "blank-destination",
			destination: "  ",
			expectError: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, srv, cleanup := setupTestServer(t, tc.caps, tc.extraMailboxes, notificationFixtures())
			t.Cleanup(cleanup)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			t.Cleanup(cancel)

			err := client.MoveUIDs(ctx, []uint32{srv.UIDs[3]}, tc.destination)
			if tc.expectError {
				assert.Error(t, err, "expected move error")
				return
			}
			require.NoError(t, err, "move error")

			remaining, err := client.SearchNotifications(ctx, searches.Query{FromSubstring: []string{"f5bot.com"}})
			require.NoError(t, err)
			assert.ElementsMatch(t, []uint32{srv.UIDs[0], srv.UIDs[1]}, remaining)

			_, err = client.SelectMailbox(ctx, tc.destination)
			require.NoError(t, err)
			moved, err := client.SearchNotifications(ctx, searches.Query{})
			require.NoError(t, err)
			assert.Len(t, moved, 1, "expected moved message in destination")
		})
	}
}

func TestSelectMailboxRequiresName(t *testing.T) {
	client, _, cleanup := setupTestServer(t, nil, nil, nil)
	t.Cleanup(cleanup)

	_, err := client.SelectMailbox(context.Background(), " ")
	assert.Error(t, err)
}

func TestOperationsRequireConnection(t *testing.T) {
	client := New()
	ctx := context.Background()

	_, err := client.SearchNotifications(ctx, searches.Query{})
	assert.Error(t, err)
	_, err = client.FetchMessages(ctx, "INBOX", []uint32{1})
	assert.Error(t, err)
	assert.Error(t, client.MarkSeen(ctx, []uint32{1}))
	_, err = client.Idle()
	assert.Error(t, err)
	assert.NoError(t, client.Close(), "closing an unconnected client is a no-op")
}

func setupTestServer(t *testing.T, caps imap.CapSet, extraMailboxes []string, messages []ftest.RawMessage) (*Client, *ftest.Server, func()) {
	t.Helper()

	srv, cleanup := ftest.SetupIMAPServer(t, caps, extraMailboxes, messages)

	client := New(
		sessionmanager.WithAddr(srv.Addr),
		sessionmanager.WithCreds(ftest.DefaultUser, ftest.DefaultPass),
		sessionmanager.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
	)
	if err := client.Connect(); err != nil {
		cleanup()
		t.Fatalf("connect: %v", err)
	}
	if _, err := client.SelectMailbox(context.Background(), "INBOX"); err != nil {
		cleanup()
		t.Fatalf("select inbox: %v", err)
	}

	return client, srv, func() {
		_ = client.Close()
		cleanup()
	}
}

func fetchMessageFlags(ctx context.Context, client *Client, uids []uint32) ([]imap.Flag, error) {
	var uidSet imap.UIDSet
	for _, uid := range uids {
		uidSet.AddNum(imap.UID(uid))
	}

	fetchOptions := &imap.FetchOptions{
		Flags: true,
	}

	fetchCmd := client.IMAPClient().Fetch(uidSet, fetchOptions)
	for {
		if err := ctx.Err(); err != nil {
			_ = fetchCmd.Close()
			return nil, err
		}
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		for {
			item := msg.Next()
			if item == nil {
				break
			}
			if data, ok := item.(giimapclient.FetchItemDataFlags); ok {
				flags := data.Flags
				_ = fetchCmd.Close()
				return flags, nil
			}
		}
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, err
	}
	return nil, nil
}

func containsFlag(flags []imap.Flag, target imap.Flag) bool {
	for _, flag := range flags {
		if flag == target {
			return true
		}
	}
	return false
}
