package selectors

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/notification"
	"github.com/emersion/go-imap/v2"
	giimapclient "github.com/emersion/go-imap/v2/imapclient"
)

type ClientSelectors interface {
	SelectMailbox(ctx context.Context, mailbox string) (*imap.SelectData, error)
	FetchMessages(ctx context.Context, mailbox string, uids []uint32) ([]notification.Message, error)
}

// Interface to initialize the manager
type ClientProvider interface {
	IMAPClient() *giimapclient.Client
}

type IMAPSelectorManager struct {
	provider func() *giimapclient.Client
}

func New(provider ClientProvider) *IMAPSelectorManager {
	return &IMAPSelectorManager{provider: provider.IMAPClient}
}

// SelectMailbox selects a mailbox and returns its metadata.
func (c *IMAPSelectorManager) SelectMailbox(ctx context.Context, mailbox string) (*imap.SelectData, error) {
	if c.provider == nil || c.provider() == nil {
		return nil, errors.New("IMAP client is not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(mailbox) == "" {
		return nil, errors.New("mailbox is required")
	}
	return c.provider().Select(mailbox, nil).Wait()
}

// FetchMessages returns the envelope and text body of the provided UIDs in
// the selected mailbox, ordered by UID. Bodies are fetched with PEEK so
// reading a notification does not mark it seen.
func (c *IMAPSelectorManager) FetchMessages(ctx context.Context, mailbox string, uids []uint32) ([]notification.Message, error) {
	if c.provider == nil || c.provider() == nil {
		return nil, errors.New("IMAP client is not connected")
	}
	if len(uids) == 0 {
		return []notification.Message{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var uidSet imap.UIDSet
	for _, uid := range uids {
		uidSet.AddNum(imap.UID(uid))
	}

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	fetchOptions := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := c.provider().Fetch(uidSet, fetchOptions)
	rows := make([]notification.Message, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			_ = fetchCmd.Close()
			return nil, err
		}

		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		var envelope *imap.Envelope
		var raw []byte
		var uid uint32
		for {
			item := msg.Next()
			if item == nil {
				break
			}
			switch data := item.(type) {
			case giimapclient.FetchItemDataEnvelope:
				envelope = data.Envelope
			case giimapclient.FetchItemDataUID:
				uid = uint32(data.UID)
			case giimapclient.FetchItemDataBodySection:
				if data.Literal == nil {
					continue
				}
				body, err := io.ReadAll(data.Literal)
				if err == nil {
					raw = body
				}
			}
		}
		if envelope == nil {
			continue
		}

		from := []string{}
		for _, addr := range envelope.From {
			from = append(from, addr.Addr())
		}

		rows = append(rows, notification.Message{
			UID:       uid,
			Folder:    mailbox,
			MessageID: strings.TrimSpace(envelope.MessageID),
			From:      from,
			Subject:   strings.TrimSpace(envelope.Subject),
			Date:      envelope.Date,
			Body:      notification.SelectBody(raw),
		})
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].UID < rows[j].UID })
	return rows, nil
}
