package imap

import (
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/actions"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/searches"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/selectors"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/sessionmanager"
)

// Client encapsulates an IMAP connection for notification retrieval.
type Client struct {
	*sessionmanager.IMAPConnector
	*searches.IMAPSearchManager
	*actions.IMAPActionManager
	*selectors.IMAPSelectorManager
}

func New(opts ...sessionmanager.Option) *Client {
	session := sessionmanager.New(opts...)
	client := &Client{
		session,
		searches.New(session),
		actions.New(session),
		selectors.New(session),
	}
	return client
}
