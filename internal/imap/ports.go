package imap

import (
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/actions"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/searches"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/selectors"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap/sessionmanager"
)

//go:generate mockgen -destination=../mock/mailbox.go -package=mock github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/imap Mailbox

// Mailbox is everything the scan and watch loops need from an IMAP session.
type Mailbox interface {
	sessionmanager.Session
	searches.ClientSearcher
	selectors.ClientSelectors
	actions.Actions
}

var _ Mailbox = (*Client)(nil)
