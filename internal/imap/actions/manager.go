package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/emersion/go-imap/v2"
	giimapclient "github.com/emersion/go-imap/v2/imapclient"
)

type Actions interface {
	MarkSeen(ctx context.Context, uids []uint32) error
	MoveUIDs(ctx context.Context, uids []uint32, destination string) error
}

// Interface to initialize the manager
type ClientProvider interface {
	IMAPClient() *giimapclient.Client
}

type IMAPActionManager struct {
	provider func() *giimapclient.Client
}

func New(provider ClientProvider) *IMAPActionManager {
	return &IMAPActionManager{provider: provider.IMAPClient}
}

// MarkSeen adds the \Seen flag to messages in the selected mailbox.
func (c *IMAPActionManager) MarkSeen(ctx context.Context, uids []uint32) error {
	if c.provider == nil || c.provider() == nil {
		return errors.New("IMAP client is not connected")
	}
	if len(uids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	store := imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	return c.provider().Store(toUIDSet(uids), &store, nil).Close()
}

// MoveUIDs move messages to a different destination folder.
func (c *IMAPActionManager) MoveUIDs(ctx context.Context, uids []uint32, destination string) error {
	if c.provider == nil || c.provider() == nil {
		return errors.New("IMAP client is not connected")
	}
	if len(uids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(destination) == "" {
		return errors.New("destination mailbox is required")
	}

	if _, err := c.provider().Move(toUIDSet(uids), destination).Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func toUIDSet(uids []uint32) imap.UIDSet {
	var uidSet imap.UIDSet
	for _, uid := range uids {
		uidSet.AddNum(imap.UID(uid))
	}
	return uidSet
}
