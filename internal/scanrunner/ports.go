package scanrunner

import (
	"context"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/announcer"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/ledger"
)

//go:generate mockgen -destination=../mock/scanrunner.go -package=mock github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/scanrunner Ledger,Announcer

type Ledger interface {
	IsProcessed(ctx context.Context, emailID string) (bool, error)
	Record(ctx context.Context, entry ledger.Entry) error
}

type Announcer interface {
	Announce(ctx context.Context, a announcer.Announcement) error
}
