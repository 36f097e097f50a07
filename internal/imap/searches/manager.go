package searches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	giimapclient "github.com/emersion/go-imap/v2/imapclient"
)

type ClientSearcher interface {
	SearchNotifications(ctx context.Context, query Query) ([]uint32, error)
	SearchUIDsNewerThan(ctx context.Context, lastUID uint32) ([]uint32, error)
}

// Query narrows a search of the selected mailbox.
type Query struct {
	UnseenOnly    bool
	Since         time.Time
	FromSubstring []string
}

// Interface to initialize the manager
type ClientProvider interface {
	IMAPClient() *giimapclient.Client
}

type IMAPSearchManager struct {
	provider func() *giimapclient.Client
}

func New(provider ClientProvider) *IMAPSearchManager {
	return &IMAPSearchManager{provider: provider.IMAPClient}
}

// SearchNotifications returns UIDs in the selected mailbox matching query,
// oldest first.
func (m *IMAPSearchManager) SearchNotifications(ctx context.Context, query Query) ([]uint32, error) {
	if m.provider == nil || m.provider() == nil {
		return nil, errors.New("IMAP client is not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := m.provider().UIDSearch(buildSearchCriteria(query), nil).Wait()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return toUint32(data.AllUIDs()), nil
}

func buildSearchCriteria(query Query) *imap.SearchCriteria {
	criteria := &imap.SearchCriteria{}
	criteria.NotFlag = append(criteria.NotFlag, imap.FlagDeleted)
	if query.UnseenOnly {
		criteria.NotFlag = append(criteria.NotFlag, imap.FlagSeen)
	}
	if !query.Since.IsZero() {
		criteria.Since = query.Since
	}

	senderCriteria := make([]imap.SearchCriteria, 0, len(query.FromSubstring))
	for _, value := range query.FromSubstring {
		if strings.TrimSpace(value) == "" {
			continue
		}
		senderCriteria = append(senderCriteria, imap.SearchCriteria{
			Header: []imap.SearchCriteriaHeaderField{{
				Key:   "From",
				Value: strings.TrimSpace(value),
			}},
		})
	}
	if combined := combineOr(senderCriteria); combined != nil {
		criteria.And(combined)
	}
	return criteria
}

func combineOr(criteria []imap.SearchCriteria) *imap.SearchCriteria {
	if len(criteria) == 0 {
		return nil
	}
	combined := criteria[0]
	for i := 1; i < len(criteria); i++ {
		combined = imap.SearchCriteria{
			Or: [][2]imap.SearchCriteria{{combined, criteria[i]}},
		}
	}
	return &combined
}

// SearchUIDsNewerThan returns UIDs greater than the provided last UID in the selected mailbox.
func (m *IMAPSearchManager) SearchUIDsNewerThan(ctx context.Context, lastUID uint32) ([]uint32, error) {
	if m.provider == nil || m.provider() == nil {
		return nil, errors.New("IMAP client is not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := imap.UID(lastUID + 1)
	var uidSet imap.UIDSet
	uidSet.AddRange(start, 0)
	criteria := &imap.SearchCriteria{
		UID: []imap.UIDSet{uidSet},
	}
	data, err := m.provider().UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, err
	}
	// n:* always matches the highest UID, even when it is not above n.
	out := make([]uint32, 0)
	for _, uid := range toUint32(data.AllUIDs()) {
		if uid > lastUID {
			out = append(out, uid)
		}
	}
	return out, nil
}

func toUint32(uids []imap.UID) []uint32 {
	out := make([]uint32, 0, len(uids))
	for _, uid := range uids {
		out = append(out, uint32(uid))
	}
	return out
}
