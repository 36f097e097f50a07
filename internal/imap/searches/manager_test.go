package searches

import (
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
)

func TestBuildSearchCriteriaExcludesDeleted(t *testing.T) {
	criteria := buildSearchCriteria(Query{})

	if !hasFlag(criteria.NotFlag, imap.FlagDeleted) {
		t.Fatal("expected NotFlag to include \\Deleted")
	}
	if hasFlag(criteria.NotFlag, imap.FlagSeen) {
		t.Fatal("expected \\Seen to be excluded from NotFlag")
	}
	if !criteria.Since.IsZero() {
		t.Fatalf("expected no since bound, got %v", criteria.Since)
	}
}

func TestBuildSearchCriteriaUnseenOnly(t *testing.T) {
	criteria := buildSearchCriteria(Query{UnseenOnly: true})

	if !hasFlag(criteria.NotFlag, imap.FlagSeen) {
		t.Fatal("expected \\Seen to be included in NotFlag")
	}
}

func TestBuildSearchCriteriaSince(t *testing.T) {
	since := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	criteria := buildSearchCriteria(Query{Since: since})

	if !criteria.Since.Equal(since) {
		t.Fatalf("expected since %v, got %v", since, criteria.Since)
	}
}

func TestBuildSearchCriteriaFromSubstring(t *testing.T) {
	criteria := buildSearchCriteria(Query{FromSubstring: []string{"f5bot.com", "  "}})

	if len(criteria.Header) != 1 {
		t.Fatalf("expected 1 header criteria, got %d", len(criteria.Header))
	}
	if criteria.Header[0].Key != "From" || criteria.Header[0].Value != "f5bot.com" {
		t.Fatalf("unexpected header criteria %+v", criteria.Header[0])
	}
}

func TestBuildSearchCriteriaFromSubstringOr(t *testing.T) {
	criteria := buildSearchCriteria(Query{FromSubstring: []string{"f5bot.com", "alerts.example.com"}})

	if len(criteria.Or) != 1 {
		t.Fatalf("expected 1 OR criteria, got %d", len(criteria.Or))
	}
}

func hasFlag(flags []imap.Flag, want imap.Flag) bool {
	for _, flag := range flags {
		if flag == want {
			return true
		}
	}
	return false
}
