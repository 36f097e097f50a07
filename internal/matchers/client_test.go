package matchers

import (
	"testing"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
)

func TestMatchesClientSubjectRegex(t *testing.T) {
	matchers := &config.ClientMatchers{
		SubjectRegex: []string{`(?i)f5bot found something`},
	}
	data := ClientMessage{
		Subject: "F5Bot found something: debt recycling",
	}

	ok, err := MatchesClient(matchers, data)
	if err != nil {
		t.Fatalf("match client: %v", err)
	}
	if !ok {
		t.Fatal("expected subject_regex to match subject")
	}
}

func TestMatchesClientSenderRegexAnyAddress(t *testing.T) {
	matchers := &config.ClientMatchers{
		SenderRegex: []string{`@f5bot\.com$`},
	}
	data := ClientMessage{
		From: []string{"someone@example.com", "admin@f5bot.com"},
	}

	ok, err := MatchesClient(matchers, data)
	if err != nil {
		t.Fatalf("match client: %v", err)
	}
	if !ok {
		t.Fatal("expected sender_regex to match one of the senders")
	}
}

func TestMatchesClientRequiresEveryList(t *testing.T) {
	matchers := &config.ClientMatchers{
		SenderRegex: []string{`@f5bot\.com$`},
		BodyRegex:   []string{`f5bot\.com/url`},
	}
	data := ClientMessage{
		From: []string{"admin@f5bot.com"},
		Body: "no redirect in here",
	}

	ok, err := MatchesClient(matchers, data)
	if err != nil {
		t.Fatalf("match client: %v", err)
	}
	if ok {
		t.Fatal("expected sender_regex and body_regex to require both matches")
	}
}

func TestMatchesClientEmptyMatchesEverything(t *testing.T) {
	ok, err := MatchesClient(nil, ClientMessage{Subject: "anything"})
	if err != nil {
		t.Fatalf("match client: %v", err)
	}
	if !ok {
		t.Fatal("expected nil matchers to match")
	}
}

func TestMatchesClientInvalidRegex(t *testing.T) {
	matchers := &config.ClientMatchers{
		SubjectRegex: []string{`(unclosed`},
	}

	if _, err := MatchesClient(matchers, ClientMessage{Subject: "x"}); err == nil {
		t.Fatal("expected invalid regex error")
	}
}

func TestFirstMatch(t *testing.T) {
	rules := []config.Rule{
		{Name: "newsletter", Client: &config.ClientMatchers{SenderRegex: []string{`news@`}}},
		{Name: "f5bot", Client: &config.ClientMatchers{SenderRegex: []string{`@f5bot\.com$`}}},
	}

	name, ok, err := FirstMatch(rules, ClientMessage{From: []string{"admin@f5bot.com"}})
	if err != nil {
		t.Fatalf("first match: %v", err)
	}
	if !ok || name != "f5bot" {
		t.Fatalf("expected f5bot rule, got %q (%v)", name, ok)
	}

	if _, ok, _ := FirstMatch(rules, ClientMessage{From: []string{"friend@example.com"}}); ok {
		t.Fatal("expected no rule to match")
	}
}
