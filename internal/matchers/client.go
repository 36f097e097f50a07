package matchers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/config"
)

type ClientMessage struct {
	Subject string
	From    []string
	Body    string
}

// MatchesClient returns true if the message satisfies all configured client matchers.
func MatchesClient(matchers *config.ClientMatchers, data ClientMessage) (bool, error) {
	if matchers == nil || matchers.IsEmpty() {
		return true, nil
	}
	checks := []struct {
		patterns []string
		values   []string
	}{
		{matchers.SubjectRegex, []string{data.Subject}},
		{matchers.SenderRegex, data.From},
		{matchers.BodyRegex, []string{data.Body}},
	}
	for _, check := range checks {
		if len(check.patterns) == 0 {
			continue
		}
		ok, err := matchAnyRegex(check.patterns, check.values...)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// FirstMatch returns the name of the first rule the message satisfies.
func FirstMatch(rules []config.Rule, data ClientMessage) (string, bool, error) {
	for _, rule := range rules {
		ok, err := MatchesClient(rule.Client, data)
		if err != nil {
			return "", false, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		if ok {
			return rule.Name, true, nil
		}
	}
	return "", false, nil
}

func matchAnyRegex(patterns []string, values ...string) (bool, error) {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("invalid regex %q: %w", pattern, err)
		}
		for _, value := range values {
			if re.MatchString(value) {
				return true, nil
			}
		}
	}
	return false, nil
}
