package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	vocabularyOpeners = `If you|When you|You can|This is|It is|I|We|They|The|In terms|Should aim`
	discourseOpeners  = `If you|When you|You can|This is|It is|I think|I believe|We|They|The|In terms|Should aim`
)

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`Reddit Comments[^:\n]*:\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`Reddit Comments[^:\n]*:[ \t]*([^\n]+)`),
	}

	embeddedURL   = regexp.MustCompile(`https?://\S+`)
	embeddedEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	leadingURL    = regexp.MustCompile(`(?i)^(?:https?://|www\.)`)
)

// rule is one step of the excerpt cascade. A rule yields at most one
// candidate per text: either a capture group of its pattern or, when window
// is set, the text that follows the match.
type rule struct {
	name       string
	pattern    *regexp.Regexp
	group      int
	window     int
	scrub      bool
	rejectLink bool
}

func buildRules(vocabulary []string) []rule {
	terms := make([]string, 0, len(vocabulary))
	for _, term := range vocabulary {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, regexp.QuoteMeta(term))
		}
	}

	rules := make([]rule, 0, 6)
	if len(terms) > 0 {
		rules = append(rules, rule{
			name: "vocabulary",
			pattern: regexp.MustCompile(`(?i)\b(?:` + vocabularyOpeners + `)\b[^.!?]*(?:` +
				strings.Join(terms, "|") + `)[^.!?]{20,400}[.!?]`),
		})
	}
	return append(rules,
		rule{
			name:    "opener",
			pattern: regexp.MustCompile(`(?i)\b(?:` + discourseOpeners + `)\b[^.!?]{30,600}[.!?]`),
		},
		rule{
			name:    "sentence",
			pattern: regexp.MustCompile(`[A-Z][^.!?]{100,600}[.!?]`),
		},
		rule{
			name:    "marker-sentence",
			pattern: regexp.MustCompile(`(?i)f5bot\.com[^\n]*\n\s*([A-Z][^.!?]{50,600}[.!?])`),
			group:   1,
		},
		rule{
			name:       "link-lines",
			pattern:    regexp.MustCompile(`(?i)(?:Reddit Comment|reddit\.com)[^\n]*\n\s*([^\n]+(?:\n[^\n]+){0,10})`),
			group:      1,
			rejectLink: true,
		},
		rule{
			name:    "marker-window",
			pattern: regexp.MustCompile(`(?:https://)?f5bot\.com/url\?u[=%][^\s)]*`),
			window:  2000,
			scrub:   true,
		},
	)
}

func (r rule) candidate(text string) (string, bool) {
	loc := r.pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	if r.window > 0 {
		end := min(loc[1]+r.window, len(text))
		for end > loc[1] && end < len(text) && !utf8.RuneStart(text[end]) {
			end--
		}
		out := text[loc[1]:end]
		if r.scrub {
			out = embeddedEmail.ReplaceAllString(embeddedURL.ReplaceAllString(out, ""), "")
		}
		return out, true
	}
	start, end := loc[2*r.group], loc[2*r.group+1]
	if start < 0 {
		return "", false
	}
	return text[start:end], true
}

// Extract picks the excerpt of a notification. Rules are tried in order,
// each against the decoded text and then the raw text; the first candidate
// that still holds enough text after footer removal wins. When no rule
// yields one, the title or, failing that, the subject with the head of the
// decoded body is returned.
func Extract(decoded, raw, subject string) Content {
	return defaultParser.Extract(decoded, raw, subject)
}

// Extract is the Parser form of the package-level Extract.
func (p *Parser) Extract(decoded, raw, subject string) Content {
	title := p.title(decoded, raw)
	if body, ok := p.excerpt(decoded, raw); ok {
		if title != "" && !strings.Contains(strings.ToLower(body), strings.ToLower(title)) {
			body = title + "\n\n" + body
		}
		return Content{Title: title, Body: body}
	}
	if title != "" {
		return Content{Title: title, Body: title}
	}
	return Content{Body: subject + "\n\n" + headRunes(decoded, p.fallbackLen)}
}

func (p *Parser) excerpt(decoded, raw string) (string, bool) {
	texts := searchOrder(decoded, raw)
	for _, r := range p.rules {
		for _, text := range texts {
			c, ok := r.candidate(text)
			if !ok {
				continue
			}
			if r.rejectLink && leadingURL.MatchString(strings.TrimSpace(c)) {
				continue
			}
			c = strings.TrimSpace(p.stripFooter(c))
			if utf8.RuneCountInString(c) >= p.minContentLen {
				return c, true
			}
		}
	}
	return "", false
}

func (p *Parser) title(decoded, raw string) string {
	for _, re := range titlePatterns {
		for _, text := range searchOrder(decoded, raw) {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if t := strings.TrimSpace(p.stripFooter(m[1])); t != "" {
				return t
			}
		}
	}
	return ""
}

// stripFooter truncates text at the earliest footer marker.
func (p *Parser) stripFooter(text string) string {
	if loc := p.footer.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}

func headRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
