package parser

import (
	"regexp"
	"strings"
)

// DefaultCommentIDMaxLen bounds the length of a trailing path segment that
// is still read as a comment id.
const DefaultCommentIDMaxLen = 20

// DefaultVocabulary is the set of domain terms that promotes a sentence ahead
// of generic prose.
var DefaultVocabulary = []string{
	"debt recycling",
	"borrow to invest",
	"loan",
	"redraw",
	"investment",
	"ETF",
	"tax deduct",
	"equity",
	"leveraged",
}

// DefaultFooterMarkers begin the boilerplate and sponsor blurbs F5Bot appends
// to its alerts. Matching is case-insensitive.
var DefaultFooterMarkers = []string{
	"Do you have comments",
	"RedPulse.io",
	"Want to advertise",
	"You are receiving",
	"IMPROVE YOUR AI SEARCH",
	"LaunchClub.ai",
	"40% of citations",
}

// Parser resolves notifications. Its pattern tables are built once in New and
// never modified, so one Parser can serve concurrent callers.
type Parser struct {
	commentIDMaxLen int
	minContentLen   int
	fallbackLen     int
	vocabulary      []string
	footerMarkers   []string

	rules  []rule
	footer *regexp.Regexp
}

// Option configures a Parser.
type Option func(*Parser)

// WithCommentIDMaxLen sets the exclusive upper bound on comment id length.
func WithCommentIDMaxLen(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.commentIDMaxLen = n
		}
	}
}

// WithMinContentLen sets the minimum number of characters an excerpt needs.
func WithMinContentLen(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.minContentLen = n
		}
	}
}

// WithFallbackLen sets how much of the decoded body the subject fallback keeps.
func WithFallbackLen(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.fallbackLen = n
		}
	}
}

// WithVocabulary replaces the domain terms of the vocabulary rule. An empty
// list disables that rule.
func WithVocabulary(terms ...string) Option {
	return func(p *Parser) {
		p.vocabulary = append([]string(nil), terms...)
	}
}

// WithFooterMarkers adds footer markers to the defaults.
func WithFooterMarkers(markers ...string) Option {
	return func(p *Parser) {
		for _, m := range markers {
			if m = strings.TrimSpace(m); m != "" {
				p.footerMarkers = append(p.footerMarkers, m)
			}
		}
	}
}

// New builds a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		commentIDMaxLen: DefaultCommentIDMaxLen,
		minContentLen:   50,
		fallbackLen:     500,
		vocabulary:      DefaultVocabulary,
		footerMarkers:   append([]string(nil), DefaultFooterMarkers...),
	}
	for _, opt := range opts {
		opt(p)
	}

	quoted := make([]string, len(p.footerMarkers))
	for i, m := range p.footerMarkers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	p.footer = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	p.rules = buildRules(p.vocabulary)
	return p
}

var defaultParser = New()

// Resolve decodes a notification body once, locates its reference and
// extracts its excerpt. It reports false when the body carries no usable
// Reddit reference.
func Resolve(subject, body string) (Result, bool) {
	return defaultParser.Resolve(subject, body)
}

// Resolve is the Parser form of the package-level Resolve.
func (p *Parser) Resolve(subject, body string) (Result, bool) {
	decoded := Decode(body)
	ref, ok := p.Locate(decoded, body)
	if !ok {
		return Result{}, false
	}
	return Result{
		Reference: ref,
		Content:   p.Extract(decoded, body, subject),
		Subject:   subject,
	}, true
}

// RuleNames lists the excerpt rules in the order they are tried.
func (p *Parser) RuleNames() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.name
	}
	return names
}
