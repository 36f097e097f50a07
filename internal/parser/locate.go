package parser

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const redirectValue = `([^&\s"'<>)\]]+)`

var (
	// redirectPatterns find the u= parameter of the f5bot.com redirect in its
	// known encodings, strictest first.
	redirectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`https://f5bot\.com/url\?u=` + redirectValue),
		regexp.MustCompile(`https://f5bot\.com/url\?u=3D` + redirectValue),
		regexp.MustCompile(`https://f5bot\.com/url\?u%3D` + redirectValue),
		regexp.MustCompile(`f5bot\.com/url\?u=` + redirectValue),
		regexp.MustCompile(`f5bot\.com/url\?u=(?:3D)?` + redirectValue),
	}

	directPermalink = regexp.MustCompile(`https?://(?:www\.|old\.|new\.)?reddit\.com/r/\w+/comments/[^\s)"'<>]+`)
	barePermalink   = regexp.MustCompile(`reddit\.com/r/\w+/comments/[^\s)"'<>]+`)

	replyPath = regexp.MustCompile(`/r/\w+/comments/(\w+)(?:/[^/]+)?/c/(\w+)`)
	// The trailing token must fill its whole path segment.
	postPath = regexp.MustCompile(`/r/\w+/comments/(\w+)(?:/[^/]+)?(?:/(\w+)(?:/|$))?`)
)

// Locate finds the Reddit reference in a notification. The decoded text is
// searched before the raw text for every pattern. It reports false when no
// redirect or permalink classifies as a post.
func Locate(decoded, raw string) (Reference, bool) {
	return defaultParser.Locate(decoded, raw)
}

// Locate is the Parser form of the package-level Locate.
func (p *Parser) Locate(decoded, raw string) (Reference, bool) {
	texts := searchOrder(decoded, raw)
	for _, re := range redirectPatterns {
		for _, text := range texts {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			return p.classify(unwrapRedirect(m[1]))
		}
	}
	for _, text := range texts {
		if link := directPermalink.FindString(text); link != "" {
			return p.classify(link)
		}
	}
	for _, text := range texts {
		if link := barePermalink.FindString(text); link != "" {
			return p.classify("https://" + link)
		}
	}
	return Reference{}, false
}

// unwrapRedirect percent-decodes the redirect target. A value that does not
// decode is cleaned of transport remnants and retried, and used verbatim if
// it still fails.
func unwrapRedirect(value string) string {
	if rest, ok := strings.CutPrefix(value, "3D"); ok && strings.HasPrefix(rest, "http") {
		value = rest
	}
	if target, err := url.PathUnescape(value); err == nil {
		return target
	}
	cleaned := stripTransportRemnants(value)
	if target, err := url.PathUnescape(cleaned); err == nil {
		return target
	}
	return cleaned
}

// classify matches ids against the link without its query or fragment; the
// returned URL keeps them.
func (p *Parser) classify(link string) (Reference, bool) {
	link = strings.TrimRight(link, trailingPunctuation)
	path := canonicalLink(link)
	if m := replyPath.FindStringSubmatch(path); m != nil {
		return Reference{URL: link, PostID: m[1], CommentID: m[2], IsComment: true}, true
	}
	m := postPath.FindStringSubmatch(path)
	if m == nil {
		return Reference{}, false
	}
	ref := Reference{URL: link, PostID: m[1]}
	if token := m[2]; p.looksLikeCommentID(token) {
		ref.CommentID = token
		ref.IsComment = true
	}
	return ref, true
}

// looksLikeCommentID accepts the word token after the slug as a comment id
// when it is short.
func (p *Parser) looksLikeCommentID(token string) bool {
	return token != "" && utf8.RuneCountInString(token) < p.commentIDMaxLen
}

const trailingPunctuation = ".,;:!"

func canonicalLink(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	return strings.TrimRight(link, trailingPunctuation)
}

func searchOrder(decoded, raw string) []string {
	if decoded == raw {
		return []string{decoded}
	}
	return []string{decoded, raw}
}
