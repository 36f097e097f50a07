package notification

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
)

// Parsed is a MIME message reduced to what resolution needs.
type Parsed struct {
	MessageID string
	From      []string
	Subject   string
	Body      string
}

// Parse reads an RFC 5322 message. The body is the first inline text/plain
// part, else the first text/html part rendered as text. Input that is not a
// MIME message is returned whole as the body.
func Parse(raw []byte) (Parsed, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return Parsed{Body: string(raw)}, nil
	}
	defer mr.Close()

	out := Parsed{}
	out.Subject, _ = mr.Header.Subject()
	out.MessageID, _ = mr.Header.MessageID()
	if addrs, err := mr.Header.AddressList("From"); err == nil {
		for _, addr := range addrs {
			out.From = append(out.From, addr.Address)
		}
	}

	var plain, html string
	for plain == "" {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if plain == "" && html == "" {
				return out, errors.Wrap(err, "reading message part")
			}
			break
		}
		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if contentType == "" {
			contentType = "text/plain"
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			plain = string(body)
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = string(body)
		}
	}

	switch {
	case plain != "":
		out.Body = plain
	case html != "":
		out.Body = HTMLText(html)
	default:
		out.Body = rawBody(raw)
	}
	return out, nil
}

// SelectBody returns the text body of a raw message.
func SelectBody(raw []byte) string {
	parsed, err := Parse(raw)
	if err != nil {
		return rawBody(raw)
	}
	return parsed.Body
}

// HTMLText renders an HTML body as plain text. Links keep their target so
// the wrapped redirect URL survives: <a href="u">text</a> becomes "text (u)".
func HTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, head").Remove()
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" || text == href {
			s.ReplaceWithHtml(escapeText(href))
			return
		}
		s.ReplaceWithHtml(escapeText(text + " (" + href + ")"))
	})
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, tr, li, h1, h2, h3, h4, table").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && (len(kept) == 0 || kept[len(kept)-1] == "") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func escapeText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// rawBody drops the header block of a message that could not be parsed.
func rawBody(raw []byte) string {
	text := string(raw)
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if _, body, ok := strings.Cut(text, sep); ok {
			return body
		}
	}
	return text
}
