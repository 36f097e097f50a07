package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartAlert = "From: F5Bot <admin@f5bot.com>\r\n" +
	"To: user@example.com\r\n" +
	"Subject: F5Bot found something: debt recycling\r\n" +
	"Message-ID: <alert-1@f5bot.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"If you redraw $50,000 for debt recycling you should track it separately fr=\r\n" +
	"om other loan balances.\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>html version</p>\r\n" +
	"--b1--\r\n"

func TestParsePrefersPlainText(t *testing.T) {
	parsed, err := Parse([]byte(multipartAlert))
	require.NoError(t, err)

	assert.Equal(t, "alert-1@f5bot.com", parsed.MessageID)
	assert.Equal(t, "F5Bot found something: debt recycling", parsed.Subject)
	assert.Equal(t, []string{"admin@f5bot.com"}, parsed.From)
	assert.Contains(t, parsed.Body, "separately from other loan balances.")
	assert.NotContains(t, parsed.Body, "html version")
}

func TestParseFallsBackToHTML(t *testing.T) {
	raw := "From: admin@f5bot.com\r\n" +
		"Subject: alert\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p { color: red }</style></head><body>" +
		"<p>Reddit Comments (/r/AusFinance): 'Offset'</p>" +
		"<p><a href=\"https://f5bot.com/url?u=https%3A%2F%2Fwww.reddit.com%2Fr%2Fx&amp;h=1\">Reddit Comment</a></p>" +
		"<script>var tracking = 1;</script></body></html>\r\n"

	body := SelectBody([]byte(raw))

	assert.Contains(t, body, "Reddit Comments (/r/AusFinance): 'Offset'")
	assert.Contains(t, body, "Reddit Comment (https://f5bot.com/url?u=https%3A%2F%2Fwww.reddit.com%2Fr%2Fx&h=1)")
	assert.NotContains(t, body, "tracking")
	assert.NotContains(t, body, "color")
}

func TestParseWithoutContentType(t *testing.T) {
	raw := "From: admin@f5bot.com\r\nSubject: alert\r\n\r\nplain body line\r\n"

	parsed, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "plain body line\r\n", parsed.Body)
}

func TestParseNotAMessage(t *testing.T) {
	raw := "just some pasted text without any headers"

	parsed, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, parsed.Body)
}

func TestHTMLText(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "bare link keeps target once",
			html: `<a href="https://reddit.com/r/x">https://reddit.com/r/x</a>`,
			want: "https://reddit.com/r/x",
		},
		{
			name: "line breaks",
			html: "first<br>second<br/>third",
			want: "first\nsecond\nthird",
		},
		{
			name: "paragraphs collapse whitespace",
			html: "<p>  one   two </p><p></p><p>three</p>",
			want: "one two\n\nthree",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, strings.TrimSpace(HTMLText(tc.html)))
		})
	}
}

func TestMessageID(t *testing.T) {
	assert.Equal(t, "abc@f5bot.com", Message{MessageID: "<abc@f5bot.com>"}.ID())
	assert.Equal(t, "INBOX:42", Message{Folder: "INBOX", UID: 42}.ID())
}
