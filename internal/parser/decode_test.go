package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no escapes", in: "plain text, nothing to do", want: "plain text, nothing to do"},
		{name: "space escape", in: "Hello=20World", want: "Hello World"},
		{name: "soft break", in: "long=\nline", want: "longline"},
		{name: "soft break crlf", in: "long=\r\nline", want: "longline"},
		{name: "equals", in: "u=3Dhttps", want: "u=https"},
		{name: "newline escapes", in: "a=0D=0Ab", want: "a\r\nb"},
		{name: "tab", in: "a=09b", want: "a\tb"},
		{name: "lowercase hex", in: "a=2fb", want: "a/b"},
		{name: "punctuation", in: "=21=3F=40=5B=7E", want: "!?@[~"},
		{name: "unlisted escapes kept", in: "caf=C3=A9", want: "caf=C3=A9"},
		{name: "percent encoding untouched", in: "https%3A%2F%2Fwww.reddit.com", want: "https%3A%2F%2Fwww.reddit.com"},
		{name: "escape revealed by decoding", in: "=3D0A", want: "\n"},
		{name: "soft break revealed by decoding", in: "x=3D\ny", want: "xy"},
		{name: "dangling equals", in: "trailing =", want: "trailing ="},
		{name: "short escape", in: "=4", want: "=4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decode(tc.in))
		})
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"=3D0A",
		"=3D3D0A",
		"==0A",
		"=3D=\n0A",
		"u=3Dhttps%3A%2F%2Fwww.reddit.com%2Fr%2Fx=\n%2Fcomments",
		"If you redraw =2450,000 for debt recycling=2E",
		"=3D3D3D3D",
		"caf=C3=A9 =XY =",
	}

	for _, in := range inputs {
		once := Decode(in)
		assert.Equal(t, once, Decode(once), "input %q", in)
	}
}

func FuzzDecodeIdempotent(f *testing.F) {
	for _, seed := range []string{"=3D0A", "a=\r\nb", "=3D=3D2F", "=", "=\n", "=2f=2F=3d"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := Decode(in)
		if twice := Decode(once); twice != once {
			t.Fatalf("Decode not idempotent for %q: %q then %q", in, once, twice)
		}
	})
}
