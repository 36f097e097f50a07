package parser

import "strings"

// safeEscapes maps the quoted-printable escapes that are decoded to their
// characters. Anything outside this table is left as written so that
// percent-encoded URL fragments sharing the =XX shape survive.
var safeEscapes = map[string]byte{
	"0A": '\n', "0D": '\r', "20": ' ', "09": '\t', "3D": '=',

	"21": '!', "22": '"', "23": '#', "24": '$', "25": '%',
	"26": '&', "27": '\'', "28": '(', "29": ')', "2A": '*',
	"2B": '+', "2C": ',', "2D": '-', "2E": '.', "2F": '/',
	"3A": ':', "3B": ';', "3C": '<', "3E": '>', "3F": '?',
	"40": '@', "5B": '[', "5C": '\\', "5D": ']', "5E": '^',
	"60": '`', "7B": '{', "7C": '|', "7D": '}', "7E": '~',
}

// Decode converts quoted-printable text to literal text, conservatively.
// Soft line breaks are removed, whitespace escapes and =3D are decoded, and
// other =XX escapes are decoded only for common ASCII punctuation.
//
// Escapes are collapsed as soon as they complete at the tail of the output,
// including escapes that only appear after an earlier one was decoded (=3D0A
// becomes a newline). The output therefore never holds a decodable sequence
// and Decode(Decode(s)) == Decode(s) for every s.
func Decode(text string) string {
	if !strings.Contains(text, "=") {
		return text
	}
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		out = collapseTail(append(out, text[i]))
	}
	return string(out)
}

func collapseTail(buf []byte) []byte {
	for {
		n := len(buf)
		switch {
		case n >= 2 && buf[n-2] == '=' && buf[n-1] == '\n':
			buf = buf[:n-2]
		case n >= 3 && buf[n-3] == '=' && buf[n-2] == '\r' && buf[n-1] == '\n':
			buf = buf[:n-3]
		case n >= 3 && buf[n-3] == '=' && isHex(buf[n-2]) && isHex(buf[n-1]):
			c, ok := safeEscapes[strings.ToUpper(string(buf[n-2:]))]
			if !ok {
				return buf
			}
			buf = append(buf[:n-3], c)
		default:
			return buf
		}
	}
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// stripTransportRemnants removes quoted-printable leftovers from a value that
// could not be percent-decoded as found.
func stripTransportRemnants(value string) string {
	return transportRemnants.Replace(value)
}

var transportRemnants = strings.NewReplacer(
	"=\r\n", "",
	"=\n", "",
	"=3D", "=",
	"=0A", "",
	"=0D", "",
)
