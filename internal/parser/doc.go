// Package parser resolves F5Bot keyword-alert emails into the Reddit post or
// comment they point at, together with the excerpt of human-written text the
// alert was raised for.
//
// Resolution is a pure function of the subject and body: the body is decoded
// from quoted-printable once, the wrapped f5bot.com redirect (or a direct
// reddit.com permalink) is located and classified, and the excerpt is picked
// by an ordered cascade of sentence rules. Nothing in this package performs
// I/O, logs, or keeps state between calls, so a Parser may be shared freely
// between goroutines.
package parser
