package ftest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	giimapserver "github.com/emersion/go-imap/v2/imapserver"
	giimapmemserver "github.com/emersion/go-imap/v2/imapserver/imapmemserver"
)

const (
	DefaultUser = "user@example.com"
	DefaultPass = "password"

	F5BotSender = "F5Bot <admin@f5bot.com>"
)

// RawMessage is appended verbatim to Mailbox (INBOX when empty).
type RawMessage struct {
	Mailbox string
	Raw     string
	Time    time.Time
	Flags   []imap.Flag
}

// Server is a running in-memory IMAP server.
type Server struct {
	Addr string
	// UIDs of the appended messages, in append order.
	UIDs []uint32

	user *giimapmemserver.User
}

// Append adds a message after the server has started.
func (s *Server) Append(t *testing.T, msg RawMessage) uint32 {
	t.Helper()
	return appendRaw(t, s.user, msg)
}

func SetupIMAPServer(t *testing.T, caps imap.CapSet, extraMailboxes []string, messages []RawMessage) (*Server, func()) {
	t.Helper()

	tlsConfig := testTLSConfig(t)
	mem := giimapmemserver.New()
	user := giimapmemserver.NewUser(DefaultUser, DefaultPass)
	mem.AddUser(user)

	if err := user.Create("INBOX", nil); err != nil {
		t.Fatalf("create mailbox: %v", err)
	}
	for _, mailbox := range extraMailboxes {
		if strings.TrimSpace(mailbox) == "" {
			continue
		}
		if err := user.Create(mailbox, nil); err != nil {
			t.Fatalf("create mailbox %q: %v", mailbox, err)
		}
	}

	srv := &Server{user: user}
	for _, msg := range messages {
		srv.UIDs = append(srv.UIDs, appendRaw(t, user, msg))
	}

	server := giimapserver.New(&giimapserver.Options{
		NewSession: func(*giimapserver.Conn) (giimapserver.Session, *giimapserver.GreetingData, error) {
			return mem.NewSession(), nil, nil
		},
		Caps:         caps,
		TLSConfig:    tlsConfig,
		InsecureAuth: true,
	})

	ln, err := tls.Listen("tcp", "127.0.0.1:0", tlsConfig)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	cleanup := func() {
		_ = server.Close()
		_ = ln.Close()
		select {
		case <-errCh:
		default:
		}
	}

	srv.Addr = ln.Addr().String()
	return srv, cleanup
}

func appendRaw(t *testing.T, user *giimapmemserver.User, msg RawMessage) uint32 {
	t.Helper()
	mailbox := strings.TrimSpace(msg.Mailbox)
	if mailbox == "" {
		mailbox = "INBOX"
	}
	appendTime := msg.Time
	if appendTime.IsZero() {
		appendTime = time.Now()
	}
	data, err := user.Append(mailbox, newLiteral(t, msg.Raw), &imap.AppendOptions{
		Time:  appendTime,
		Flags: msg.Flags,
	})
	if err != nil {
		t.Fatalf("append raw message: %v", err)
	}
	return uint32(data.UID)
}

type literalReader struct {
	*bytes.Reader
	size int64
}

func newLiteral(t *testing.T, raw string) imap.LiteralReader {
	t.Helper()
	buf := []byte(raw)
	return &literalReader{
		Reader: bytes.NewReader(buf),
		size:   int64(len(buf)),
	}
}

func (lr *literalReader) Size() int64 {
	return lr.size
}

// NotificationMessage builds a single-part quoted-printable message in the
// shape F5Bot sends alerts.
func NotificationMessage(messageID, subject, body string) string {
	builder := &strings.Builder{}
	builder.WriteString("From: ")
	builder.WriteString(F5BotSender)
	builder.WriteString("\r\n")
	builder.WriteString("To: ")
	builder.WriteString(DefaultUser)
	builder.WriteString("\r\n")
	if messageID != "" {
		builder.WriteString("Message-ID: <")
		builder.WriteString(messageID)
		builder.WriteString(">\r\n")
	}
	builder.WriteString("Subject: ")
	builder.WriteString(subject)
	builder.WriteString("\r\n")
	builder.WriteString("Date: ")
	builder.WriteString(time.Now().Format(time.RFC1123Z))
	builder.WriteString("\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	builder.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(body)
	builder.WriteString("\r\n")
	return builder.String()
}

// PlainMessage builds a message from an arbitrary sender with no MIME headers.
func PlainMessage(from, subject, body string) string {
	builder := &strings.Builder{}
	builder.WriteString("From: ")
	builder.WriteString(from)
	builder.WriteString("\r\n")
	builder.WriteString("To: ")
	builder.WriteString(DefaultUser)
	builder.WriteString("\r\n")
	builder.WriteString("Subject: ")
	builder.WriteString(subject)
	builder.WriteString("\r\n")
	builder.WriteString("Date: ")
	builder.WriteString(time.Now().Format(time.RFC1123Z))
	builder.WriteString("\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(body)
	builder.WriteString("\r\n")
	return builder.String()
}

func testTLSConfig(t *testing.T) *tls.Config {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		t.Fatalf("generate serial: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: "localhost",
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}

	cert := tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"imap"},
	}
}
