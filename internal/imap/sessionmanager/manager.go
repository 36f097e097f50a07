// Package sessionmanager owns the single logged-in IMAP session that the
// search, selector and action managers share.
package sessionmanager

import (
	"crypto/tls"
	"errors"
	"strings"

	giimapclient "github.com/emersion/go-imap/v2/imapclient"
)

var errNotConnected = errors.New("IMAP client is not connected")

type Option func(*IMAPConnector)

// Session is the connection lifecycle the watch loop drives.
type Session interface {
	Connect() error
	Close() error
	Idle() (*giimapclient.IdleCommand, error)

	IMAPClient() *giimapclient.Client
}

type IMAPConnector struct {
	Addr     string
	Username string
	Password string

	tlsConfig *tls.Config
	updates   chan<- uint32
	client    *giimapclient.Client
}

func WithAddr(a string) Option {
	return func(c *IMAPConnector) {
		c.Addr = a
	}
}

func WithCreds(username string, password string) Option {
	return func(c *IMAPConnector) {
		c.Username = username
		c.Password = password
	}
}

// WithTLSConfig replaces the TLS settings used to dial the server.
func WithTLSConfig(config *tls.Config) Option {
	return func(c *IMAPConnector) {
		c.tlsConfig = config
	}
}

// WithMailboxUpdates delivers the message count of the selected mailbox
// whenever the server reports one. Updates the reader has not caught up
// with are dropped.
func WithMailboxUpdates(updates chan<- uint32) Option {
	return func(c *IMAPConnector) {
		c.updates = updates
	}
}

func New(opts ...Option) *IMAPConnector {
	c := &IMAPConnector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *IMAPConnector) IMAPClient() *giimapclient.Client {
	return c.client
}

// Connect dials over TLS and logs in. A failed login leaves the connector
// disconnected.
func (c *IMAPConnector) Connect() error {
	if err := validateDeps(c); err != nil {
		return err
	}

	client, err := giimapclient.DialTLS(c.Addr, c.options())
	if err != nil {
		return err
	}
	if err := client.Login(c.Username, c.Password).Wait(); err != nil {
		_ = client.Close()
		return err
	}

	c.client = client
	return nil
}

func (c *IMAPConnector) options() *giimapclient.Options {
	opts := &giimapclient.Options{TLSConfig: c.tlsConfig}
	if c.updates == nil {
		return opts
	}
	updates := c.updates
	opts.UnilateralDataHandler = &giimapclient.UnilateralDataHandler{
		Mailbox: func(data *giimapclient.UnilateralDataMailbox) {
			if data.NumMessages == nil {
				return
			}
			select {
			case updates <- *data.NumMessages:
			default:
			}
		},
	}
	return opts
}

func (c *IMAPConnector) Idle() (*giimapclient.IdleCommand, error) {
	if c.client == nil {
		return nil, errNotConnected
	}
	return c.client.Idle()
}

// Close logs out and forgets the connection.
func (c *IMAPConnector) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Logout().Wait()
	c.client = nil
	return err
}

func validateDeps(c *IMAPConnector) error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("IMAP address is required")
	}
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return errors.New("IMAP credentials are required")
	}
	return nil
}
