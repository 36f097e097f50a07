// Package notification holds the mail messages a scan reads and the rules
// for turning a MIME message into the text the parser works on.
package notification

import (
	"fmt"
	"strings"
	"time"
)

// Message is one fetched email.
type Message struct {
	UID       uint32
	Folder    string
	MessageID string
	From      []string
	Subject   string
	Date      time.Time
	Body      string
}

// ID is the ledger key of the message: its Message-ID, or folder:uid when
// the sender omitted one.
func (m Message) ID() string {
	if id := strings.Trim(strings.TrimSpace(m.MessageID), "<>"); id != "" {
		return id
	}
	return fmt.Sprintf("%s:%d", m.Folder, m.UID)
}
