package mailer

import (
	"context"
	"errors"
	"strings"
)

var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Recipient is a single addressee.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Message is a rendered email ready for delivery. Body is the plain-text
// part; HTML is optional.
type Message struct {
	Subject string
	Body    string
	HTML    string
	To      []Recipient
}

// Sender delivers a Message. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Addresses lists recipient emails in order.
func (m Message) Addresses() []string {
	out := make([]string, 0, len(m.To))
	for _, r := range m.To {
		out = append(out, r.Email)
	}
	return out
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, r := range m.To {
		if strings.TrimSpace(r.Email) == "" {
			return errors.New("mailer: recipient without email")
		}
	}
	return nil
}
