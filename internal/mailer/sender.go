package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrSendFailed is returned when the mail transport rejects or cannot deliver a message.
var ErrSendFailed = errors.New("mailer: send failed")

// ErrInvalidMessage is returned when a message is missing its template or recipient.
var ErrInvalidMessage = errors.New("mailer: invalid message")

// Message is a template-addressed mail payload. Params carry the flat named
// string fields the template interpolates.
type Message struct {
	TemplateID string
	ToEmail    string
	Params     map[string]string
}

// Validate checks the minimum fields every transport needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.TemplateID) == "" {
		return fmt.Errorf("%w: template id is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.ToEmail) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	return nil
}

// Sender delivers template mail. Implementations are selected once at startup;
// callers never inspect which transport they hold.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
