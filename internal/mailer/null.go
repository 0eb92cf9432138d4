package mailer

import (
	"context"
	"fmt"
	"log"
)

// Null is a no-op mailer for when delivery is disabled. Requests are still
// validated so callers see the same errors they would with a real provider.
type Null struct {
	logger *log.Logger
}

// NewNull creates a no-op mailer.
func NewNull(logger *log.Logger) *Null {
	if logger == nil {
		logger = log.New(log.Writer(), "[NullMailer] ", log.LstdFlags)
	}
	return &Null{logger: logger}
}

// SendClaimEmail validates the message and logs it without sending.
func (n *Null) SendClaimEmail(ctx context.Context, msg Message) (*Receipt, error) {
	if err := Validate(msg); err != nil {
		return nil, err
	}
	n.logger.Printf("Would send claim email to %s (delivery disabled), subject %q", msg.To, msg.Subject)
	return &Receipt{ID: fmt.Sprintf("null-%s", msg.CaseRef)}, nil
}
