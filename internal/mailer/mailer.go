package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrMissingField is returned when a send request lacks a required field.
// Validation happens before any network effect.
var ErrMissingField = errors.New("missing required mail field")

// Message is one outbound claim email.
type Message struct {
	To      string
	Subject string
	Body    string // plain text; rendered to an HTML alternative for delivery
	ReplyTo string
	CaseRef string
}

// Receipt identifies a delivered message at the provider.
type Receipt struct {
	ID string
}

// Mailer delivers formal claim correspondence.
type Mailer interface {
	SendClaimEmail(ctx context.Context, msg Message) (*Receipt, error)
}

// Validate checks the required fields of a message.
func Validate(msg Message) error {
	var missing []string
	if strings.TrimSpace(msg.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(msg.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// RenderHTML converts a plain-text body into a minimal paragraph-per-line
// HTML alternative. The plain-text version is always sent alongside.
func RenderHTML(body string) string {
	var sb strings.Builder
	sb.WriteString(`<div style="font-family: Arial, sans-serif; font-size: 14px; line-height: 1.7; color: #222; max-width: 680px;">` + "\n")
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			sb.WriteString("<br>\n")
			continue
		}
		sb.WriteString(`<p style="margin: 0 0 0.8em 0;">` + html.EscapeString(line) + "</p>\n")
	}
	sb.WriteString("</div>")
	return sb.String()
}
