package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultFromAddress = "LegalEase Claims <onboarding@resend.dev>"

// Resend delivers mail through the Resend HTTP API.
type Resend struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *log.Logger
}

// NewResend constructs a Resend mailer. apiKey is required; when empty this
// constructor tries RESEND_API_KEY.
func NewResend(endpoint, apiKey, from string, logger *log.Logger) (*Resend, error) {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = "https://api.resend.com"
	}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	}
	if key == "" {
		return nil, fmt.Errorf("resend: apiKey required (set in settings or RESEND_API_KEY)")
	}
	if strings.TrimSpace(from) == "" {
		from = defaultFromAddress
	}
	return &Resend{
		endpoint:   strings.TrimRight(ep, "/"),
		apiKey:     key,
		from:       from,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// SendClaimEmail validates and delivers one claim email, sending both the
// plain-text body and its HTML rendering.
func (r *Resend) SendClaimEmail(ctx context.Context, msg Message) (*Receipt, error) {
	if err := Validate(msg); err != nil {
		return nil, err
	}

	type tag struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	type sendReq struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
		Text    string   `json:"text"`
		ReplyTo string   `json:"reply_to,omitempty"`
		Tags    []tag    `json:"tags"`
	}
	type sendResp struct {
		ID      string `json:"id"`
		Message string `json:"message,omitempty"`
	}

	caseRef := msg.CaseRef
	if caseRef == "" {
		caseRef = "unknown"
	}
	payload := sendReq{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    RenderHTML(msg.Body),
		Text:    msg.Body,
		ReplyTo: msg.ReplyTo,
		Tags: []tag{
			{Name: "case_ref", Value: caseRef},
			{Name: "source", Value: "legalease"},
		},
	}
	data, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/emails", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("resend: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("resend: request error: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed sendResp
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode/100 != 2 {
		if parsed.Message != "" {
			return nil, fmt.Errorf("resend: status %d: %s", resp.StatusCode, parsed.Message)
		}
		return nil, fmt.Errorf("resend: status %d", resp.StatusCode)
	}
	return &Receipt{ID: parsed.ID}, nil
}
