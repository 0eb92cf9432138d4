package casefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the normalized case status shown to the user.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusClosed    Status = "CLOSED"
)

// Backend status values as persisted by the store. The normalized Status is
// derived from these; MapStatus is the only place the mapping lives.
const (
	BackendCreated            = "created"
	BackendComplaintSubmitted = "complaint_submitted"
	BackendAwaitingResponse   = "awaiting_response"
	BackendEscalated          = "escalated"
	BackendResolved           = "resolved"
	BackendClosed             = "closed"
)

// Record is one user-initiated complaint tracked through its lifecycle.
// The lifecycle controller exclusively owns the in-memory Record during an
// editing session; the store is the system of record across sessions.
type Record struct {
	ID            string          `json:"id"`
	CaseRef       string          `json:"case_ref"`
	BackendStatus string          `json:"status"`
	ComplaintText string          `json:"complaint_text"`
	Research      *Classification `json:"research,omitempty"`
	FormData      map[string]string `json:"form_data,omitempty"`
	CaseData      *Dossier        `json:"case_data,omitempty"`
	StatusLogs    []LogEntry      `json:"status_logs,omitempty"` // newest first
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Status returns the normalized status derived from the backend status.
func (r *Record) Status() Status {
	return MapStatus(r.BackendStatus)
}

// MapStatus normalizes a backend status value. The mapping is exhaustive:
// anything unrecognized falls through to DRAFT.
func MapStatus(backend string) Status {
	switch backend {
	case BackendComplaintSubmitted, BackendAwaitingResponse, BackendEscalated:
		return StatusSubmitted
	case BackendResolved, BackendClosed:
		return StatusClosed
	default:
		return StatusDraft
	}
}

// Classification is the reasoning engine's assessment of a complaint: the
// incident category, the applicable regulatory framework, and the data points
// required to build a dossier.
type Classification struct {
	Type              string                 `json:"type"`
	BaseJustification string                 `json:"baseJustification"`
	Summary           string                 `json:"summary"`
	RequiredInfo      []Field                `json:"requiredInfo"`
	SuggestedValues   map[string]*string     `json:"suggestedValues,omitempty"`
	Compensation      []CompensationEstimate `json:"compensation,omitempty"`
	Title             string                 `json:"title,omitempty"`
}

// CompensationEstimate is a best-effort per-area estimate from classification.
type CompensationEstimate struct {
	Area     string `json:"area"`
	Estimate string `json:"estimate"`
}

// Dossier is the generated case package: procedural timeline, drafted
// correspondence and evidence checklist. ResponseDeadline and
// EscalationHistory are only populated once the case is filed.
type Dossier struct {
	Title             string         `json:"title,omitempty"`
	Timeline          []TimelineStep `json:"timeline"`
	Email             Correspondence `json:"email"`
	Checklist         []string       `json:"checklist"`
	ResponseDeadline  *time.Time     `json:"responseDeadline,omitempty"`
	EscalationHistory []Escalation   `json:"escalationHistory,omitempty"`
}

// TimelineStep is one ordered step of the procedural timeline.
type TimelineStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timeframe   string `json:"timeframe"`
}

// Correspondence is the drafted formal claim letter. Body may contain
// bracketed placeholders for data the user has not supplied yet.
type Correspondence struct {
	Subject          string `json:"subject"`
	RecipientName    string `json:"recipientName"`
	RecipientAddress string `json:"recipientAddress"`
	Body             string `json:"body"`
}

// Escalation records one escalation artifact. Entries are immutable once
// appended to a dossier's EscalationHistory.
type Escalation struct {
	TriggeredAt     time.Time `json:"triggeredAt"`
	Draft           string    `json:"draft"`
	ResponseQuality string    `json:"responseQuality"`
}

// LogEntry is one append-only status log entry for a filed case.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	IsAgent   bool      `json:"is_agent"`
}

// emptyJSON reports whether raw is absent or an empty structured value. A
// stored empty object means "never computed" and collapses to nil.
func emptyJSON(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return true
	}
	switch string(t) {
	case "{}", "null", `""`:
		return true
	}
	return false
}

// DecodeClassification converts a persisted research column into a
// Classification, collapsing empty objects to nil.
func DecodeClassification(raw []byte) (*Classification, error) {
	if emptyJSON(raw) {
		return nil, nil
	}
	var c Classification
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}
	if c.Type == "" && c.BaseJustification == "" && len(c.RequiredInfo) == 0 {
		return nil, nil
	}
	return &c, nil
}

// DecodeDossier converts a persisted case_data column into a Dossier,
// collapsing empty objects to nil.
func DecodeDossier(raw []byte) (*Dossier, error) {
	if emptyJSON(raw) {
		return nil, nil
	}
	var d Dossier
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode dossier: %w", err)
	}
	if len(d.Timeline) == 0 && d.Email.Body == "" && len(d.Checklist) == 0 {
		return nil, nil
	}
	return &d, nil
}

// DecodeFormData converts a persisted form_data column into a field map. An
// empty object decodes to an empty, non-nil map so callers can write into it.
func DecodeFormData(raw []byte) (map[string]string, error) {
	out := make(map[string]string)
	if emptyJSON(raw) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}
	return out, nil
}
