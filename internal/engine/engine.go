package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/legalease/legalease/internal/casefile"
)

// Failure modes shared by all engine operations. Callers branch with
// errors.Is; the raw cause stays wrapped underneath.
var (
	// ErrUnavailable indicates the upstream model could not be reached or
	// refused the request (network failure, quota, auth).
	ErrUnavailable = errors.New("reasoning engine unavailable")

	// ErrMalformedResponse indicates the model replied but its output did not
	// contain exactly one well-formed structured payload. No partially-parsed
	// result is ever returned alongside this error.
	ErrMalformedResponse = errors.New("malformed reasoning engine response")
)

// Response-quality tags assigned by update analysis.
const (
	QualitySatisfactory  = "satisfactory"
	QualityPartial       = "partial"
	QualityInadequate    = "inadequate"
	QualityNotApplicable = "not_applicable"
)

// AnalysisResult is the engine's assessment of a logged communication on a
// filed case.
type AnalysisResult struct {
	Assessment        string `json:"assessment"`
	RecommendedAction string `json:"recommendedAction"`
	ResponseQuality   string `json:"responseQuality"`
	ShouldEscalate    bool   `json:"shouldEscalate"`
	NewDeadlineDays   int    `json:"newDeadlineDays,omitempty"`
	EscalationDraft   string `json:"escalationDraft,omitempty"`
}

// Engine is the reasoning engine contract: three operations, each a single
// request/response round trip with no internal retry.
type Engine interface {
	// Classify assesses a complaint narrative against a regulatory framework
	// and returns the required-info schema for the dossier.
	Classify(ctx context.Context, narrative string) (*casefile.Classification, error)

	// Draft generates the case dossier from the classification and the
	// collected field values.
	Draft(ctx context.Context, category string, fields map[string]string, c *casefile.Classification) (*casefile.Dossier, error)

	// AnalyzeUpdate assesses a follow-up communication on a filed case and
	// recommends next steps, deadline changes and escalation.
	AnalyzeUpdate(ctx context.Context, updateText string, c *casefile.Classification, priorLogs []casefile.LogEntry) (*AnalysisResult, error)
}

// generator is the minimal provider surface: one prompt in, raw model text
// out. Providers only implement this; the structured contract lives in
// adapter.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
	name() string
}

// adapter turns a raw text generator into a typed Engine. The model's output
// is untrusted text: the adapter extracts the single JSON payload, decodes it
// and validates required fields before anything reaches the caller.
type adapter struct {
	g generator
}

func (a *adapter) Classify(ctx context.Context, narrative string) (*casefile.Classification, error) {
	raw, err := a.g.generate(ctx, classifyPrompt(narrative))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, a.g.name(), err)
	}

	var c casefile.Classification
	if err := decodePayload(raw, &c); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Type) == "" || strings.TrimSpace(c.BaseJustification) == "" || strings.TrimSpace(c.Summary) == "" {
		return nil, fmt.Errorf("%w: classification missing required fields", ErrMalformedResponse)
	}
	if err := casefile.ValidateFields(c.RequiredInfo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &c, nil
}

func (a *adapter) Draft(ctx context.Context, category string, fields map[string]string, c *casefile.Classification) (*casefile.Dossier, error) {
	raw, err := a.g.generate(ctx, draftPrompt(category, fields, c))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, a.g.name(), err)
	}

	var d casefile.Dossier
	if err := decodePayload(raw, &d); err != nil {
		return nil, err
	}
	if len(d.Timeline) < 4 || len(d.Timeline) > 7 {
		return nil, fmt.Errorf("%w: timeline has %d steps, want 4-7", ErrMalformedResponse, len(d.Timeline))
	}
	if strings.TrimSpace(d.Email.Subject) == "" || strings.TrimSpace(d.Email.Body) == "" {
		return nil, fmt.Errorf("%w: dossier correspondence incomplete", ErrMalformedResponse)
	}
	if len(d.Checklist) == 0 {
		return nil, fmt.Errorf("%w: dossier evidence checklist empty", ErrMalformedResponse)
	}
	return &d, nil
}

func (a *adapter) AnalyzeUpdate(ctx context.Context, updateText string, c *casefile.Classification, priorLogs []casefile.LogEntry) (*AnalysisResult, error) {
	raw, err := a.g.generate(ctx, analyzePrompt(updateText, c, priorLogs))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, a.g.name(), err)
	}

	var r AnalysisResult
	if err := decodePayload(raw, &r); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Assessment) == "" || strings.TrimSpace(r.RecommendedAction) == "" {
		return nil, fmt.Errorf("%w: analysis missing required fields", ErrMalformedResponse)
	}
	switch r.ResponseQuality {
	case QualitySatisfactory, QualityPartial, QualityInadequate, QualityNotApplicable:
	default:
		return nil, fmt.Errorf("%w: unknown response quality %q", ErrMalformedResponse, r.ResponseQuality)
	}
	if r.ShouldEscalate && strings.TrimSpace(r.EscalationDraft) == "" {
		return nil, fmt.Errorf("%w: escalation requested without a draft", ErrMalformedResponse)
	}
	if r.NewDeadlineDays < 0 {
		return nil, fmt.Errorf("%w: negative deadline extension", ErrMalformedResponse)
	}
	return &r, nil
}

// extractPayload locates the single structured payload inside raw model text
// by its outermost object delimiters. Models often wrap JSON in prose or
// markdown fences; everything outside the braces is discarded.
func extractPayload(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	return raw[start : end+1], nil
}

func decodePayload(raw string, v interface{}) error {
	payload, err := extractPayload(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
