package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalease/legalease/internal/casefile"
)

// fakeGenerator returns canned text, recording the last prompt.
type fakeGenerator struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) name() string { return "fake" }

const validClassificationJSON = `{
	"type": "FLIGHT_CANCELLATION",
	"baseJustification": "EU Regulation 261/2004",
	"summary": "Flight cancelled less than 14 days before departure.",
	"requiredInfo": [
		{"id": "flight_number", "label": "Flight number", "type": "text"},
		{"id": "departure_date", "label": "Departure date", "type": "date"}
	],
	"suggestedValues": {"flight_number": "BA855"},
	"compensation": [{"area": "Article 7", "estimate": "EUR 400"}],
	"title": "Claim against Brightwing Air"
}`

const validDossierJSON = `{
	"title": "Claim against Brightwing Air",
	"timeline": [
		{"title": "Send formal claim", "description": "Deliver the demand letter.", "timeframe": "Day 0"},
		{"title": "Response window", "description": "Await the airline's reply.", "timeframe": "14 days"},
		{"title": "Escalate to NEB", "description": "File with the national enforcement body.", "timeframe": "Day 15+"},
		{"title": "Court filing", "description": "Small claims as last resort.", "timeframe": "Day 30+"}
	],
	"email": {
		"subject": "Formal compensation claim - flight BA855",
		"recipientName": "Customer Relations",
		"recipientAddress": "claims@example.com",
		"body": "Dear Sir or Madam,\n\nI claim compensation under EU 261/2004."
	},
	"checklist": ["Boarding pass", "Cancellation notice"]
}`

const validAnalysisJSON = `{
	"assessment": "The airline offered a voucher instead of the cash compensation owed.",
	"recommendedAction": "Reject the voucher and restate the cash demand.",
	"responseQuality": "partial",
	"shouldEscalate": true,
	"newDeadlineDays": 7,
	"escalationDraft": "Dear Customer Relations, your voucher offer does not satisfy Article 7..."
}`

func TestClassify(t *testing.T) {
	g := &fakeGenerator{reply: validClassificationJSON}
	eng := &adapter{g: g}

	c, err := eng.Classify(context.Background(), "My flight was cancelled")
	require.NoError(t, err)
	assert.Equal(t, "FLIGHT_CANCELLATION", c.Type)
	assert.Equal(t, "EU Regulation 261/2004", c.BaseJustification)
	assert.Len(t, c.RequiredInfo, 2)
	assert.Contains(t, g.lastPrompt, "My flight was cancelled")
}

func TestClassify_PayloadWrappedInProse(t *testing.T) {
	g := &fakeGenerator{reply: "Here is the assessment you asked for:\n```json\n" + validClassificationJSON + "\n```\nLet me know if you need anything else."}
	eng := &adapter{g: g}

	c, err := eng.Classify(context.Background(), "complaint")
	require.NoError(t, err)
	assert.Equal(t, "FLIGHT_CANCELLATION", c.Type)
}

func TestClassify_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json at all", "I cannot help with that."},
		{"broken json", `{"type": "FLIGHT_CANCELLATION", "baseJustification":`},
		{"missing required fields", `{"type": "FLIGHT_CANCELLATION"}`},
		{"empty field schema", `{"type": "A", "baseJustification": "B", "summary": "C", "requiredInfo": []}`},
		{"duplicate field ids", `{"type": "A", "baseJustification": "B", "summary": "C",
			"requiredInfo": [{"id": "x", "label": "X", "type": "text"}, {"id": "x", "label": "X2", "type": "text"}]}`},
		{"unknown field type", `{"type": "A", "baseJustification": "B", "summary": "C",
			"requiredInfo": [{"id": "x", "label": "X", "type": "dropdown"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &adapter{g: &fakeGenerator{reply: tt.reply}}
			c, err := eng.Classify(context.Background(), "complaint")
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, c, "no partial result alongside the error")
		})
	}
}

func TestClassify_ProviderError(t *testing.T) {
	eng := &adapter{g: &fakeGenerator{err: fmt.Errorf("connection refused")}}

	_, err := eng.Classify(context.Background(), "complaint")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestDraft(t *testing.T) {
	g := &fakeGenerator{reply: validDossierJSON}
	eng := &adapter{g: g}

	c := &casefile.Classification{
		Type:              "FLIGHT_CANCELLATION",
		BaseJustification: "EU Regulation 261/2004",
	}
	d, err := eng.Draft(context.Background(), c.Type, map[string]string{"flight_number": "BA855"}, c)
	require.NoError(t, err)
	assert.Len(t, d.Timeline, 4)
	assert.Equal(t, "claims@example.com", d.Email.RecipientAddress)
	assert.Contains(t, g.lastPrompt, "BA855")
}

func TestDraft_TimelineBounds(t *testing.T) {
	step := `{"title": "Step", "description": "D", "timeframe": "T"}`
	mk := func(n int) string {
		steps := step
		for i := 1; i < n; i++ {
			steps += "," + step
		}
		return fmt.Sprintf(`{"timeline": [%s],
			"email": {"subject": "S", "recipientName": "R", "recipientAddress": "r@e.com", "body": "B"},
			"checklist": ["item"]}`, steps)
	}

	eng := &adapter{g: &fakeGenerator{reply: mk(3)}}
	_, err := eng.Draft(context.Background(), "T", nil, nil)
	assert.ErrorIs(t, err, ErrMalformedResponse, "3 steps rejected")

	eng = &adapter{g: &fakeGenerator{reply: mk(8)}}
	_, err = eng.Draft(context.Background(), "T", nil, nil)
	assert.ErrorIs(t, err, ErrMalformedResponse, "8 steps rejected")

	eng = &adapter{g: &fakeGenerator{reply: mk(7)}}
	_, err = eng.Draft(context.Background(), "T", nil, nil)
	assert.NoError(t, err, "7 steps accepted")
}

func TestDraft_IncompleteCorrespondence(t *testing.T) {
	reply := `{"timeline": [
		{"title": "1"}, {"title": "2"}, {"title": "3"}, {"title": "4"}
	], "email": {"subject": "", "body": ""}, "checklist": ["x"]}`
	eng := &adapter{g: &fakeGenerator{reply: reply}}

	_, err := eng.Draft(context.Background(), "T", nil, nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAnalyzeUpdate(t *testing.T) {
	g := &fakeGenerator{reply: validAnalysisJSON}
	eng := &adapter{g: g}

	c := &casefile.Classification{Type: "FLIGHT_CANCELLATION", BaseJustification: "EU Regulation 261/2004"}
	logs := []casefile.LogEntry{{Message: "Case formally filed"}}

	r, err := eng.AnalyzeUpdate(context.Background(), "They offered a voucher", c, logs)
	require.NoError(t, err)
	assert.True(t, r.ShouldEscalate)
	assert.Equal(t, 7, r.NewDeadlineDays)
	assert.Equal(t, QualityPartial, r.ResponseQuality)
	assert.Contains(t, g.lastPrompt, "They offered a voucher")
	assert.Contains(t, g.lastPrompt, "Case formally filed")
}

func TestAnalyzeUpdate_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"unknown quality tag", `{"assessment": "A", "recommendedAction": "B", "responseQuality": "great"}`},
		{"escalation without draft", `{"assessment": "A", "recommendedAction": "B", "responseQuality": "inadequate", "shouldEscalate": true}`},
		{"negative deadline", `{"assessment": "A", "recommendedAction": "B", "responseQuality": "partial", "newDeadlineDays": -3}`},
		{"missing assessment", `{"recommendedAction": "B", "responseQuality": "partial"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &adapter{g: &fakeGenerator{reply: tt.reply}}
			r, err := eng.AnalyzeUpdate(context.Background(), "update", nil, nil)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, r)
		})
	}
}

func TestExtractPayload(t *testing.T) {
	payload, err := extractPayload(`prose before {"a": {"b": 1}} prose after`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, payload)

	_, err = extractPayload("no braces here")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = extractPayload("} backwards {")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
