package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCompany(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		expected  string
	}{
		{
			name:      "after against",
			narrative: "I want to file a claim against Brightwing Air for my cancelled flight.",
			expected:  "Brightwing Air",
		},
		{
			name:      "after with",
			narrative: "I had a dispute with Norvik Electronics about a laptop.",
			expected:  "Norvik Electronics",
		},
		{
			name:      "lowercase token ends the match",
			narrative: "My flight from Lufthansa on March 3rd was cancelled.",
			expected:  "Lufthansa",
		},
		{
			name:      "trailing punctuation trimmed",
			narrative: "I bought a phone from TechWorld.",
			expected:  "TechWorld",
		},
		{
			name:      "no capitalized name",
			narrative: "I bought a phone from some shop downtown.",
			expected:  "",
		},
		{
			name:      "no connector word",
			narrative: "Brightwing Air cancelled my flight.",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractCompany(tt.narrative))
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		expected  string
	}{
		{"iso", "The flight on 2026-03-14 was cancelled.", "2026-03-14"},
		{"numeric slash", "Purchased on 14/03/2026 in store.", "14/03/2026"},
		{"numeric dot", "Ordered 3.2.26 online.", "3.2.26"},
		{"month name", "The flight on 14 March 2026 was cancelled.", "14 March 2026"},
		{"month abbreviation", "Delivered Mar 3rd, 2026 at noon.", "Mar 3rd, 2026"},
		{"iso wins over month", "On 2026-03-14, also written 14 March 2026.", "2026-03-14"},
		{"none", "No dates here at all.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDate(tt.narrative))
		})
	}
}

func TestHumanizeType(t *testing.T) {
	assert.Equal(t, "Civil Aviation Disruption", HumanizeType("CIVIL_AVIATION_DISRUPTION"))
	assert.Equal(t, "Faulty Goods", HumanizeType("FAULTY_GOODS"))
	assert.Equal(t, "", HumanizeType(""))
}

func TestDisplayTitle(t *testing.T) {
	t.Run("dossier title wins", func(t *testing.T) {
		r := &Record{
			ComplaintText: "claim against Brightwing Air on 2026-03-14",
			Research:      &Classification{Title: "Research Title"},
			CaseData:      &Dossier{Title: "Dossier Title"},
		}
		assert.Equal(t, "Dossier Title", r.DisplayTitle())
	})

	t.Run("research title next", func(t *testing.T) {
		r := &Record{
			ComplaintText: "claim against Brightwing Air",
			Research:      &Classification{Title: "Research Title"},
		}
		assert.Equal(t, "Research Title", r.DisplayTitle())
	})

	t.Run("company and date", func(t *testing.T) {
		r := &Record{ComplaintText: "claim against Brightwing Air on 2026-03-14"}
		assert.Equal(t, "Brightwing Air — 2026-03-14", r.DisplayTitle())
	})

	t.Run("company only", func(t *testing.T) {
		r := &Record{ComplaintText: "claim against Brightwing Air"}
		assert.Equal(t, "Brightwing Air claim", r.DisplayTitle())
	})

	t.Run("category label and date", func(t *testing.T) {
		r := &Record{
			ComplaintText: "my flight on 2026-03-14 was cancelled",
			Research:      &Classification{Type: "FLIGHT_CANCELLATION"},
		}
		assert.Equal(t, "Flight Cancellation — 2026-03-14", r.DisplayTitle())
	})

	t.Run("category label only", func(t *testing.T) {
		r := &Record{
			ComplaintText: "my flight was cancelled",
			Research:      &Classification{Type: "FLIGHT_CANCELLATION"},
		}
		assert.Equal(t, "Flight Cancellation", r.DisplayTitle())
	})

	t.Run("date only", func(t *testing.T) {
		r := &Record{ComplaintText: "it happened on 2026-03-14"}
		assert.Equal(t, "Consumer Dispute — 2026-03-14", r.DisplayTitle())
	})

	t.Run("fallback", func(t *testing.T) {
		r := &Record{ComplaintText: "something went wrong"}
		assert.Equal(t, "Consumer Dispute", r.DisplayTitle())
	})
}
