package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legalease/legalease/internal/casefile"
)

func TestRouteFor(t *testing.T) {
	tests := []struct {
		name     string
		rec      *casefile.Record
		expected Phase
	}{
		{"nil record", nil, PhaseNew},
		{
			"fresh case",
			&casefile.Record{BackendStatus: casefile.BackendCreated},
			PhaseIntakeEmpty,
		},
		{
			"classified draft",
			&casefile.Record{
				BackendStatus: casefile.BackendCreated,
				Research:      &casefile.Classification{Type: "FAULTY_GOODS"},
			},
			PhaseIntakeClassified,
		},
		{
			"dossier generated",
			&casefile.Record{
				BackendStatus: casefile.BackendCreated,
				Research:      &casefile.Classification{Type: "FAULTY_GOODS"},
				CaseData:      &casefile.Dossier{Title: "Claim"},
			},
			PhaseDossierReady,
		},
		{
			"filed",
			&casefile.Record{
				BackendStatus: casefile.BackendComplaintSubmitted,
				Research:      &casefile.Classification{Type: "FAULTY_GOODS"},
				CaseData:      &casefile.Dossier{Title: "Claim"},
			},
			PhaseFiled,
		},
		{
			"escalated routes like filed",
			&casefile.Record{
				BackendStatus: casefile.BackendEscalated,
				CaseData:      &casefile.Dossier{Title: "Claim"},
			},
			PhaseFiled,
		},
		{
			"closed wins over everything",
			&casefile.Record{
				BackendStatus: casefile.BackendResolved,
				Research:      &casefile.Classification{Type: "FAULTY_GOODS"},
				CaseData:      &casefile.Dossier{Title: "Claim"},
			},
			PhaseClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RouteFor(tt.rec))
		})
	}
}

func TestRouteFor_PureFunction(t *testing.T) {
	rec := &casefile.Record{
		BackendStatus: casefile.BackendCreated,
		Research:      &casefile.Classification{Type: "FAULTY_GOODS"},
	}
	// Same input, same phase, regardless of how often or in what order it
	// is asked.
	for i := 0; i < 5; i++ {
		assert.Equal(t, PhaseIntakeClassified, RouteFor(rec))
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "filed", PhaseFiled.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
