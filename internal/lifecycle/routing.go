package lifecycle

import (
	"github.com/legalease/legalease/internal/casefile"
)

// Phase is the lifecycle position a case presents to the UI.
type Phase int

const (
	PhaseNew Phase = iota
	PhaseIntakeEmpty
	PhaseIntakeClassified
	PhaseDossierReady
	PhaseFiled
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseIntakeEmpty:
		return "intake"
	case PhaseIntakeClassified:
		return "intake_classified"
	case PhaseDossierReady:
		return "dossier_ready"
	case PhaseFiled:
		return "filed"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// RouteFor maps a case record to its lifecycle phase. Selection routing is a
// pure function of the persisted record: navigation history never factors in.
func RouteFor(rec *casefile.Record) Phase {
	if rec == nil {
		return PhaseNew
	}
	switch rec.Status() {
	case casefile.StatusClosed:
		return PhaseClosed
	case casefile.StatusSubmitted:
		return PhaseFiled
	}
	if rec.CaseData != nil {
		return PhaseDossierReady
	}
	if rec.Research != nil {
		return PhaseIntakeClassified
	}
	return PhaseIntakeEmpty
}
