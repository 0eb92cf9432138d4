package policy

import (
	"fmt"
	"time"

	"github.com/legalease/legalease/internal/casefile"
)

// ResponseWindow is the default period a respondent is given after filing.
const ResponseWindow = 14 * 24 * time.Hour

// DeadlineStatus classifies how close a response deadline is.
type DeadlineStatus string

const (
	DeadlineNormal  DeadlineStatus = "normal"
	DeadlineUrgent  DeadlineStatus = "urgent"
	DeadlineOverdue DeadlineStatus = "overdue"
)

// Countdown is the computed deadline state for display and escalation checks.
type Countdown struct {
	Days   int
	Label  string
	Status DeadlineStatus
}

// DaysUntil computes the countdown to deadline as seen at now. The day count
// is the calendar-day ceiling of the millisecond difference, so any partial
// day remaining counts as a full day.
func DaysUntil(deadline, now time.Time) Countdown {
	ms := deadline.Sub(now).Milliseconds()
	const dayMS = 24 * 60 * 60 * 1000

	// Integer division truncates toward zero, which is already the ceiling
	// for negative differences; only positive remainders round up.
	days := ms / dayMS
	if ms > 0 && ms%dayMS != 0 {
		days++
	}
	d := int(days)

	switch {
	case d < 0:
		return Countdown{Days: d, Label: fmt.Sprintf("%d days overdue", -d), Status: DeadlineOverdue}
	case d == 0:
		return Countdown{Days: 0, Label: "Due today", Status: DeadlineUrgent}
	case d <= 3:
		label := fmt.Sprintf("%d days remaining", d)
		if d == 1 {
			label = "1 day remaining"
		}
		return Countdown{Days: d, Label: label, Status: DeadlineUrgent}
	default:
		return Countdown{Days: d, Label: fmt.Sprintf("%d days remaining", d), Status: DeadlineNormal}
	}
}

// Analysis is the merged view of an engine update assessment that affects
// deadline or escalation state.
type Analysis struct {
	ShouldEscalate  bool
	NewDeadlineDays int // 0 means no change
	EscalationDraft string
	ResponseQuality string
}

// MergeAnalysis applies an update analysis to a dossier, returning a new
// dossier value. The deadline replacement and the escalation append are
// independent effects; both may apply. The input is not mutated, and
// existing escalation history entries are never touched.
func MergeAnalysis(d casefile.Dossier, a Analysis, now time.Time) casefile.Dossier {
	out := d
	out.EscalationHistory = append([]casefile.Escalation(nil), d.EscalationHistory...)

	if a.NewDeadlineDays > 0 {
		deadline := now.Add(time.Duration(a.NewDeadlineDays) * 24 * time.Hour)
		out.ResponseDeadline = &deadline
	}
	if a.ShouldEscalate && a.EscalationDraft != "" {
		out.EscalationHistory = append(out.EscalationHistory, casefile.Escalation{
			TriggeredAt:     now,
			Draft:           a.EscalationDraft,
			ResponseQuality: a.ResponseQuality,
		})
	}
	return out
}
