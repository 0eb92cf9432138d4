package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/legalease/legalease/internal/bus"
	"github.com/legalease/legalease/internal/casefile"
	"github.com/legalease/legalease/internal/engine"
	"github.com/legalease/legalease/internal/mailer"
	"github.com/legalease/legalease/internal/policy"
	"github.com/legalease/legalease/internal/store"
)

var (
	// ErrNotAuthenticated is returned when an operation is attempted without
	// an authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidTransition is returned when an operation's precondition on
	// the current lifecycle phase does not hold.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrBusy is returned when a transition is attempted while another one
	// is still suspended on the engine or the store.
	ErrBusy = errors.New("case is busy with another transition")

	// ErrNoCaseSelected is returned for case-scoped operations with no case
	// selected.
	ErrNoCaseSelected = errors.New("no case selected")

	// ErrEmptyNarrative rejects classification of a blank complaint.
	ErrEmptyNarrative = errors.New("complaint narrative is empty")

	// ErrNotConfirmed rejects destructive operations without explicit
	// confirmation.
	ErrNotConfirmed = errors.New("destructive operation not confirmed")
)

// Session identifies the acting user. It is passed explicitly into every
// controller operation instead of living in ambient global state, so
// concurrent sessions against different cases stay independent.
type Session struct {
	UserID string
	Email  string
}

func (s *Session) check() error {
	if s == nil || strings.TrimSpace(s.UserID) == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// Store is the case store surface the controller depends on.
type Store interface {
	CreateCase(ctx context.Context, userID, caseRef, complaintText string, research *casefile.Classification) (*casefile.Record, error)
	GetCase(ctx context.Context, id string) (*casefile.Record, error)
	GetCaseByRef(ctx context.Context, userID, caseRef string) (*casefile.Record, error)
	ListCases(ctx context.Context, userID string) ([]*casefile.Record, error)
	UpdateCase(ctx context.Context, id string, update store.CaseUpdate) (*casefile.Record, error)
	DeleteCase(ctx context.Context, id string) error
	AddStatusLog(ctx context.Context, caseID, userID, message string, isAgent bool) (casefile.LogEntry, error)
	GetStatusLogs(ctx context.Context, caseID string) ([]casefile.LogEntry, error)
}

// Controller is the case lifecycle state machine. It exclusively owns the
// selected in-memory record during an editing session and is the only
// component that merges reasoning engine output into the case record.
type Controller struct {
	store  Store
	engine engine.Engine
	bus    bus.Bus
	logger *log.Logger

	// now is swapped in tests to pin deadline arithmetic.
	now func() time.Time

	mu      sync.Mutex
	current *casefile.Record
}

// New constructs a controller. A nil bus or logger falls back to no-ops.
func New(st Store, eng engine.Engine, b bus.Bus, logger *log.Logger) *Controller {
	if b == nil {
		b = bus.NewNullBus(log.New(io.Discard, "", 0))
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		store:  st,
		engine: eng,
		bus:    b,
		logger: logger,
		now:    time.Now,
	}
}

// begin serializes transitions: each lifecycle operation that suspends on
// the engine or the store holds the case busy until it returns.
func (c *Controller) begin() (func(), error) {
	if !c.mu.TryLock() {
		return nil, ErrBusy
	}
	return c.mu.Unlock, nil
}

// Current returns the selected case record, or nil.
func (c *Controller) Current() *casefile.Record {
	return c.current
}

// Phase returns the lifecycle phase of the selected case.
func (c *Controller) Phase() Phase {
	return RouteFor(c.current)
}

// Create allocates a new empty case with a fresh reference and selects it.
// On a store failure the case stays unselected and the error is surfaced.
func (c *Controller) Create(ctx context.Context, sess *Session) (*casefile.Record, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	caseRef := store.GenerateCaseRef(sess.UserID)
	rec, err := c.store.CreateCase(ctx, sess.UserID, caseRef, "", nil)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	c.current = rec
	c.publishActivity(ctx, rec, sess, "case_created", "")
	return rec, nil
}

// Select loads an existing case by reference, attaches its status logs and
// routes it by its persisted state.
func (c *Controller) Select(ctx context.Context, sess *Session, caseRef string) (*casefile.Record, Phase, error) {
	if err := sess.check(); err != nil {
		return nil, PhaseNew, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, PhaseNew, err
	}
	defer done()

	rec, err := c.store.GetCaseByRef(ctx, sess.UserID, caseRef)
	if err != nil {
		return nil, PhaseNew, fmt.Errorf("select case %s: %w", caseRef, err)
	}

	// Best-effort log refresh: a failure here is logged and the case is
	// still usable with whatever history is attached.
	if logs, err := c.store.GetStatusLogs(ctx, rec.ID); err != nil {
		c.logger.Printf("status log refresh for case %s failed: %v", rec.CaseRef, err)
	} else {
		rec.StatusLogs = logs
	}

	c.current = rec
	return rec, RouteFor(rec), nil
}

// Deselect drops the active case without touching the store.
func (c *Controller) Deselect() {
	c.current = nil
}

// List returns the session user's cases, most recent first.
func (c *Controller) List(ctx context.Context, sess *Session) ([]*casefile.Record, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	return c.store.ListCases(ctx, sess.UserID)
}

// Classify runs the reasoning engine over the complaint narrative and merges
// the classification into the selected case. Re-running with new narrative
// replaces the research and its derived form-data key space: values for
// surviving keys are preserved, the rest dropped, and any stale dossier is
// cleared. On an engine failure the case stays in intake with the narrative
// preserved in memory.
func (c *Controller) Classify(ctx context.Context, sess *Session, narrative string) (*casefile.Record, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if c.current == nil {
		return nil, ErrNoCaseSelected
	}
	if strings.TrimSpace(narrative) == "" {
		return nil, ErrEmptyNarrative
	}
	if c.current.Status() != casefile.StatusDraft {
		return nil, fmt.Errorf("%w: classify requires a draft case", ErrInvalidTransition)
	}

	classification, err := c.engine.Classify(ctx, narrative)
	if err != nil {
		// Keep the narrative so the user does not retype it after a retry.
		c.current.ComplaintText = narrative
		return nil, err
	}

	form := casefile.FilterFormData(c.current.FormData, classification.RequiredInfo)
	casefile.ApplySuggestions(form, classification)

	rec, err := c.store.UpdateCase(ctx, c.current.ID, store.CaseUpdate{
		SetComplaintText: true,
		ComplaintText:    narrative,
		SetResearch:      true,
		Research:         classification,
		SetFormData:      true,
		FormData:         form,
		// Re-classification invalidates any previously drafted dossier.
		SetCaseData: true,
		CaseData:    nil,
	})
	if err != nil {
		c.current.ComplaintText = narrative
		return nil, fmt.Errorf("persist classification: %w", err)
	}
	rec.StatusLogs = c.current.StatusLogs
	c.current = rec
	c.publishActivity(ctx, rec, sess, "case_classified", classification.BaseJustification)
	return rec, nil
}

// SaveField merges a single intake field value into the form data. The
// persist is best-effort autosave: a store failure is logged and swallowed,
// the in-memory value stands and is retried on the next edit.
func (c *Controller) SaveField(ctx context.Context, sess *Session, fieldID, value string) error {
	if err := sess.check(); err != nil {
		return err
	}
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if c.current == nil {
		return ErrNoCaseSelected
	}
	if c.current.Research == nil {
		return fmt.Errorf("%w: no classification yet", ErrInvalidTransition)
	}
	if !casefile.HasField(c.current.Research.RequiredInfo, fieldID) {
		return fmt.Errorf("unknown field %q", fieldID)
	}

	if c.current.FormData == nil {
		c.current.FormData = make(map[string]string)
	}
	c.current.FormData[fieldID] = value

	if _, err := c.store.UpdateCase(ctx, c.current.ID, store.CaseUpdate{
		SetFormData: true,
		FormData:    c.current.FormData,
	}); err != nil {
		c.logger.Printf("autosave for case %s field %s failed: %v", c.current.CaseRef, fieldID, err)
	}
	return nil
}

// Finalize generates the dossier from the classification and the collected
// fields. Missing declared fields are a soft condition only; the engine
// drafts around them with placeholders. On failure no partial dossier is
// persisted and the case stays in intake.
func (c *Controller) Finalize(ctx context.Context, sess *Session) (*casefile.Record, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if c.current == nil {
		return nil, ErrNoCaseSelected
	}
	if c.current.Research == nil {
		return nil, fmt.Errorf("%w: finalize requires a classification", ErrInvalidTransition)
	}

	if missing := casefile.MissingFields(c.current.FormData, c.current.Research.RequiredInfo); len(missing) > 0 {
		c.logger.Printf("finalizing case %s with missing fields: %s", c.current.CaseRef, strings.Join(missing, ", "))
	}

	dossier, err := c.engine.Draft(ctx, c.current.Research.Type, c.current.FormData, c.current.Research)
	if err != nil {
		return nil, err
	}

	rec, err := c.store.UpdateCase(ctx, c.current.ID, store.CaseUpdate{
		SetCaseData: true,
		CaseData:    dossier,
	})
	if err != nil {
		return nil, fmt.Errorf("persist dossier: %w", err)
	}
	rec.StatusLogs = c.current.StatusLogs
	c.current = rec
	c.publishActivity(ctx, rec, sess, "dossier_generated", "")
	return rec, nil
}

// File marks the correspondence as formally sent: the response deadline
// starts, the escalation history is initialized and a synthetic log entry
// citing the regulatory framework is appended. On a store failure the case
// stays in the dossier phase with no log appended.
func (c *Controller) File(ctx context.Context, sess *Session) (*casefile.Record, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if c.current == nil {
		return nil, ErrNoCaseSelected
	}
	if RouteFor(c.current) != PhaseDossierReady {
		return nil, fmt.Errorf("%w: filing requires a generated dossier", ErrInvalidTransition)
	}

	deadline := c.now().Add(policy.ResponseWindow)
	caseData := *c.current.CaseData
	caseData.ResponseDeadline = &deadline
	caseData.EscalationHistory = []casefile.Escalation{}

	rec, err := c.store.UpdateCase(ctx, c.current.ID, store.CaseUpdate{
		SetCaseData: true,
		CaseData:    &caseData,
		SetStatus:   true,
		Status:      casefile.BackendComplaintSubmitted,
	})
	if err != nil {
		return nil, fmt.Errorf("persist filing: %w", err)
	}

	message := fmt.Sprintf("Case formally filed under %s. Corresponding letters sent to relevant parties.",
		c.current.Research.BaseJustification)
	entry, err := c.store.AddStatusLog(ctx, rec.ID, sess.UserID, message, false)
	if err != nil {
		// The filing itself is committed; losing the synthetic entry is
		// logged, not rolled back.
		c.logger.Printf("filing log for case %s failed: %v", rec.CaseRef, err)
	} else {
		rec.StatusLogs = append([]casefile.LogEntry{entry}, c.current.StatusLogs...)
	}

	c.current = rec
	c.publishActivity(ctx, rec, sess, "case_filed", message)
	return rec, nil
}

// LogUpdate records a communication on a filed case and runs the engine's
// assessment over it. The user's entry is committed first and is retained
// even when the analysis fails; the agent entry and any deadline or
// escalation merge only happen on success. A failure partway through skips
// the remaining steps without rolling back the ones already applied.
func (c *Controller) LogUpdate(ctx context.Context, sess *Session, updateText string) (*engine.AnalysisResult, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if c.current == nil {
		return nil, ErrNoCaseSelected
	}
	if RouteFor(c.current) != PhaseFiled {
		return nil, fmt.Errorf("%w: updates require a filed case", ErrInvalidTransition)
	}
	if strings.TrimSpace(updateText) == "" {
		return nil, fmt.Errorf("update text is empty")
	}

	// Optimistic append: the user's own entry commits before the analysis.
	userEntry, err := c.store.AddStatusLog(ctx, c.current.ID, sess.UserID, updateText, false)
	if err != nil {
		return nil, fmt.Errorf("append status log: %w", err)
	}
	c.current.StatusLogs = append([]casefile.LogEntry{userEntry}, c.current.StatusLogs...)

	analysis, err := c.engine.AnalyzeUpdate(ctx, updateText, c.current.Research, c.current.StatusLogs)
	if err != nil {
		return nil, err
	}

	agentMsg := fmt.Sprintf("[Agent Assessment] %s Recommended action: %s", analysis.Assessment, analysis.RecommendedAction)
	agentEntry, err := c.store.AddStatusLog(ctx, c.current.ID, sess.UserID, agentMsg, true)
	if err != nil {
		return analysis, fmt.Errorf("append agent log: %w", err)
	}
	c.current.StatusLogs = append([]casefile.LogEntry{agentEntry}, c.current.StatusLogs...)

	merged := policy.MergeAnalysis(*c.current.CaseData, policy.Analysis{
		ShouldEscalate:  analysis.ShouldEscalate,
		NewDeadlineDays: analysis.NewDeadlineDays,
		EscalationDraft: analysis.EscalationDraft,
		ResponseQuality: analysis.ResponseQuality,
	}, c.now())

	update := store.CaseUpdate{SetCaseData: true, CaseData: &merged}
	if analysis.ShouldEscalate {
		update.SetStatus = true
		update.Status = casefile.BackendEscalated
	}
	rec, err := c.store.UpdateCase(ctx, c.current.ID, update)
	if err != nil {
		return analysis, fmt.Errorf("persist analysis merge: %w", err)
	}
	rec.StatusLogs = c.current.StatusLogs
	c.current = rec

	if analysis.ShouldEscalate {
		if err := c.bus.PublishEscalation(ctx, bus.EscalationMessage{
			CaseID:          rec.ID,
			CaseRef:         rec.CaseRef,
			ResponseQuality: analysis.ResponseQuality,
			Draft:           analysis.EscalationDraft,
			Timestamp:       c.now().Unix(),
		}); err != nil {
			c.logger.Printf("escalation publish for case %s failed: %v", rec.CaseRef, err)
		}
	}
	return analysis, nil
}

// SendClaim dispatches the drafted correspondence through the mailer and
// appends a log entry on success. The recipient defaults to the dossier's
// recipient address when to is empty.
func (c *Controller) SendClaim(ctx context.Context, sess *Session, m mailer.Mailer, to string) (*mailer.Receipt, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	done, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if c.current == nil {
		return nil, ErrNoCaseSelected
	}
	if c.current.CaseData == nil {
		return nil, fmt.Errorf("%w: no correspondence drafted", ErrInvalidTransition)
	}

	email := c.current.CaseData.Email
	if to == "" {
		to = email.RecipientAddress
	}
	receipt, err := m.SendClaimEmail(ctx, mailer.Message{
		To:      to,
		Subject: email.Subject,
		Body:    email.Body,
		ReplyTo: sess.Email,
		CaseRef: c.current.CaseRef,
	})
	if err != nil {
		return nil, err
	}

	if entry, err := c.store.AddStatusLog(ctx, c.current.ID, sess.UserID,
		fmt.Sprintf("Claim correspondence dispatched to %s.", to), false); err != nil {
		c.logger.Printf("dispatch log for case %s failed: %v", c.current.CaseRef, err)
	} else {
		c.current.StatusLogs = append([]casefile.LogEntry{entry}, c.current.StatusLogs...)
	}
	return receipt, nil
}

// Delete removes a case after explicit confirmation and deselects it when it
// was active.
func (c *Controller) Delete(ctx context.Context, sess *Session, caseRef string, confirmed bool) error {
	if err := sess.check(); err != nil {
		return err
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	rec, err := c.store.GetCaseByRef(ctx, sess.UserID, caseRef)
	if err != nil {
		return fmt.Errorf("delete case %s: %w", caseRef, err)
	}
	if err := c.store.DeleteCase(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete case %s: %w", caseRef, err)
	}
	if c.current != nil && c.current.ID == rec.ID {
		c.current = nil
	}
	c.publishActivity(ctx, rec, sess, "case_deleted", "")
	return nil
}

// Deadline returns the countdown for the selected filed case, or false when
// no deadline is active.
func (c *Controller) Deadline() (policy.Countdown, bool) {
	if c.current == nil || c.current.CaseData == nil || c.current.CaseData.ResponseDeadline == nil {
		return policy.Countdown{}, false
	}
	return policy.DaysUntil(*c.current.CaseData.ResponseDeadline, c.now()), true
}

// publishActivity is best-effort: bus failures never fail a transition.
func (c *Controller) publishActivity(ctx context.Context, rec *casefile.Record, sess *Session, action, detail string) {
	if err := c.bus.PublishActivity(ctx, bus.ActivityMessage{
		CaseID:    rec.ID,
		CaseRef:   rec.CaseRef,
		Action:    action,
		Actor:     sess.UserID,
		Detail:    detail,
		Timestamp: c.now().Unix(),
	}); err != nil {
		c.logger.Printf("activity publish for case %s failed: %v", rec.CaseRef, err)
	}
}
