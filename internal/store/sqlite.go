package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalease/legalease/internal/casefile"
)

// ErrNotFound is returned when a case lookup matches no row.
var ErrNotFound = errors.New("case not found")

// Store is the SQLite-backed case store.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if necessary) the case database at dbPath and
// runs migrations.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dbPath+"?_journal_mode=WAL&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		// Cases table. research/form_data/case_data are JSON documents; an
		// empty object means "never computed" and normalizes to nil on read.
		`CREATE TABLE IF NOT EXISTS cases (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			case_ref TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'created',
			complaint_text TEXT NOT NULL DEFAULT '',
			research TEXT NOT NULL DEFAULT '{}',
			form_data TEXT NOT NULL DEFAULT '{}',
			case_data TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Status logs are append-only: the store exposes no update or delete
		// statement for this table.
		`CREATE TABLE IF NOT EXISTS status_logs (
			id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			is_agent INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cases_user_id ON cases(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_case_ref ON cases(case_ref)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_created_at ON cases(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_status_logs_case_id ON status_logs(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_status_logs_created_at ON status_logs(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// CaseUpdate carries a partial update. Only fields with their Set flag raised
// are written; this mirrors the backend's PATCH semantics and lets callers
// explicitly clear research or case_data.
type CaseUpdate struct {
	SetComplaintText bool
	ComplaintText    string

	SetResearch bool
	Research    *casefile.Classification

	SetFormData bool
	FormData    map[string]string

	SetCaseData bool
	CaseData    *casefile.Dossier

	SetStatus bool
	Status    string
}

// CreateCase inserts a new case for userID and returns the stored record.
func (s *Store) CreateCase(ctx context.Context, userID, caseRef, complaintText string, research *casefile.Classification) (*casefile.Record, error) {
	id := uuid.NewString()
	now := time.Now()

	researchJSON, err := marshalResearch(research)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal research: %w", err)
	}

	query := `INSERT INTO cases (
		id, user_id, case_ref, status, complaint_text, research, form_data, case_data, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, '{}', '{}', ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		id, userID, caseRef, casefile.BackendCreated, complaintText, researchJSON,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	return s.GetCase(ctx, id)
}

// GetCase returns one case by row id.
func (s *Store) GetCase(ctx context.Context, id string) (*casefile.Record, error) {
	row := s.db.QueryRowContext(ctx, selectCase+` WHERE id = ?`, id)
	return s.scanCase(row)
}

// GetCaseByRef returns one of a user's cases by its human-readable reference.
func (s *Store) GetCaseByRef(ctx context.Context, userID, caseRef string) (*casefile.Record, error) {
	row := s.db.QueryRowContext(ctx, selectCase+` WHERE user_id = ? AND case_ref = ?`, userID, caseRef)
	return s.scanCase(row)
}

// ListCases returns all cases for a user, most recent first.
func (s *Store) ListCases(ctx context.Context, userID string) ([]*casefile.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectCase+` WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	var cases []*casefile.Record
	for rows.Next() {
		rec, err := s.scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}
	return cases, nil
}

// UpdateCase applies a partial update to a case and returns the fresh record.
func (s *Store) UpdateCase(ctx context.Context, id string, update CaseUpdate) (*casefile.Record, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().Unix()}

	if update.SetComplaintText {
		sets = append(sets, "complaint_text = ?")
		args = append(args, update.ComplaintText)
	}
	if update.SetResearch {
		j, err := marshalResearch(update.Research)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal research: %w", err)
		}
		sets = append(sets, "research = ?")
		args = append(args, j)
	}
	if update.SetFormData {
		form := update.FormData
		if form == nil {
			form = map[string]string{}
		}
		j, err := json.Marshal(form)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal form data: %w", err)
		}
		sets = append(sets, "form_data = ?")
		args = append(args, string(j))
	}
	if update.SetCaseData {
		j, err := marshalCaseData(update.CaseData)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal case data: %w", err)
		}
		sets = append(sets, "case_data = ?")
		args = append(args, j)
	}
	if update.SetStatus {
		sets = append(sets, "status = ?")
		args = append(args, update.Status)
	}

	args = append(args, id)
	query := `UPDATE cases SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return s.GetCase(ctx, id)
}

// DeleteCase removes a case and its status logs in one transaction.
func (s *Store) DeleteCase(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	rollback := func(e error) error {
		_ = tx.Rollback()
		return e
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM status_logs WHERE case_id = ?`, id); err != nil {
		return rollback(fmt.Errorf("delete status logs for case %s: %w", id, err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id); err != nil {
		return rollback(fmt.Errorf("delete case %s: %w", id, err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AddStatusLog appends one entry to a case's status log. Entries are never
// edited or removed afterwards.
func (s *Store) AddStatusLog(ctx context.Context, caseID, userID, message string, isAgent bool) (casefile.LogEntry, error) {
	entry := casefile.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Message:   message,
		IsAgent:   isAgent,
	}

	agent := 0
	if isAgent {
		agent = 1
	}
	query := `INSERT INTO status_logs (id, case_id, user_id, message, is_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, caseID, userID, entry.Message, agent, entry.Timestamp.UnixMilli())
	if err != nil {
		return casefile.LogEntry{}, fmt.Errorf("failed to add status log: %w", err)
	}
	return entry, nil
}

// GetStatusLogs returns a case's log entries, newest first. The persisted
// creation times are authoritative; callers must not reorder the result.
func (s *Store) GetStatusLogs(ctx context.Context, caseID string) ([]casefile.LogEntry, error) {
	query := `SELECT id, message, is_agent, created_at FROM status_logs
		WHERE case_id = ? ORDER BY created_at DESC, rowid DESC`
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status logs: %w", err)
	}
	defer rows.Close()

	var logs []casefile.LogEntry
	for rows.Next() {
		var entry casefile.LogEntry
		var agent int
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.Message, &agent, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		entry.IsAgent = agent != 0
		entry.Timestamp = time.UnixMilli(createdAt)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status logs: %w", err)
	}
	return logs, nil
}

const selectCase = `SELECT id, case_ref, status, complaint_text, research, form_data, case_data, created_at, updated_at FROM cases`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanCase(row rowScanner) (*casefile.Record, error) {
	var rec casefile.Record
	var researchJSON, formJSON, caseDataJSON string
	var createdAt, updatedAt int64

	err := row.Scan(&rec.ID, &rec.CaseRef, &rec.BackendStatus, &rec.ComplaintText,
		&researchJSON, &formJSON, &caseDataJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan case: %w", err)
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)

	if rec.Research, err = casefile.DecodeClassification([]byte(researchJSON)); err != nil {
		return nil, fmt.Errorf("case %s: %w", rec.ID, err)
	}
	if rec.FormData, err = casefile.DecodeFormData([]byte(formJSON)); err != nil {
		return nil, fmt.Errorf("case %s: %w", rec.ID, err)
	}
	if rec.CaseData, err = casefile.DecodeDossier([]byte(caseDataJSON)); err != nil {
		return nil, fmt.Errorf("case %s: %w", rec.ID, err)
	}

	return &rec, nil
}

// Nil research/case_data is stored as the empty object so the columns keep
// their NOT NULL JSON shape.

func marshalResearch(c *casefile.Classification) (string, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func marshalCaseData(d *casefile.Dossier) (string, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
