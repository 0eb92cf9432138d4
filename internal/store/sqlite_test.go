package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalease/legalease/internal/casefile"
)

func TestNewStore(t *testing.T) {
	// Test creating a new store with in-memory database
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify tables were created
	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "Expected tables to be created")
}

func TestCreateCase(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	research := &casefile.Classification{
		Type:              "FLIGHT_CANCELLATION",
		BaseJustification: "EU Regulation 261/2004",
		Summary:           "Cancelled flight, no re-routing",
		RequiredInfo: []casefile.Field{
			{ID: "flight_number", Label: "Flight number", Type: casefile.FieldText},
		},
	}

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-3456", "My flight was cancelled", research)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "LE-AB12-3456", rec.CaseRef)
	assert.Equal(t, casefile.BackendCreated, rec.BackendStatus)
	assert.Equal(t, casefile.StatusDraft, rec.Status())
	assert.Equal(t, "My flight was cancelled", rec.ComplaintText)
	require.NotNil(t, rec.Research)
	assert.Equal(t, "FLIGHT_CANCELLATION", rec.Research.Type)
	assert.Nil(t, rec.CaseData)

	// Verify row exists
	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM cases WHERE id = ?", rec.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateCase_EmptyResearchStoredAsEmptyObject(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-0001", "", nil)
	require.NoError(t, err)
	assert.Nil(t, rec.Research)
	assert.Nil(t, rec.CaseData)
	assert.NotNil(t, rec.FormData)
	assert.Empty(t, rec.FormData)

	// The stored JSON column holds "{}" for never-computed values and the
	// round trip collapses it back to nil.
	var raw string
	err = store.db.QueryRow("SELECT research FROM cases WHERE id = ?", rec.ID).Scan(&raw)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)

	got, err := store.GetCase(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Research)
}

func TestGetCaseByRef(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-7777", "complaint", nil)
	require.NoError(t, err)

	got, err := store.GetCaseByRef(ctx, "user-1", "LE-AB12-7777")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	// Another user does not see the case
	_, err = store.GetCaseByRef(ctx, "user-2", "LE-AB12-7777")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetCaseByRef(ctx, "user-1", "LE-XXXX-0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCases(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	refs := []string{"LE-AB12-0001", "LE-AB12-0002", "LE-AB12-0003"}
	for i, ref := range refs {
		rec, err := store.CreateCase(ctx, "user-1", ref, fmt.Sprintf("complaint %d", i+1), nil)
		require.NoError(t, err)
		// Space out created_at so ordering is deterministic
		_, err = store.db.ExecContext(ctx, "UPDATE cases SET created_at = ? WHERE id = ?",
			time.Now().Add(time.Duration(i)*time.Minute).UnixMilli(), rec.ID)
		require.NoError(t, err)
	}

	// One case for a different user must not appear
	_, err = store.CreateCase(ctx, "user-2", "LE-CD34-0001", "other", nil)
	require.NoError(t, err)

	cases, err := store.ListCases(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, cases, 3)

	// Verify cases are sorted by created_at DESC
	assert.Equal(t, "LE-AB12-0003", cases[0].CaseRef) // Most recent
	assert.Equal(t, "LE-AB12-0002", cases[1].CaseRef)
	assert.Equal(t, "LE-AB12-0001", cases[2].CaseRef) // Oldest
}

func TestUpdateCase_PartialFields(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-0010", "original", &casefile.Classification{
		Type:              "FAULTY_GOODS",
		BaseJustification: "Consumer Rights Act 2015",
		Summary:           "summary",
	})
	require.NoError(t, err)

	// Update only the form data; research and complaint stay untouched.
	got, err := store.UpdateCase(ctx, rec.ID, CaseUpdate{
		SetFormData: true,
		FormData:    map[string]string{"order_number": "NV-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "original", got.ComplaintText)
	require.NotNil(t, got.Research)
	assert.Equal(t, "FAULTY_GOODS", got.Research.Type)
	assert.Equal(t, "NV-1", got.FormData["order_number"])

	// Clearing case data is distinct from not touching it.
	deadline := time.Now().Add(24 * time.Hour)
	got, err = store.UpdateCase(ctx, rec.ID, CaseUpdate{
		SetCaseData: true,
		CaseData: &casefile.Dossier{
			Title:            "Dossier",
			ResponseDeadline: &deadline,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, got.CaseData)

	got, err = store.UpdateCase(ctx, rec.ID, CaseUpdate{SetCaseData: true, CaseData: nil})
	require.NoError(t, err)
	assert.Nil(t, got.CaseData)
}

func TestUpdateCase_Status(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-0020", "complaint", nil)
	require.NoError(t, err)

	got, err := store.UpdateCase(ctx, rec.ID, CaseUpdate{
		SetStatus: true,
		Status:    casefile.BackendComplaintSubmitted,
	})
	require.NoError(t, err)
	assert.Equal(t, casefile.BackendComplaintSubmitted, got.BackendStatus)
	assert.Equal(t, casefile.StatusSubmitted, got.Status())
	assert.GreaterOrEqual(t, got.UpdatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli())
}

func TestUpdateCase_NotFound(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.UpdateCase(context.Background(), "missing-id", CaseUpdate{
		SetStatus: true,
		Status:    casefile.BackendClosed,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCase_RemovesStatusLogs(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-0030", "complaint", nil)
	require.NoError(t, err)

	_, err = store.AddStatusLog(ctx, rec.ID, "user-1", "first entry", false)
	require.NoError(t, err)
	_, err = store.AddStatusLog(ctx, rec.ID, "user-1", "second entry", true)
	require.NoError(t, err)

	require.NoError(t, store.DeleteCase(ctx, rec.ID))

	_, err = store.GetCase(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var logCount int
	err = store.db.QueryRow("SELECT COUNT(*) FROM status_logs WHERE case_id = ?", rec.ID).Scan(&logCount)
	require.NoError(t, err)
	assert.Equal(t, 0, logCount)
}

func TestStatusLogs_NewestFirst(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-0040", "complaint", nil)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		entry, err := store.AddStatusLog(ctx, rec.ID, "user-1", fmt.Sprintf("entry %d", i), i%2 == 0)
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, fmt.Sprintf("entry %d", i), entry.Message)
	}

	logs, err := store.GetStatusLogs(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Newest first; ties broken by insertion order
	assert.Equal(t, "entry 3", logs[0].Message)
	assert.Equal(t, "entry 2", logs[1].Message)
	assert.Equal(t, "entry 1", logs[2].Message)
	assert.True(t, logs[1].IsAgent)
	assert.False(t, logs[0].IsAgent)

	// Existing entries are never rewritten by later appends
	before := logs[2]
	_, err = store.AddStatusLog(ctx, rec.ID, "user-1", "entry 4", false)
	require.NoError(t, err)

	logs, err = store.GetStatusLogs(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, "entry 4", logs[0].Message)
	assert.Equal(t, before.ID, logs[3].ID)
	assert.Equal(t, before.Message, logs[3].Message)
}

func TestCaseRefUnique(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, err = store.CreateCase(ctx, "user-1", "LE-AB12-0050", "a", nil)
	require.NoError(t, err)

	_, err = store.CreateCase(ctx, "user-1", "LE-AB12-0050", "b", nil)
	assert.Error(t, err)
}

func TestDatabaseIndexes(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.db.Query("SELECT name FROM sqlite_master WHERE type='index' AND name LIKE 'idx_%'")
	require.NoError(t, err)
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var indexName string
		err := rows.Scan(&indexName)
		require.NoError(t, err)
		indexes = append(indexes, indexName)
	}

	expectedIndexes := []string{
		"idx_cases_user_id",
		"idx_cases_case_ref",
		"idx_cases_created_at",
		"idx_status_logs_case_id",
	}
	for _, expectedIndex := range expectedIndexes {
		assert.Contains(t, indexes, expectedIndex, "Expected index %s to exist", expectedIndex)
	}
}

func BenchmarkAddStatusLog(b *testing.B) {
	store, err := NewStore(":memory:")
	require.NoError(b, err)
	defer store.Close()

	ctx := context.Background()
	rec, err := store.CreateCase(ctx, "user-1", "LE-AB12-9999", "bench", nil)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := store.AddStatusLog(ctx, rec.ID, "user-1", "benchmark entry", false)
		require.NoError(b, err)
	}
}
