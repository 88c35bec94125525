package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := memoryStore(t)

	runID, err := store.BeginRun("triage")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.NoError(t, store.CompleteRun(runID, 120, 7))

	var row struct {
		Tool       string `db:"tool"`
		RowCount   int    `db:"row_count"`
		ErrorCount int    `db:"error_count"`
	}
	err = store.db.Get(&row,
		`SELECT tool, row_count, error_count FROM triage_runs WHERE id = ?`, runID)
	require.NoError(t, err)
	assert.Equal(t, "triage", row.Tool)
	assert.Equal(t, 120, row.RowCount)
	assert.Equal(t, 7, row.ErrorCount)
}

func TestRecordFindings(t *testing.T) {
	store := memoryStore(t)

	runID, err := store.BeginRun("triage")
	require.NoError(t, err)

	findings := []Finding{
		{RecordKey: "06-0001", Status: "ERROR", Reason: "[Duplicate RSBSA ID]", ConflictGroup: "STRICT-06-0001"},
		{RecordKey: "06-0002", Status: "ERROR", Reason: "[Identity Conflict]", ConflictGroup: "FZ-a1b2c3d4"},
	}
	require.NoError(t, store.RecordFindings(runID, findings))

	count, err := store.FindingCount(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Empty batches are a no-op, not an error.
	require.NoError(t, store.RecordFindings(runID, nil))
}

func TestRecordDiscards(t *testing.T) {
	store := memoryStore(t)

	runID, err := store.BeginRun("enrich")
	require.NoError(t, err)

	discards := []Discard{
		{RecordKey: "06-0001", Commodity: "CORN", Detail: "lost collapse to RICE parcel"},
	}
	require.NoError(t, store.RecordDiscards(runID, discards))

	var count int
	require.NoError(t, store.db.Get(&count,
		`SELECT COUNT(*) FROM join_discards WHERE run_id = ?`, runID))
	assert.Equal(t, 1, count)
}
