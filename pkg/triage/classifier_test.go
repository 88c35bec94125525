package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

func masterlist(t *testing.T, rows []model.Record) *model.Dataset {
	t.Helper()
	ds := model.NewDataset("masterlist",
		[]string{"RSBSA No", "First Name", "Last Name", "Birthday", "Gender", "Farmer"},
		rows)
	require.NoError(t, ds.Resolve(model.FieldID))
	return ds
}

func TestStrictDuplicateFlagsAllInstances(t *testing.T) {
	ds := masterlist(t, []model.Record{
		{"RSBSA No": "06-0001", "Last Name": "CRUZ"},
		{"RSBSA No": "06-0002", "Last Name": "REYES"},
		{"RSBSA No": "06-0001", "Last Name": "SANTOS"},
	})

	entries := NewClassifier(nil, nil).Triage(ds)

	assert.Equal(t, StatusError, entries[0].Status)
	assert.Equal(t, StatusClean, entries[1].Status)
	assert.Equal(t, StatusError, entries[2].Status)
	assert.Equal(t, "STRICT-06-0001", entries[0].ConflictGroup)
	assert.Equal(t, "STRICT-06-0001", entries[2].ConflictGroup)
	assert.Equal(t, "[Duplicate RSBSA ID]", entries[0].ErrorTag())
	assert.Empty(t, entries[1].ConflictGroup)
}

func TestIdentityConflictSharedGroup(t *testing.T) {
	// End-to-end fuzzy scenario: same last name and birthday, first names
	// JUAN vs JUANA (similarity =0.89), same gender.
	ds := masterlist(t, []model.Record{
		{"RSBSA No": "1", "First Name": "JUAN", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M"},
		{"RSBSA No": "2", "First Name": "JUANA", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M"},
	})

	entries := NewClassifier(nil, nil).Triage(ds)

	assert.Equal(t, StatusError, entries[0].Status)
	assert.Equal(t, StatusError, entries[1].Status)
	assert.Contains(t, entries[0].ErrorTag(), "[Identity Conflict]")
	assert.Contains(t, entries[1].ErrorTag(), "[Identity Conflict]")
	assert.NotEmpty(t, entries[0].ConflictGroup)
	assert.Equal(t, entries[0].ConflictGroup, entries[1].ConflictGroup)
}

func TestIdentityConflictGenderVeto(t *testing.T) {
	ds := masterlist(t, []model.Record{
		{"RSBSA No": "1", "First Name": "JUAN", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M"},
		{"RSBSA No": "2", "First Name": "JUANA", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "F"},
	})

	entries := NewClassifier(nil, nil).Triage(ds)

	assert.Equal(t, StatusClean, entries[0].Status)
	assert.Equal(t, StatusClean, entries[1].Status)
}

func TestIdentityConflictTransitiveLinking(t *testing.T) {
	// Three mutually similar records sharing a signature end up in one
	// group through shared pair membership.
	ds := masterlist(t, []model.Record{
		{"RSBSA No": "1", "First Name": "MARIA", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "F"},
		{"RSBSA No": "2", "First Name": "MARIAH", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "F"},
		{"RSBSA No": "3", "First Name": "MARIAM", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "F"},
	})

	entries := NewClassifier(nil, nil).Triage(ds)

	for _, e := range entries {
		assert.Equal(t, StatusError, e.Status)
		assert.Equal(t, entries[0].ConflictGroup, e.ConflictGroup)
	}
}

func TestStrictDuplicatesExcludedFromFuzzyPass(t *testing.T) {
	ds := masterlist(t, []model.Record{
		{"RSBSA No": "1", "First Name": "JUAN", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M"},
		{"RSBSA No": "1", "First Name": "JUAN", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M"},
		{"RSBSA No": "2", "First Name": "JUANA", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M"},
	})

	entries := NewClassifier(nil, nil).Triage(ds)

	// The two strict duplicates stay in their strict group; the third
	// record has no still-CLEAN partner left, so it stays clean.
	assert.Equal(t, "STRICT-1", entries[0].ConflictGroup)
	assert.Equal(t, "STRICT-1", entries[1].ConflictGroup)
	assert.Equal(t, StatusClean, entries[2].Status)
}

func TestBioDataMismatch(t *testing.T) {
	ds := masterlist(t, []model.Record{
		{"RSBSA No": "1", "First Name": "JUAN", "Last Name": "CRUZ", "Birthday": "1990-01-01", "Gender": "M", "Farmer": "YES"},
		{"RSBSA No": "2", "First Name": "ANA", "Last Name": "REYES", "Birthday": "1992-05-05", "Gender": "F", "Farmer": "YES"},
		{"RSBSA No": "3", "First Name": "PEDRO", "Last Name": "TAN", "Birthday": "1980-03-03", "Gender": "M", "Farmer": ""},
	})
	ref := model.NewDataset("parcel",
		[]string{"RSBSA No", "Birthday", "Gender", "Farmer"},
		[]model.Record{
			{"RSBSA No": "1", "Birthday": "1991-01-01", "Gender": "M", "Farmer": "NO"},
			{"RSBSA No": "2", "Birthday": "05/05/1992", "Gender": "female", "Farmer": "yes"},
			{"RSBSA No": "3", "Birthday": "", "Gender": "M", "Farmer": "YES"},
		})
	require.NoError(t, ref.Resolve(model.FieldID))

	c := NewClassifier(nil, nil)
	entries := c.Triage(ds)
	matched := map[string]model.Record{
		"1": ref.Rows[0],
		"2": ref.Rows[1],
		"3": ref.Rows[2],
	}
	c.CheckBioData(ds, ref, entries, matched, nil)

	// Record 1: birthday and farmer flag both differ.
	assert.Equal(t, StatusError, entries[0].Status)
	assert.Len(t, entries[0].Mismatches, 2)
	tag := entries[0].ErrorTag()
	assert.Contains(t, tag, "[Data Mismatch]")
	assert.Contains(t, tag, "BIRTHDAY (1990-01-01 != 1991-01-01)")
	assert.Contains(t, tag, "FARMER (YES != NO)")

	// Record 2: equivalent values across formats and casing.
	assert.Equal(t, StatusClean, entries[1].Status)

	// Record 3: empty-vs-present is never a mismatch.
	assert.Equal(t, StatusClean, entries[2].Status)
}

func TestErrorTagAccumulation(t *testing.T) {
	e := &Entry{Status: StatusClean}
	e.Flag(ReasonDuplicateID, "STRICT-1")
	e.Flag(ReasonIdentityConflict, "FZ-xyz")
	e.Flag(ReasonDuplicateID, "STRICT-1") // deduplicated

	assert.Equal(t, "[Duplicate RSBSA ID] [Identity Conflict]", e.ErrorTag())
	// First flag decides the group.
	assert.Equal(t, "STRICT-1", e.ConflictGroup)
}
