package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

func TestSimilarityNearDuplicateFirstNames(t *testing.T) {
	m := NewMatcher(DefaultMatcherConfig())

	score := m.Similarity("JUAN", "JUANA")
	assert.InDelta(t, 0.889, score, 0.01)
	assert.GreaterOrEqual(t, score, 0.85)
}

func TestSimilarityBounds(t *testing.T) {
	m := NewMatcher(DefaultMatcherConfig())

	assert.Equal(t, 1.0, m.Similarity("MARIA", "maria"))
	assert.Equal(t, 0.0, m.Similarity("", ""))
	assert.Equal(t, 0.0, m.Similarity("JUAN", ""))
	assert.Less(t, m.Similarity("JUAN", "PEDRO"), 0.85)
}

func TestConfirmGenderVeto(t *testing.T) {
	m := NewMatcher(DefaultMatcherConfig())

	// Similarity well above threshold, but opposite non-empty genders.
	assert.True(t, m.Similarity("JUAN", "JUANA") >= 0.85)
	assert.False(t, m.Confirm("JUAN", "JUANA", "MALE", "FEMALE"))

	// Same gender or a missing gender does not veto.
	assert.True(t, m.Confirm("JUAN", "JUANA", "MALE", "MALE"))
	assert.True(t, m.Confirm("JUAN", "JUANA", "", "FEMALE"))
	assert.True(t, m.Confirm("JUAN", "JUANA", "M", ""))
}

func TestConfirmBelowThreshold(t *testing.T) {
	m := NewMatcher(DefaultMatcherConfig())

	assert.False(t, m.Confirm("JUAN", "PEDRO", "M", "M"))
}

func TestNormalizeGender(t *testing.T) {
	assert.Equal(t, "M", NormalizeGender(" male "))
	assert.Equal(t, "F", NormalizeGender("Female"))
	assert.Equal(t, "F", NormalizeGender("F"))
	assert.Equal(t, "", NormalizeGender(""))
	assert.Equal(t, "", NormalizeGender("unknown"))
}

func TestSignatures(t *testing.T) {
	ds := model.NewDataset("masterlist",
		[]string{"RSBSA No", "Last Name", "First Name", "Birthday", "Gender"},
		[]model.Record{
			{"RSBSA No": " 06-1234 ", "Last Name": "cruz", "First Name": "Juan", "Birthday": "1990-01-01", "Gender": "M"},
			{"RSBSA No": "06-5678", "Last Name": "", "First Name": "Ana", "Birthday": "1991-02-02", "Gender": "F"},
		})
	assert.NoError(t, ds.Resolve(model.FieldID))

	assert.Equal(t, "06-1234", StrictKey(ds, ds.Rows[0]))
	assert.Equal(t, "CRUZ|1990-01-01", LooseSignature(ds, ds.Rows[0]))

	// No last name: never a fuzzy candidate.
	assert.Equal(t, "", LooseSignature(ds, ds.Rows[1]))
}
