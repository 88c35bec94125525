package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHeaderVariants(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		field   Field
		want    string
	}{
		{"exact", []string{"RSBSA No"}, FieldID, "RSBSA No"},
		{"underscored", []string{"rsbsa_no"}, FieldID, "rsbsa_no"},
		{"georef", []string{"GEOREF ID"}, FieldID, "GEOREF ID"},
		{"keyword", []string{"FARMER LAST NAME"}, FieldLastName, "FARMER LAST NAME"},
		{"municipality", []string{"Farmer Address Mun"}, FieldMunicipality, "Farmer Address Mun"},
		{"birthdate", []string{"BIRTHDATE"}, FieldBirthday, "BIRTHDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := NewDataset("test", tt.columns, nil)
			require.NoError(t, ds.Resolve(tt.field))
			col, ok := ds.Schema().Column(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, col)
		})
	}
}

func TestResolveClaimsColumnsInOrder(t *testing.T) {
	// "Birthdate" must go to the birthday field, leaving the broad "date"
	// predicate of the track-date field to claim "GPS Date".
	ds := NewDataset("geotag", []string{"GEOREF ID", "Birthdate", "GPS Date"}, nil)
	require.NoError(t, ds.Resolve(FieldID))

	bday, ok := ds.Schema().Column(FieldBirthday)
	require.True(t, ok)
	assert.Equal(t, "Birthdate", bday)

	track, ok := ds.Schema().Column(FieldTrackDate)
	require.True(t, ok)
	assert.Equal(t, "GPS Date", track)
}

func TestResolveMissingRequiredField(t *testing.T) {
	ds := NewDataset("masterlist", []string{"Remarks"}, nil)
	err := ds.Resolve(FieldID)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "masterlist", schemaErr.Dataset)
	assert.Equal(t, FieldID, schemaErr.Field)
}

func TestParseFloatInvalidIsNotZero(t *testing.T) {
	_, ok := ParseFloat("ID NOT FOUND")
	assert.False(t, ok)
	_, ok = ParseFloat("")
	assert.False(t, ok)
	_, ok = ParseFloat(nil)
	assert.False(t, ok)

	v, ok := ParseFloat("1,250.75")
	require.True(t, ok)
	assert.InDelta(t, 1250.75, v, 1e-9)
}

func TestParseTimeFormats(t *testing.T) {
	want := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"1990-01-02", "01/02/1990", "1/2/1990", "Jan 2, 1990"} {
		got, ok := ParseTime(raw)
		require.True(t, ok, raw)
		assert.True(t, got.Equal(want), raw)
	}

	_, ok := ParseTime("not a date")
	assert.False(t, ok)
}

func TestParseFlag(t *testing.T) {
	assert.True(t, ParseFlag("YES"))
	assert.True(t, ParseFlag("yes "))
	assert.True(t, ParseFlag("TRUE"))
	assert.False(t, ParseFlag("NO"))
	assert.False(t, ParseFlag(""))
	assert.False(t, ParseFlag(nil))
}
