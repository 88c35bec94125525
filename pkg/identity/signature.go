// pkg/identity/signature.go
package identity

import (
	"strings"

	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// StrictKey derives the exact comparison key for a record: the uppercased,
// trimmed unique-identifier value. Two records with equal strict keys are
// exact duplicates.
func StrictKey(ds *model.Dataset, row model.Record) string {
	return strings.ToUpper(ds.Text(row, model.FieldID))
}

// LooseSignature derives the coarse identity key used to pre-filter fuzzy
// conflict candidates: uppercased last name plus the raw birthdate text.
// Records without a last name get an empty signature and are never
// candidates, so blank rows cannot bucket together.
func LooseSignature(ds *model.Dataset, row model.Record) string {
	last := strings.ToUpper(ds.Text(row, model.FieldLastName))
	if last == "" {
		return ""
	}
	return last + "|" + ds.Text(row, model.FieldBirthday)
}

// NormalizeGender collapses a gender cell to "M", "F", or "" when absent or
// unrecognized.
func NormalizeGender(v string) string {
	s := strings.ToUpper(strings.TrimSpace(v))
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "M"):
		return "M"
	case strings.HasPrefix(s, "F"):
		return "F"
	default:
		return ""
	}
}
