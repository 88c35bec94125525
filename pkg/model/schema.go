// pkg/model/schema.go
package model

import (
	"fmt"
	"strings"
)

// Field identifies a semantic field independent of how source files spell
// the column header.
type Field string

const (
	FieldID           Field = "id"
	FieldFirstName    Field = "first_name"
	FieldLastName     Field = "last_name"
	FieldBirthday     Field = "birthday"
	FieldGender       Field = "gender"
	FieldFarmer       Field = "farmer"
	FieldFarmworker   Field = "farmworker"
	FieldFisherfolk   Field = "fisherfolk"
	FieldMunicipality Field = "municipality"
	FieldBarangay     Field = "barangay"
	FieldAgency       Field = "agency"
	FieldProvince     Field = "province"
	FieldCommodity    Field = "commodity"
	FieldArea         Field = "area"
	FieldTrackDate    Field = "track_date"
	FieldVerifiedArea Field = "verified_area"
)

// FieldSpec maps a canonical field to the header shapes it accepts. Exact
// aliases are tried first; otherwise a header matches when its normalized
// form contains every keyword of any Contains predicate.
type FieldSpec struct {
	Field    Field
	Exact    []string
	Contains [][]string
}

// DefaultFieldSpecs returns the header alias table covering the column
// spellings observed across masterlist, parcel, and geotag source files.
// Order matters: fields are resolved in sequence and each claims its
// column, so FieldBirthday must claim "birthdate" before FieldTrackDate's
// broad "date" predicate gets a chance at it.
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Field: FieldID, Exact: []string{"rsbsa no", "georef id", "id"},
			Contains: [][]string{{"rsbsa"}, {"georef"}}},
		{Field: FieldLastName, Exact: []string{"last name", "lastname", "surname"},
			Contains: [][]string{{"last", "name"}}},
		{Field: FieldFirstName, Exact: []string{"first name", "firstname"},
			Contains: [][]string{{"first", "name"}}},
		{Field: FieldBirthday, Exact: []string{"birthday", "birthdate", "bday"},
			Contains: [][]string{{"birth"}}},
		{Field: FieldGender, Exact: []string{"gender", "sex"},
			Contains: [][]string{{"gender"}}},
		{Field: FieldFarmer, Exact: []string{"farmer"},
			Contains: [][]string{{"is", "farmer"}}},
		{Field: FieldFarmworker, Exact: []string{"farmworker"},
			Contains: [][]string{{"farm", "worker"}}},
		{Field: FieldFisherfolk, Exact: []string{"fisherfolk"},
			Contains: [][]string{{"fisher"}}},
		{Field: FieldMunicipality, Exact: []string{"municipality", "farmer address mun"},
			Contains: [][]string{{"mun"}}},
		{Field: FieldBarangay, Exact: []string{"barangay", "farmer address bgy"},
			Contains: [][]string{{"bgy"}, {"brgy"}, {"barangay"}}},
		{Field: FieldAgency, Exact: []string{"agency"},
			Contains: [][]string{{"agency"}}},
		{Field: FieldProvince, Exact: []string{"province"},
			Contains: [][]string{{"province"}}},
		{Field: FieldCommodity, Exact: []string{"commodity"},
			Contains: [][]string{{"commodity"}, {"crop", "type"}}},
		{Field: FieldVerifiedArea, Exact: []string{"verified area"},
			Contains: [][]string{{"verified", "area"}, {"actual", "area"}, {"measured", "area"}}},
		{Field: FieldArea, Exact: []string{"area", "crop area"},
			Contains: [][]string{{"parcel", "area"}, {"area"}}},
		{Field: FieldTrackDate, Exact: []string{"track date", "date"},
			Contains: [][]string{{"track", "date"}, {"gps", "date"}, {"date"}}},
	}
}

// Schema is the resolved mapping from semantic fields to the actual column
// names of one dataset. Resolution happens once at load time so lookups
// never repeat the heuristic header search.
type Schema struct {
	columns map[Field]string
}

// Column returns the source column backing a field.
func (s *Schema) Column(f Field) (string, bool) {
	col, ok := s.columns[f]
	return col, ok
}

// Has reports whether the field resolved to a column.
func (s *Schema) Has(f Field) bool {
	_, ok := s.columns[f]
	return ok
}

// SchemaError indicates a required column could not be located in a
// dataset. It is fatal for the run: no output may be produced after it.
type SchemaError struct {
	Dataset string
	Field   Field
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %q: no column found for required field %q (columns: %s)",
		e.Dataset, e.Field, strings.Join(e.Columns, ", "))
}

// Resolve builds the dataset's schema from the default alias table. Every
// field in required must resolve or a SchemaError is returned; all other
// known fields resolve opportunistically.
func (d *Dataset) Resolve(required ...Field) error {
	return d.ResolveWith(DefaultFieldSpecs(), required...)
}

// ResolveWith resolves the schema against an explicit alias table.
func (d *Dataset) ResolveWith(specs []FieldSpec, required ...Field) error {
	requiredSet := make(map[Field]bool, len(required))
	for _, f := range required {
		requiredSet[f] = true
	}

	claimed := make(map[string]bool, len(d.Columns))
	columns := make(map[Field]string)

	for _, spec := range specs {
		col, ok := findColumn(d.Columns, claimed, spec)
		if ok {
			columns[spec.Field] = col
			claimed[col] = true
			continue
		}
		if requiredSet[spec.Field] {
			return &SchemaError{Dataset: d.Name, Field: spec.Field, Columns: d.Columns}
		}
	}

	d.schema = &Schema{columns: columns}
	return nil
}

// findColumn locates the first unclaimed column matching the spec, exact
// aliases before keyword predicates.
func findColumn(columns []string, claimed map[string]bool, spec FieldSpec) (string, bool) {
	for _, alias := range spec.Exact {
		for _, col := range columns {
			if claimed[col] {
				continue
			}
			if normalizeHeader(col) == alias {
				return col, true
			}
		}
	}
	for _, keywords := range spec.Contains {
		for _, col := range columns {
			if claimed[col] {
				continue
			}
			if headerContainsAll(col, keywords) {
				return col, true
			}
		}
	}
	return "", false
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '.'
	}), " ")
}

func headerContainsAll(col string, keywords []string) bool {
	normalized := normalizeHeader(col)
	for _, kw := range keywords {
		if !strings.Contains(normalized, kw) {
			return false
		}
	}
	return true
}
