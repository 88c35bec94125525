// pkg/model/record.go
package model

// Record is a single row: a mapping from source column name to a scalar
// value (string, number, time.Time, or nil for missing).
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered sequence of records sharing a column set.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Record

	schema *Schema
}

// NewDataset creates a dataset from a column list and rows.
func NewDataset(name string, columns []string, rows []Record) *Dataset {
	if rows == nil {
		rows = make([]Record, 0)
	}
	return &Dataset{
		Name:    name,
		Columns: columns,
		Rows:    rows,
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Append adds a row to the dataset.
func (d *Dataset) Append(r Record) {
	d.Rows = append(d.Rows, r)
}

// Schema returns the resolved schema, or nil if Resolve was never called.
func (d *Dataset) Schema() *Schema {
	return d.schema
}

// Value returns the raw value of a semantic field for the given row.
// Returns nil when the field did not resolve or the cell is absent.
func (d *Dataset) Value(row Record, f Field) interface{} {
	if d.schema == nil {
		return nil
	}
	col, ok := d.schema.Column(f)
	if !ok {
		return nil
	}
	return row[col]
}

// Text returns the trimmed string form of a semantic field for the given
// row. Absent and nil cells render as "".
func (d *Dataset) Text(row Record, f Field) string {
	return TrimmedString(d.Value(row, f))
}
