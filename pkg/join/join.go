// pkg/join/join.go
package join

import (
	"sort"

	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// KeyFunc derives the join key for a record.
type KeyFunc func(model.Record) string

// Row is one output row of the left outer join: a primary record paired
// with zero or one reference record.
type Row struct {
	Key     string
	Primary model.Record
	Ref     model.Record // nil when no reference matched
}

// Matched reports whether the row carries a reference record.
func (r Row) Matched() bool {
	return r.Ref != nil
}

// LeftOuter joins primary records against reference records on a key,
// preserving 1:N cardinality: a primary key matching K reference rows
// produces K output rows, and K=0 produces one row with a nil reference so
// the primary record is never lost.
func LeftOuter(primary []model.Record, primaryKey KeyFunc, reference []model.Record, refKey KeyFunc) []Row {
	index := make(map[string][]model.Record, len(reference))
	for _, ref := range reference {
		k := refKey(ref)
		if k == "" {
			continue
		}
		index[k] = append(index[k], ref)
	}

	rows := make([]Row, 0, len(primary))
	for _, p := range primary {
		k := primaryKey(p)
		matches := index[k]
		if len(matches) == 0 {
			rows = append(rows, Row{Key: k, Primary: p})
			continue
		}
		for _, ref := range matches {
			rows = append(rows, Row{Key: k, Primary: p, Ref: ref})
		}
	}
	return rows
}

// MultipleHoldings reports, per key, whether the raw reference dataset
// carries two or more records for it. Computed before any filtering so the
// flag is independent of which reference row later wins a tie-break.
func MultipleHoldings(reference []model.Record, refKey KeyFunc) map[string]bool {
	counts := make(map[string]int, len(reference))
	for _, ref := range reference {
		if k := refKey(ref); k != "" {
			counts[k]++
		}
	}

	multi := make(map[string]bool, len(counts))
	for k, n := range counts {
		if n >= 2 {
			multi[k] = true
		}
	}
	return multi
}

// Collapsed is the single surviving row per primary key after tie-break.
type Collapsed struct {
	Row
	CommodityMatch   bool
	MultipleHoldings bool
}

// Discard is a reference candidate dropped by the tie-break. Discards are
// handed back so the audit layer can log them instead of losing them
// silently.
type Discard struct {
	Key string
	Ref model.Record
}

// Collapse reduces a 1:N join to exactly one row per primary key. Rows are
// ordered by (key ascending, commodity match descending) and the first row
// per key survives, so a candidate with a matching commodity always beats
// one without. matchFn decides commodity match for a row and must return
// false for unmatched rows.
func Collapse(rows []Row, matchFn func(Row) bool, multi map[string]bool) ([]Collapsed, []Discard) {
	type scored struct {
		Row
		match bool
		order int
	}

	scoredRows := make([]scored, len(rows))
	for i, row := range rows {
		scoredRows[i] = scored{Row: row, match: matchFn(row), order: i}
	}

	sort.SliceStable(scoredRows, func(i, j int) bool {
		if scoredRows[i].Key != scoredRows[j].Key {
			return scoredRows[i].Key < scoredRows[j].Key
		}
		if scoredRows[i].match != scoredRows[j].match {
			return scoredRows[i].match
		}
		return scoredRows[i].order < scoredRows[j].order
	})

	collapsed := make([]Collapsed, 0, len(rows))
	discards := make([]Discard, 0)
	seen := make(map[string]bool)

	for _, sr := range scoredRows {
		if seen[sr.Key] {
			if sr.Ref != nil {
				discards = append(discards, Discard{Key: sr.Key, Ref: sr.Ref})
			}
			continue
		}
		seen[sr.Key] = true
		collapsed = append(collapsed, Collapsed{
			Row:              sr.Row,
			CommodityMatch:   sr.match,
			MultipleHoldings: multi[sr.Key],
		})
	}

	return collapsed, discards
}
