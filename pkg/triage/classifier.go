// pkg/triage/classifier.go
package triage

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rsbsa-tools/registry-triage/pkg/dedupe"
	"github.com/rsbsa-tools/registry-triage/pkg/identity"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// DefaultIntegrityFields is the whitelist of bio-data fields compared
// against the reference source. Name and address fields are deliberately
// excluded: spelling variation there produces unacceptable false-positive
// rates.
func DefaultIntegrityFields() []model.Field {
	return []model.Field{
		model.FieldBirthday,
		model.FieldGender,
		model.FieldFarmer,
		model.FieldFarmworker,
		model.FieldFisherfolk,
	}
}

// Classifier runs the CLEAN/ERROR triage passes over a primary dataset.
type Classifier struct {
	matcher *identity.Matcher
	logger  *zap.Logger
}

// NewClassifier creates a triage classifier.
func NewClassifier(matcher *identity.Matcher, logger *zap.Logger) *Classifier {
	if matcher == nil {
		matcher = identity.NewMatcher(identity.DefaultMatcherConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{matcher: matcher, logger: logger}
}

// Triage runs the pre-join passes (strict duplicates, fuzzy identity
// conflicts) over every row of the primary dataset and returns one entry
// per row, in input order.
func (c *Classifier) Triage(ds *model.Dataset) []*Entry {
	entries := make([]*Entry, 0, ds.Len())
	for _, row := range ds.Rows {
		entries = append(entries, &Entry{
			Row:       row,
			Key:       identity.StrictKey(ds, row),
			Signature: identity.LooseSignature(ds, row),
			FirstName: ds.Text(row, model.FieldFirstName),
			Gender:    ds.Text(row, model.FieldGender),
			Status:    StatusClean,
		})
	}

	c.flagStrictDuplicates(ds, entries)
	c.flagIdentityConflicts(entries)

	return entries
}

// flagStrictDuplicates marks every record whose strict key is shared. All
// instances are surfaced for audit, not just the extras.
func (c *Classifier) flagStrictDuplicates(ds *model.Dataset, entries []*Entry) {
	result := dedupe.Dedupe(ds.Rows, func(r model.Record) string {
		return identity.StrictKey(ds, r)
	}, dedupe.FlagAll, nil)

	if len(result.DuplicateKeys) == 0 {
		return
	}

	for _, e := range entries {
		if _, dup := result.DuplicateKeys[e.Key]; dup {
			e.Flag(ReasonDuplicateID, "STRICT-"+e.Key)
		}
	}

	c.logger.Info("Flagged strict duplicates",
		zap.Int("duplicateKeys", len(result.DuplicateKeys)),
		zap.Int("recordsFlagged", len(result.Flagged)))
}

// flagIdentityConflicts compares, pairwise, records that were still CLEAN
// after the strict pass and share a loose signature. Matching is pairwise
// only: records join an existing conflict group when one side already has
// one, but no transitive closure is computed beyond the checked pairs.
func (c *Classifier) flagIdentityConflicts(entries []*Entry) {
	buckets := make(map[string][]*Entry)
	for _, e := range entries {
		if e.Status != StatusClean || e.Signature == "" {
			continue
		}
		buckets[e.Signature] = append(buckets[e.Signature], e)
	}

	flagged := 0
	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if !c.matcher.Confirm(a.FirstName, b.FirstName, a.Gender, b.Gender) {
					continue
				}
				group := a.ConflictGroup
				if group == "" {
					group = b.ConflictGroup
				}
				if group == "" {
					group = "FZ-" + uuid.NewString()[:8]
				}
				a.Flag(ReasonIdentityConflict, group)
				b.Flag(ReasonIdentityConflict, group)
				flagged += 2
			}
		}
	}

	if flagged > 0 {
		c.logger.Info("Flagged identity conflicts", zap.Int("recordsFlagged", flagged))
	}
}

// CheckBioData runs the post-join integrity pass: for each still-CLEAN
// entry with a matched reference record, compare the whitelisted fields and
// flag a mismatch when both sides are non-empty and disagree. Empty against
// anything is never a mismatch.
func (c *Classifier) CheckBioData(
	primary, reference *model.Dataset,
	entries []*Entry,
	matchedRef map[string]model.Record,
	fields []model.Field,
) {
	if fields == nil {
		fields = DefaultIntegrityFields()
	}

	flagged := 0
	for _, e := range entries {
		if e.Status != StatusClean {
			continue
		}
		ref, ok := matchedRef[e.Key]
		if !ok {
			continue
		}

		for _, f := range fields {
			pv := primary.Text(e.Row, f)
			rv := reference.Text(ref, f)
			if pv == "" || rv == "" {
				continue
			}
			if f == model.FieldGender && genderEqual(pv, rv) {
				continue
			}
			if bioEqual(pv, rv) {
				continue
			}
			e.Flag(ReasonDataMismatch, "MISMATCH-"+e.Key)
			e.Mismatches = append(e.Mismatches, Mismatch{Field: f, Primary: pv, Reference: rv})
		}
		if e.Status == StatusError {
			flagged++
		}
	}

	if flagged > 0 {
		c.logger.Info("Flagged bio-data mismatches", zap.Int("recordsFlagged", flagged))
	}
}

// bioEqual compares two bio-data cells case- and whitespace-insensitively.
// Cells that both parse as dates compare as dates, so format variation
// between sources ("1990-01-01" vs "01/01/1990") is not a mismatch.
func bioEqual(a, b string) bool {
	if strings.EqualFold(collapseSpaces(a), collapseSpaces(b)) {
		return true
	}
	ta, okA := model.ParseTime(a)
	tb, okB := model.ParseTime(b)
	if okA && okB {
		return ta.Equal(tb)
	}
	return false
}

// genderEqual compares gender cells through normalization so "F" and
// "Female" agree across sources.
func genderEqual(a, b string) bool {
	ga, gb := identity.NormalizeGender(a), identity.NormalizeGender(b)
	if ga != "" && gb != "" {
		return ga == gb
	}
	return bioEqual(a, b)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
