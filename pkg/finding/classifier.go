// pkg/finding/classifier.go
package finding

import (
	"strconv"
	"time"
)

// AreaKind distinguishes a numeric reference area from the two sentinel
// states produced by enrichment. Invalid is a real state here, not zero.
type AreaKind int

const (
	// AreaNumeric carries the matched reference parcel's area.
	AreaNumeric AreaKind = iota
	// AreaNotFound means no reference parcel matched the record's key.
	AreaNotFound
	// AreaMismatch means a parcel matched but its normalized commodity
	// disagreed with the record's.
	AreaMismatch
)

// Sentinel strings written to the final area column.
const (
	SentinelIDNotFound        = "ID NOT FOUND"
	SentinelCommodityMismatch = "COMMODITY MISMATCH"
)

// AreaValue is the resolved final-area cell of an enriched record.
type AreaValue struct {
	Kind     AreaKind
	Hectares float64
}

// NumericArea wraps a parsed reference area.
func NumericArea(ha float64) AreaValue {
	return AreaValue{Kind: AreaNumeric, Hectares: ha}
}

// String renders the cell the way the output sheet carries it.
func (a AreaValue) String() string {
	switch a.Kind {
	case AreaNotFound:
		return SentinelIDNotFound
	case AreaMismatch:
		return SentinelCommodityMismatch
	default:
		return strconv.FormatFloat(a.Hectares, 'f', -1, 64)
	}
}

// Verdict is the per-record audit finding.
type Verdict string

const (
	VerdictInvalidDate Verdict = "INVALID DATE"
	VerdictNoCropArea  Verdict = "NO CROP AREA"
	VerdictAbove       Verdict = "ABOVE"
	VerdictOK          Verdict = "OK"
)

// ClassifierConfig holds the fixed rule parameters.
type ClassifierConfig struct {
	// DateCutoff: track dates strictly before this are invalid.
	DateCutoff time.Time
	// AreaToleranceHa is how far the verified measurement may exceed the
	// reference area before the record is flagged ABOVE.
	AreaToleranceHa float64
}

// DefaultClassifierConfig returns the production rule parameters.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		DateCutoff:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AreaToleranceHa: 2.0,
	}
}

// Classifier produces the per-record verdict over an enriched row. It is a
// pure function of (track date, resolved area, verified area); rules are
// evaluated strictly in priority order.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with the given parameters.
func NewClassifier(config ClassifierConfig) *Classifier {
	if config.AreaToleranceHa == 0 {
		config.AreaToleranceHa = DefaultClassifierConfig().AreaToleranceHa
	}
	return &Classifier{config: config}
}

// Classify evaluates the finding rules.
//
// trackDateOK and verifiedOK report whether the respective source cells
// parsed; an unparseable cell must branch here, never arrive as zero.
func (c *Classifier) Classify(trackDate time.Time, trackDateOK bool, area AreaValue, verifiedArea float64, verifiedOK bool) Verdict {
	if !trackDateOK || trackDate.Before(c.config.DateCutoff) {
		return VerdictInvalidDate
	}

	if area.Kind != AreaNumeric {
		return VerdictNoCropArea
	}

	if verifiedOK && verifiedArea > area.Hectares+c.config.AreaToleranceHa {
		return VerdictAbove
	}

	return VerdictOK
}
