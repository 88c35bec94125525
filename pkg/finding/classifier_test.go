package finding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testClassifier() *Classifier {
	return NewClassifier(ClassifierConfig{
		DateCutoff:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AreaToleranceHa: 2.0,
	})
}

func TestNormalizeCommodity(t *testing.T) {
	assert.Equal(t, CommodityRice, NormalizeCommodity("Palay"))
	assert.Equal(t, CommodityRice, NormalizeCommodity("RICE"))
	assert.Equal(t, CommodityRice, NormalizeCommodity("rice grain"))
	assert.Equal(t, CommodityCorn, NormalizeCommodity("Yellow Corn"))
	assert.Equal(t, CommoditySugar, NormalizeCommodity("sugarcane"))
	assert.Equal(t, CommodityOther, NormalizeCommodity("Bananas"))
	assert.Equal(t, CommodityOther, NormalizeCommodity(""))
}

func TestAreaValueRendering(t *testing.T) {
	assert.Equal(t, "ID NOT FOUND", AreaValue{Kind: AreaNotFound}.String())
	assert.Equal(t, "COMMODITY MISMATCH", AreaValue{Kind: AreaMismatch}.String())
	assert.Equal(t, "1.5", NumericArea(1.5).String())
}

func TestSentinelPrecedesAboveCheck(t *testing.T) {
	c := testClassifier()
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Area sentinel wins over the numeric comparison even with a large
	// verified measurement.
	verdict := c.Classify(date, true, AreaValue{Kind: AreaNotFound}, 5, true)
	assert.Equal(t, VerdictNoCropArea, verdict)

	verdict = c.Classify(date, true, AreaValue{Kind: AreaMismatch}, 5, true)
	assert.Equal(t, VerdictNoCropArea, verdict)
}

func TestInvalidDatePrecedesEverything(t *testing.T) {
	c := testClassifier()

	// Unparseable date.
	verdict := c.Classify(time.Time{}, false, NumericArea(10), 50, true)
	assert.Equal(t, VerdictInvalidDate, verdict)

	// Before the cutoff.
	old := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	verdict = c.Classify(old, true, AreaValue{Kind: AreaNotFound}, 50, true)
	assert.Equal(t, VerdictInvalidDate, verdict)
}

func TestAboveToleranceBoundary(t *testing.T) {
	c := testClassifier()
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Exactly at tolerance: OK.
	assert.Equal(t, VerdictOK, c.Classify(date, true, NumericArea(10.0), 12.0, true))
	// Just past tolerance: ABOVE.
	assert.Equal(t, VerdictAbove, c.Classify(date, true, NumericArea(10.0), 12.01, true))
}

func TestMissingVerifiedAreaIsNotAbove(t *testing.T) {
	c := testClassifier()
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, VerdictOK, c.Classify(date, true, NumericArea(10.0), 0, false))
}
