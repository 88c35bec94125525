// pkg/pipeline/enrich.go
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rsbsa-tools/registry-triage/pkg/audit"
	"github.com/rsbsa-tools/registry-triage/pkg/finding"
	"github.com/rsbsa-tools/registry-triage/pkg/identity"
	"github.com/rsbsa-tools/registry-triage/pkg/join"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// RunEnrichment joins the geotag dataset against the parcel list, collapses
// the 1:N fan-out with the commodity tie-break, resolves each record's
// final area, and attaches a finding verdict.
func (p *Pipeline) RunEnrichment(geotag, parcel *model.Dataset) (*EnrichResult, error) {
	if err := geotag.Resolve(model.FieldID); err != nil {
		return nil, fmt.Errorf("geotag schema: %w", err)
	}
	if err := parcel.Resolve(model.FieldID, model.FieldCommodity, model.FieldArea); err != nil {
		return nil, fmt.Errorf("parcel schema: %w", err)
	}

	runID := p.beginRun("enrich")
	result := NewEnrichResult(runID)
	result.GeotagRows = geotag.Len()
	result.ParcelRows = parcel.Len()

	p.logger.Info("Starting enrichment run",
		zap.String("run_id", runID),
		zap.Int("geotagRows", geotag.Len()),
		zap.Int("parcelRows", parcel.Len()))

	geotagKey := func(r model.Record) string { return identity.StrictKey(geotag, r) }
	parcelKey := func(r model.Record) string { return identity.StrictKey(parcel, r) }

	joined := join.LeftOuter(geotag.Rows, geotagKey, parcel.Rows, parcelKey)
	multi := join.MultipleHoldings(parcel.Rows, parcelKey)

	commodityMatch := func(row join.Row) bool {
		if !row.Matched() {
			return false
		}
		return finding.NormalizeCommodity(geotag.Text(row.Primary, model.FieldCommodity)) ==
			finding.NormalizeCommodity(parcel.Text(row.Ref, model.FieldCommodity))
	}

	collapsed, discards := join.Collapse(joined, commodityMatch, multi)
	result.Discards = discards

	columns := append(append([]string{}, geotag.Columns...),
		ColumnFinalCropArea, ColumnCommodityMatch, ColumnMultipleHoldings, ColumnFinding)
	enriched := model.NewDataset("enriched", columns, nil)

	for _, c := range collapsed {
		area, areaCell := p.resolveArea(parcel, c)

		trackDate, trackOK := model.ParseTime(geotag.Value(c.Primary, model.FieldTrackDate))
		verified, verifiedOK := model.ParseFloat(geotag.Value(c.Primary, model.FieldVerifiedArea))

		verdict := p.findings.Classify(trackDate, trackOK, area, verified, verifiedOK)
		result.VerdictCounts[verdict]++

		row := c.Primary.Clone()
		row[ColumnFinalCropArea] = areaCell
		row[ColumnCommodityMatch] = c.CommodityMatch
		row[ColumnMultipleHoldings] = c.MultipleHoldings
		row[ColumnFinding] = string(verdict)
		enriched.Append(row)
	}

	result.Enriched = enriched

	if err := p.persistDiscards(runID, parcel, result); err != nil {
		return nil, err
	}

	result.Complete()
	p.logger.Info("Enrichment run completed",
		zap.String("run_id", runID),
		zap.Int("enrichedRows", enriched.Len()),
		zap.Int("discards", len(discards)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// resolveArea computes the final-area cell for a collapsed row: sentinel
// when unmatched or commodity-mismatched, otherwise the parcel's numeric
// area. A matched area cell that does not parse keeps its raw text and
// classifies like a sentinel.
func (p *Pipeline) resolveArea(parcel *model.Dataset, c join.Collapsed) (finding.AreaValue, string) {
	switch {
	case !c.Matched():
		area := finding.AreaValue{Kind: finding.AreaNotFound}
		return area, area.String()
	case !c.CommodityMatch:
		area := finding.AreaValue{Kind: finding.AreaMismatch}
		return area, area.String()
	default:
		ha, ok := model.ParseFloat(parcel.Value(c.Ref, model.FieldArea))
		if !ok {
			return finding.AreaValue{Kind: finding.AreaMismatch}, parcel.Text(c.Ref, model.FieldArea)
		}
		area := finding.NumericArea(ha)
		return area, area.String()
	}
}

// persistDiscards hands the collapse losers to the audit store so they are
// not silently lost.
func (p *Pipeline) persistDiscards(runID string, parcel *model.Dataset, result *EnrichResult) error {
	if p.store == nil {
		return nil
	}

	discards := make([]audit.Discard, 0, len(result.Discards))
	for _, d := range result.Discards {
		discards = append(discards, audit.Discard{
			RecordKey: d.Key,
			Commodity: string(finding.NormalizeCommodity(parcel.Text(d.Ref, model.FieldCommodity))),
			Detail:    "lost commodity tie-break",
		})
	}

	if err := p.store.RecordDiscards(runID, discards); err != nil {
		return fmt.Errorf("failed to persist join discards: %w", err)
	}
	if err := p.store.CompleteRun(runID, result.GeotagRows, 0); err != nil {
		return fmt.Errorf("failed to complete audit run: %w", err)
	}
	return nil
}
