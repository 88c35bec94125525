// pkg/pipeline/summary.go
package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rsbsa-tools/registry-triage/pkg/aggregate"
	"github.com/rsbsa-tools/registry-triage/pkg/finding"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// RunSummary validates province coverage and aggregates the dataset into
// the per-barangay report. Coverage must exactly match the configured
// province set; a missing or unexpected province aborts the run with
// nothing produced.
func (p *Pipeline) RunSummary(ds *model.Dataset) (*SummaryResult, error) {
	if err := ds.Resolve(model.FieldProvince); err != nil {
		return nil, fmt.Errorf("summary schema: %w", err)
	}

	provinces, err := p.validateProvinces(ds)
	if err != nil {
		return nil, err
	}

	runID := p.beginRun("summary")
	result := NewSummaryResult(runID)
	result.InputRows = ds.Len()
	result.Provinces = provinces

	p.logger.Info("Starting summary run",
		zap.String("run_id", runID),
		zap.Int("rows", ds.Len()),
		zap.Strings("provinces", provinces))

	result.Summaries = p.aggregator.Summarize(ds)
	result.Report = reportDataset(result.Summaries)

	if p.store != nil {
		if err := p.store.CompleteRun(runID, ds.Len(), 0); err != nil {
			return nil, fmt.Errorf("failed to complete audit run: %w", err)
		}
	}

	result.Complete()
	p.logger.Info("Summary run completed",
		zap.String("run_id", runID),
		zap.Int("groups", len(result.Summaries)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// validateProvinces checks that the dataset's distinct provinces exactly
// cover the required set.
func (p *Pipeline) validateProvinces(ds *model.Dataset) ([]string, error) {
	seen := make(map[string]bool)
	for _, row := range ds.Rows {
		if prov := strings.ToUpper(ds.Text(row, model.FieldProvince)); prov != "" {
			seen[prov] = true
		}
	}

	required := make(map[string]bool, len(p.config.RequiredProvinces))
	for _, prov := range p.config.RequiredProvinces {
		required[prov] = true
		if !seen[prov] {
			return nil, fmt.Errorf("province %s missing from input", prov)
		}
	}
	for prov := range seen {
		if !required[prov] {
			return nil, fmt.Errorf("unexpected province %s in input", prov)
		}
	}

	provinces := make([]string, 0, len(seen))
	for prov := range seen {
		provinces = append(provinces, prov)
	}
	sort.Strings(provinces)
	return provinces, nil
}

// reportDataset renders summaries as a serializable table.
func reportDataset(summaries []aggregate.Summary) *model.Dataset {
	columns := []string{
		"Municipality", "Barangay", "Records",
		"Farmers", "Farmworkers", "Fisherfolk",
		"Male", "Female", "Distinct Agencies",
		"Youth", "Working Age", "Senior",
		"Rice Area", "Corn Area", "Sugar Area", "Other Area", "Total Area",
	}

	report := model.NewDataset("summary", columns, nil)
	for _, s := range summaries {
		report.Append(model.Record{
			"Municipality":      s.Municipality,
			"Barangay":          s.Barangay,
			"Records":           s.Records,
			"Farmers":           s.Farmers,
			"Farmworkers":       s.Farmworkers,
			"Fisherfolk":        s.Fisherfolk,
			"Male":              s.Male,
			"Female":            s.Female,
			"Distinct Agencies": s.DistinctAgencies,
			"Youth":             s.Youth,
			"Working Age":       s.WorkingAge,
			"Senior":            s.Senior,
			"Rice Area":         formatArea(s.AreaByCommodity[finding.CommodityRice]),
			"Corn Area":         formatArea(s.AreaByCommodity[finding.CommodityCorn]),
			"Sugar Area":        formatArea(s.AreaByCommodity[finding.CommoditySugar]),
			"Other Area":        formatArea(s.AreaByCommodity[finding.CommodityOther]),
			"Total Area":        formatArea(s.TotalAreaHa),
		})
	}
	return report
}

func formatArea(ha float64) string {
	return strconv.FormatFloat(ha, 'f', 4, 64)
}
