// pkg/pipeline/result.go
package pipeline

import (
	"time"

	"github.com/rsbsa-tools/registry-triage/pkg/aggregate"
	"github.com/rsbsa-tools/registry-triage/pkg/finding"
	"github.com/rsbsa-tools/registry-triage/pkg/join"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
	"github.com/rsbsa-tools/registry-triage/pkg/triage"
)

// TriageResult is the outcome of one masterlist triage run. The three
// partitions are disjoint and together cover every input row.
type TriageResult struct {
	RunID      string
	MasterRows int
	ParcelRows int

	CleanWithReference    *model.Dataset
	CleanWithoutReference *model.Dataset
	Erroneous             *model.Dataset

	ReasonCounts map[triage.Reason]int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewTriageResult initializes a triage result.
func NewTriageResult(runID string) *TriageResult {
	return &TriageResult{
		RunID:        runID,
		StartTime:    time.Now(),
		ReasonCounts: make(map[triage.Reason]int),
	}
}

// Complete marks the run as finished and calculates its duration.
func (r *TriageResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// ErrorCount returns the size of the erroneous partition.
func (r *TriageResult) ErrorCount() int {
	return r.Erroneous.Len()
}

// ErrorRate returns the percentage of input rows that landed in the
// erroneous partition.
func (r *TriageResult) ErrorRate() float64 {
	if r.MasterRows == 0 {
		return 0
	}
	return float64(r.ErrorCount()) / float64(r.MasterRows) * 100
}

// EnrichResult is the outcome of one geotag enrichment run.
type EnrichResult struct {
	RunID      string
	GeotagRows int
	ParcelRows int

	Enriched *model.Dataset
	Discards []join.Discard

	VerdictCounts map[finding.Verdict]int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewEnrichResult initializes an enrichment result.
func NewEnrichResult(runID string) *EnrichResult {
	return &EnrichResult{
		RunID:         runID,
		StartTime:     time.Now(),
		VerdictCounts: make(map[finding.Verdict]int),
	}
}

// Complete marks the run as finished and calculates its duration.
func (r *EnrichResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// SummaryResult is the outcome of one regional summary run.
type SummaryResult struct {
	RunID     string
	InputRows int
	Provinces []string

	Summaries []aggregate.Summary
	Report    *model.Dataset

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewSummaryResult initializes a summary result.
func NewSummaryResult(runID string) *SummaryResult {
	return &SummaryResult{
		RunID:     runID,
		StartTime: time.Now(),
	}
}

// Complete marks the run as finished and calculates its duration.
func (r *SummaryResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}
