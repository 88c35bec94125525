// pkg/pipeline/pipeline.go
package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rsbsa-tools/registry-triage/pkg/aggregate"
	"github.com/rsbsa-tools/registry-triage/pkg/audit"
	"github.com/rsbsa-tools/registry-triage/pkg/config"
	"github.com/rsbsa-tools/registry-triage/pkg/finding"
	"github.com/rsbsa-tools/registry-triage/pkg/identity"
	"github.com/rsbsa-tools/registry-triage/pkg/join"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
	"github.com/rsbsa-tools/registry-triage/pkg/triage"
)

// Columns the pipelines attach to their outputs.
const (
	ColumnErrorTag         = "Error Tag"
	ColumnConflictGroup    = "Conflict Group"
	ColumnMultipleHoldings = "Has Multiple Holdings"
	ColumnFinalCropArea    = "Final Crop Area"
	ColumnCommodityMatch   = "Commodity Match"
	ColumnFinding          = "Finding"
)

// Pipeline orchestrates the triage, enrichment, and summary runs. Each run
// loads its datasets fresh, transforms them to completion, and hands typed
// results back to the caller; nothing partial is ever produced.
type Pipeline struct {
	config     *config.Config
	classifier *triage.Classifier
	findings   *finding.Classifier
	aggregator *aggregate.Aggregator
	store      *audit.Store
	logger     *zap.Logger
}

// New creates a pipeline from configuration. The audit store is optional;
// when nil, runs are not persisted.
func New(cfg *config.Config, store *audit.Store, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	matcher := identity.NewMatcher(identity.MatcherConfig{
		ConflictThreshold: cfg.SimilarityThreshold,
	})

	return &Pipeline{
		config:     cfg,
		classifier: triage.NewClassifier(matcher, logger.With(zap.String("component", "triage"))),
		findings: finding.NewClassifier(finding.ClassifierConfig{
			DateCutoff:      cfg.DateCutoff,
			AreaToleranceHa: cfg.AreaToleranceHa,
		}),
		aggregator: aggregate.NewAggregator(aggregate.Config{
			ReferenceDate: cfg.ReferenceDate,
			Brackets: aggregate.Brackets{
				YouthMin:  cfg.YouthMin,
				YouthMax:  cfg.YouthMax,
				SeniorMin: cfg.SeniorMin,
			},
		}, logger.With(zap.String("component", "aggregate"))),
		store:  store,
		logger: logger,
	}, nil
}

// RunTriage runs the masterlist-against-parcel triage: strict duplicates,
// fuzzy identity conflicts, and the post-join bio-data integrity pass. The
// result carries the three disjoint partitions.
func (p *Pipeline) RunTriage(masterlist, parcel *model.Dataset) (*TriageResult, error) {
	if err := masterlist.Resolve(model.FieldID); err != nil {
		return nil, fmt.Errorf("masterlist schema: %w", err)
	}
	if err := parcel.Resolve(model.FieldID); err != nil {
		return nil, fmt.Errorf("parcel schema: %w", err)
	}

	runID := p.beginRun("triage")
	result := NewTriageResult(runID)
	result.MasterRows = masterlist.Len()
	result.ParcelRows = parcel.Len()

	p.logger.Info("Starting triage run",
		zap.String("run_id", runID),
		zap.Int("masterRows", masterlist.Len()),
		zap.Int("parcelRows", parcel.Len()))

	entries := p.classifier.Triage(masterlist)

	// First parcel row per key; only CLEAN records see the reference.
	matchedRef := make(map[string]model.Record)
	for _, ref := range parcel.Rows {
		k := identity.StrictKey(parcel, ref)
		if k == "" {
			continue
		}
		if _, ok := matchedRef[k]; !ok {
			matchedRef[k] = ref
		}
	}

	p.classifier.CheckBioData(masterlist, parcel, entries, matchedRef, nil)

	p.partition(masterlist, parcel, entries, matchedRef, result)

	if err := p.persistTriage(runID, entries, result); err != nil {
		return nil, err
	}

	result.Complete()
	p.logger.Info("Triage run completed",
		zap.String("run_id", runID),
		zap.Int("cleanWithReference", result.CleanWithReference.Len()),
		zap.Int("cleanWithoutReference", result.CleanWithoutReference.Len()),
		zap.Int("erroneous", result.Erroneous.Len()),
		zap.Float64("errorRate", result.ErrorRate()),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// partition splits the triaged entries into the three output datasets.
func (p *Pipeline) partition(
	masterlist, parcel *model.Dataset,
	entries []*triage.Entry,
	matchedRef map[string]model.Record,
	result *TriageResult,
) {
	cleanColumns := append(append([]string{}, masterlist.Columns...), ColumnMultipleHoldings)
	errorColumns := append(append([]string{}, masterlist.Columns...), ColumnErrorTag, ColumnConflictGroup)

	withRef := model.NewDataset("clean_with_reference", cleanColumns, nil)
	withoutRef := model.NewDataset("clean_without_reference", cleanColumns, nil)
	erroneous := model.NewDataset("erroneous", errorColumns, nil)

	multi := join.MultipleHoldings(parcel.Rows, func(r model.Record) string {
		return identity.StrictKey(parcel, r)
	})

	for _, e := range entries {
		row := e.Row.Clone()
		if e.Status == triage.StatusError {
			row[ColumnErrorTag] = e.ErrorTag()
			row[ColumnConflictGroup] = e.ConflictGroup
			erroneous.Append(row)
			for _, reason := range e.Reasons {
				result.ReasonCounts[reason]++
			}
			continue
		}

		row[ColumnMultipleHoldings] = multi[e.Key]
		if _, ok := matchedRef[e.Key]; ok {
			withRef.Append(row)
		} else {
			withoutRef.Append(row)
		}
	}

	result.CleanWithReference = withRef
	result.CleanWithoutReference = withoutRef
	result.Erroneous = erroneous
}

// persistTriage writes the run's findings to the audit store, when one is
// attached.
func (p *Pipeline) persistTriage(runID string, entries []*triage.Entry, result *TriageResult) error {
	if p.store == nil {
		return nil
	}

	findings := make([]audit.Finding, 0)
	for _, e := range entries {
		if e.Status != triage.StatusError {
			continue
		}
		findings = append(findings, audit.Finding{
			RecordKey:     e.Key,
			Status:        string(e.Status),
			Reason:        e.ErrorTag(),
			ConflictGroup: e.ConflictGroup,
		})
	}

	if err := p.store.RecordFindings(runID, findings); err != nil {
		return fmt.Errorf("failed to persist triage findings: %w", err)
	}
	if err := p.store.CompleteRun(runID, result.MasterRows, len(findings)); err != nil {
		return fmt.Errorf("failed to complete audit run: %w", err)
	}
	return nil
}

// beginRun opens an audit run when a store is attached, otherwise mints a
// local run ID.
func (p *Pipeline) beginRun(tool string) string {
	if p.store != nil {
		if runID, err := p.store.BeginRun(tool); err == nil {
			return runID
		} else {
			p.logger.Warn("Audit store unavailable, continuing without persistence",
				zap.Error(err))
		}
	}
	return uuid.NewString()
}
