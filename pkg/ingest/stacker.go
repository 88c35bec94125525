// pkg/ingest/stacker.go
package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// SourceFileColumn records which input file each stacked row came from.
const SourceFileColumn = "Source File"

// StackResult summarizes a completed stack run.
type StackResult struct {
	Files  int
	Rows   int
	Output string
}

// Stacker combines per-municipality export files that share a column
// layout into one dataset. Inputs are validated as a whole before any
// output is written, and consumed files are deleted only after the
// combined file lands on disk.
type Stacker struct {
	logger *zap.Logger
}

func NewStacker(logger *zap.Logger) *Stacker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stacker{logger: logger}
}

// Stack reads every input file, verifies identical column lists, writes
// the combined output with a source-file column, and removes the inputs.
// Any validation failure aborts before output and leaves all inputs in
// place.
func (s *Stacker) Stack(paths []string, output string) (*StackResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files to stack")
	}

	datasets := make([]*model.Dataset, 0, len(paths))
	for _, path := range paths {
		ds, err := ReadCSV(path)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	reference := datasets[0].Columns
	for i, ds := range datasets[1:] {
		if !sameColumns(reference, ds.Columns) {
			return nil, fmt.Errorf("file %s has columns %v, want %v as in %s",
				paths[i+1], ds.Columns, reference, paths[0])
		}
	}

	columns := append(append([]string{}, reference...), SourceFileColumn)
	combined := model.NewDataset(filepath.Base(output), columns, nil)

	for i, ds := range datasets {
		source := filepath.Base(paths[i])
		for _, row := range ds.Rows {
			stacked := row.Clone()
			stacked[SourceFileColumn] = source
			combined.Append(stacked)
		}
	}

	if err := WriteCSV(output, combined); err != nil {
		return nil, err
	}

	// Inputs are consumed only once the combined file exists.
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("stacked output written but failed to remove %s: %w", path, err)
		}
	}

	s.logger.Info("Stacked input files",
		zap.Int("files", len(paths)),
		zap.Int("rows", combined.Len()),
		zap.String("output", output))

	return &StackResult{
		Files:  len(paths),
		Rows:   combined.Len(),
		Output: output,
	}, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
