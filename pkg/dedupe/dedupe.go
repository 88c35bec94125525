// pkg/dedupe/dedupe.go
package dedupe

import (
	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// KeyFunc derives the deduplication key for a record. An empty key exempts
// the record from deduplication.
type KeyFunc func(model.Record) string

// RankFunc orders records sharing a key for KeepBest: lower rank wins.
type RankFunc func(model.Record) int

// Policy selects which records survive when a key is shared.
type Policy int

const (
	// FlagAll surfaces every record whose key is shared by two or more
	// records. Nothing is silently kept: all n instances of a duplicated
	// key land in the flagged partition for audit.
	FlagAll Policy = iota
	// KeepFirst keeps the first-encountered record per key and flags the
	// rest.
	KeepFirst
	// KeepBest keeps the lowest-ranked record per key and flags the rest.
	KeepBest
)

// Result partitions a dataset into kept and flagged records, preserving
// input order within each partition.
type Result struct {
	Kept    []model.Record
	Flagged []model.Record
	// DuplicateKeys maps each shared key to the number of records
	// carrying it.
	DuplicateKeys map[string]int
}

// Dedupe partitions records by duplicated key according to the policy.
func Dedupe(rows []model.Record, key KeyFunc, policy Policy, rank RankFunc) Result {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		if k := key(row); k != "" {
			counts[k]++
		}
	}

	duplicates := make(map[string]int)
	for k, n := range counts {
		if n >= 2 {
			duplicates[k] = n
		}
	}

	result := Result{
		Kept:          make([]model.Record, 0, len(rows)),
		Flagged:       make([]model.Record, 0),
		DuplicateKeys: duplicates,
	}

	switch policy {
	case FlagAll:
		for _, row := range rows {
			if _, dup := duplicates[key(row)]; dup {
				result.Flagged = append(result.Flagged, row)
			} else {
				result.Kept = append(result.Kept, row)
			}
		}

	case KeepFirst, KeepBest:
		winners := pickWinners(rows, key, duplicates, policy, rank)
		for i, row := range rows {
			if _, dup := duplicates[key(row)]; !dup {
				result.Kept = append(result.Kept, row)
				continue
			}
			if winners[key(row)] == i {
				result.Kept = append(result.Kept, row)
			} else {
				result.Flagged = append(result.Flagged, row)
			}
		}
	}

	return result
}

// pickWinners selects the surviving row index per duplicated key.
func pickWinners(rows []model.Record, key KeyFunc, duplicates map[string]int, policy Policy, rank RankFunc) map[string]int {
	winners := make(map[string]int, len(duplicates))
	for i, row := range rows {
		k := key(row)
		if _, dup := duplicates[k]; !dup {
			continue
		}
		current, seen := winners[k]
		if !seen {
			winners[k] = i
			continue
		}
		if policy == KeepBest && rank != nil && rank(row) < rank(rows[current]) {
			winners[k] = i
		}
	}
	return winners
}
