// pkg/triage/triage.go
package triage

import (
	"fmt"
	"strings"

	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// Status is the triage state of a primary record. The machine is one-way:
// once a record reaches StatusError it never reverts within a run.
type Status string

const (
	StatusClean Status = "CLEAN"
	StatusError Status = "ERROR"
)

// Reason is an enum-like error-tag code. Tags are stored as codes and
// rendered to text separately so tests and consumers never string-match
// accumulated tags.
type Reason int

const (
	ReasonDuplicateID Reason = iota
	ReasonIdentityConflict
	ReasonDataMismatch
)

// Tag returns the human-readable tag for the reason.
func (r Reason) Tag() string {
	switch r {
	case ReasonDuplicateID:
		return "[Duplicate RSBSA ID]"
	case ReasonIdentityConflict:
		return "[Identity Conflict]"
	case ReasonDataMismatch:
		return "[Data Mismatch]"
	default:
		return fmt.Sprintf("[Unknown(%d)]", r)
	}
}

// Mismatch records one bio-data field disagreement between a primary record
// and its matched reference record.
type Mismatch struct {
	Field     model.Field
	Primary   string
	Reference string
}

// Entry is the triage state attached to one primary record.
type Entry struct {
	Row       model.Record
	Key       string // strict key
	Signature string // loose signature
	FirstName string
	Gender    string

	Status        Status
	Reasons       []Reason // ordered set: first occurrence wins the slot
	Mismatches    []Mismatch
	ConflictGroup string
}

// Flag moves the entry to ERROR and appends the reason once. The first
// flag decides the conflict group; later reasons keep it.
func (e *Entry) Flag(reason Reason, group string) {
	e.Status = StatusError
	if e.ConflictGroup == "" {
		e.ConflictGroup = group
	}
	for _, r := range e.Reasons {
		if r == reason {
			return
		}
	}
	e.Reasons = append(e.Reasons, reason)
}

// ErrorTag renders the accumulated reasons to the audit-tag string, with
// per-field detail for data mismatches.
func (e *Entry) ErrorTag() string {
	if len(e.Reasons) == 0 {
		return ""
	}

	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		if r != ReasonDataMismatch {
			parts = append(parts, r.Tag())
			continue
		}
		details := make([]string, 0, len(e.Mismatches))
		for _, mm := range e.Mismatches {
			details = append(details, fmt.Sprintf("%s (%s != %s)",
				strings.ToUpper(string(mm.Field)), mm.Primary, mm.Reference))
		}
		parts = append(parts, r.Tag()+" "+strings.Join(details, "; "))
	}
	return strings.Join(parts, " ")
}
