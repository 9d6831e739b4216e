// Package faults classifies failures raised while retrieving or persisting
// records, and decides whether a failure is worth a reviewer-facing issue or
// only a technical detail.
package faults

import (
	"context"
	"errors"
	"fmt"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

// Kind is the normalized fault taxonomy.
type Kind string

const (
	// KindConfiguration means a required collaborator is missing.
	KindConfiguration Kind = "configuration"
	// KindValidation means the input was absent or invalid, or earlier steps already failed.
	KindValidation Kind = "validation"
	// KindDuplicate means a uniqueness constraint rejected the write.
	KindDuplicate Kind = "duplicate"
	// KindMissingKey means the write referenced a key that does not exist.
	KindMissingKey Kind = "missing_key"
	// KindConstraint means any other integrity constraint rejected the write.
	KindConstraint Kind = "constraint_violation"
	// KindStorage means the storage layer itself failed.
	KindStorage Kind = "storage_fault"
	// KindData means stored or submitted data could not be processed.
	KindData Kind = "data_fault"
	// KindIssueRaised means a collaborator raised a business issue as a failure.
	KindIssueRaised Kind = "issue_raised"
	// KindTimeout means the operation exceeded its time budget.
	KindTimeout Kind = "timeout"
	// KindUnknown is the catch-all.
	KindUnknown Kind = "unknown"
)

// ProducesIssue reports whether faults of this kind are meaningful to a
// downstream reviewer and therefore become a DetectedIssue, not only a detail.
func (k Kind) ProducesIssue() bool {
	switch k {
	case KindDuplicate, KindMissingKey, KindConstraint, KindIssueRaised:
		return true
	default:
		return false
	}
}

// Auditable reports whether an operation aborted by this kind of fault still
// emits a failure audit. Configuration and validation faults abort before any
// auditable work happens.
func (k Kind) Auditable() bool {
	return k != KindConfiguration && k != KindValidation
}

// Localized reports whether the detail message for this kind comes from the
// localized persistence-failure catalog entry.
func (k Kind) Localized() bool {
	return k == KindDuplicate || k == KindMissingKey || k == KindConstraint
}

// Fault is an error carrying its Kind and, for KindIssueRaised, the issue.
type Fault struct {
	Kind       Kind
	Message    string
	Issue      *models.DetectedIssue
	Underlying error
}

func (f *Fault) Error() string {
	if f.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Underlying)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Underlying
}

// New creates a fault of the given kind.
func New(kind Kind, message string, underlying error) *Fault {
	return &Fault{Kind: kind, Message: message, Underlying: underlying}
}

// Configuration reports a missing collaborator.
func Configuration(message string) *Fault {
	return New(KindConfiguration, message, nil)
}

// Validation reports invalid input.
func Validation(message string) *Fault {
	return New(KindValidation, message, nil)
}

// IssueRaised wraps a collaborator-raised issue as a failure.
func IssueRaised(issue models.DetectedIssue) *Fault {
	return &Fault{Kind: KindIssueRaised, Message: issue.Text, Issue: &issue}
}

// PanicError carries a value recovered from a panic.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Recovered converts a recover() value into an error. Errors pass through so
// a panic(err) with a classified error keeps its kind.
func Recovered(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &PanicError{Value: v}
}

// Classify maps any error chain to a Kind. Explicit Faults win; otherwise the
// infrastructure sentinels decide. Classify(nil) returns "".
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return KindDuplicate
	case errors.Is(err, sentinel.ErrMissingKey):
		return KindMissingKey
	case errors.Is(err, sentinel.ErrConstraint):
		return KindConstraint
	case errors.Is(err, sentinel.ErrDataFault):
		return KindData
	case errors.Is(err, sentinel.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, sentinel.ErrUnavailable),
		errors.Is(err, sentinel.ErrInvalidState),
		errors.Is(err, sentinel.ErrNotFound):
		return KindStorage
	default:
		return KindUnknown
	}
}

// IssueFor returns the reviewer-facing issue for err, if its kind produces one.
// Duplicates are "already performed"; missing-key and constraint faults are
// generic detected issues. All are high severity with error priority.
func IssueFor(err error) (models.DetectedIssue, bool) {
	kind := Classify(err)
	if !kind.ProducesIssue() {
		return models.DetectedIssue{}, false
	}
	if kind == KindIssueRaised {
		var f *Fault
		if errors.As(err, &f) && f.Issue != nil {
			return *f.Issue, true
		}
		return models.DetectedIssue{}, false
	}
	issueType := models.IssueDetected
	if kind == KindDuplicate {
		issueType = models.IssueAlreadyPerformed
	}
	return models.DetectedIssue{
		Severity: models.SeverityHigh,
		Type:     issueType,
		Text:     err.Error(),
		Priority: models.PriorityError,
	}, true
}
