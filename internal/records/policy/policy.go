// Package policy is the default visibility policy: confidential records are
// withheld unless the requester presents a consent override, and masked
// annotations never leave the service with their text.
package policy

import (
	"context"
	"fmt"

	"recordgate/internal/records/models"
)

// RedactedText replaces the text of masked annotations.
const RedactedText = "[redacted]"

// Enforcer applies the confidentiality policy.
type Enforcer struct{}

func NewEnforcer() *Enforcer {
	return &Enforcer{}
}

// Apply returns nil for a confidential candidate unless requester carries a
// policy override. Otherwise it returns the candidate, or a redacted copy when
// any annotation is masked.
func (e *Enforcer) Apply(_ context.Context, requester *models.Record, candidate *models.Record, sink models.IssueSink) (*models.Record, error) {
	if candidate == nil {
		return nil, nil
	}

	if candidate.Confidential && !hasOverride(requester) {
		sink.AddIssue(models.DetectedIssue{
			Severity:    models.SeverityModerate,
			Type:        models.IssueInsufficientAuthorization,
			Text:        fmt.Sprintf("Record '%s' is confidential and no consent override was supplied", candidate.ID),
			Priority:    models.PriorityWarning,
			MitigatedBy: models.MitigationOtherActionTaken,
		})
		return nil, nil
	}

	if !hasMaskedAnnotation(candidate) {
		return candidate, nil
	}
	redacted := candidate.Clone()
	for i := range redacted.Annotations {
		if redacted.Annotations[i].IsMasked {
			redacted.Annotations[i].Text = RedactedText
		}
	}
	return redacted, nil
}

func hasOverride(requester *models.Record) bool {
	return requester != nil && requester.PolicyOverride != nil && !requester.PolicyOverride.FormID.IsZero()
}

func hasMaskedAnnotation(r *models.Record) bool {
	for _, a := range r.Annotations {
		if a.IsMasked {
			return true
		}
	}
	return false
}
