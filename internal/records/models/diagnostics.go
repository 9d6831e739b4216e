package models

import (
	"fmt"
	"sync"
)

// IssueSeverity ranks how serious a detected issue is.
type IssueSeverity string

const (
	SeverityHigh     IssueSeverity = "high"
	SeverityModerate IssueSeverity = "moderate"
	SeverityLow      IssueSeverity = "low"
)

// IssueType classifies a detected issue.
type IssueType string

const (
	IssueAlreadyPerformed            IssueType = "already_performed"
	IssueDetected                    IssueType = "detected_issue"
	IssueBusinessConstraintViolation IssueType = "business_constraint_violation"
	IssueInsufficientAuthorization   IssueType = "insufficient_authorization"
	IssueDataQuality                 IssueType = "data_quality"
)

// IssuePriority drives how a caller must react to an issue.
type IssuePriority string

const (
	PriorityError         IssuePriority = "error"
	PriorityWarning       IssuePriority = "warning"
	PriorityInformational IssuePriority = "informational"
)

// Mitigation records what was done about an issue.
type Mitigation string

const (
	MitigationNone             Mitigation = ""
	MitigationOtherActionTaken Mitigation = "other_action_taken"
)

// DetectedIssue is a business-rule or data-quality finding. Issues are
// accumulated across one operation and never discarded.
type DetectedIssue struct {
	Severity    IssueSeverity `json:"severity"`
	Type        IssueType     `json:"type"`
	Text        string        `json:"text"`
	Priority    IssuePriority `json:"priority"`
	MitigatedBy Mitigation    `json:"mitigated_by,omitempty"`
}

// DetailKind is the level of a result detail.
type DetailKind string

const (
	DetailInfo    DetailKind = "info"
	DetailWarning DetailKind = "warning"
	DetailError   DetailKind = "error"
)

// ResultDetail is a technical diagnostic describing one operation step.
type ResultDetail struct {
	Kind    DetailKind `json:"kind"`
	Message string     `json:"message"`
	Cause   error      `json:"-"`
}

func (d ResultDetail) String() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", d.Kind, d.Message, d.Cause)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// IssueSink receives issues raised by collaborators such as the policy engine.
type IssueSink interface {
	AddIssue(issue DetectedIssue)
}

// Diagnostics is the append-only accumulator for issues and details of one
// call. It is safe for concurrent use so retrieval workers can share it, but
// the batch coordinator merges per-task results under its own lock and only
// touches Diagnostics from one goroutine at a time.
type Diagnostics struct {
	mu      sync.Mutex
	issues  []DetectedIssue
	details []ResultDetail
}

// NewDiagnostics returns an empty accumulator.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) AddIssue(issue DetectedIssue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issues = append(d.issues, issue)
}

func (d *Diagnostics) AddIssues(issues ...DetectedIssue) {
	if len(issues) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issues = append(d.issues, issues...)
}

func (d *Diagnostics) AddDetail(detail ResultDetail) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.details = append(d.details, detail)
}

func (d *Diagnostics) AddDetails(details ...ResultDetail) {
	if len(details) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.details = append(d.details, details...)
}

// Error appends an error detail.
func (d *Diagnostics) Error(message string, cause error) {
	d.AddDetail(ResultDetail{Kind: DetailError, Message: message, Cause: cause})
}

// Warning appends a warning detail.
func (d *Diagnostics) Warning(message string, cause error) {
	d.AddDetail(ResultDetail{Kind: DetailWarning, Message: message, Cause: cause})
}

// Issues returns a snapshot of accumulated issues.
func (d *Diagnostics) Issues() []DetectedIssue {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DetectedIssue(nil), d.issues...)
}

// Details returns a snapshot of accumulated details.
func (d *Diagnostics) Details() []ResultDetail {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ResultDetail(nil), d.details...)
}

// HasErrorDetail reports whether any accumulated detail is an error.
func (d *Diagnostics) HasErrorDetail() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, dt := range d.details {
		if dt.Kind == DetailError {
			return true
		}
	}
	return false
}

// HasErrorIssue reports whether any accumulated issue has error priority.
func (d *Diagnostics) HasErrorIssue() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, is := range d.issues {
		if is.Priority == PriorityError {
			return true
		}
	}
	return false
}
