package query

import (
	"fmt"
	"sync"

	"recordgate/internal/records/models"
)

// Per-record result labels.
const (
	resultDisclosed = "disclosed"
	resultAbsent    = "absent"
	resultMasked    = "masked"
	resultFailed    = "failed"
)

// batch is the shared state of one retrieval. Slots are pre-sized to the work
// set; tasks only touch it through merge.
type batch struct {
	mu        sync.Mutex
	work      []models.RecordIdentifier
	results   []*models.Record
	claimed   []bool
	disclosed []models.RecordIdentifier
	withheld  int
	abandoned bool
	diags     *models.Diagnostics
}

func newBatch(work []models.RecordIdentifier, diags *models.Diagnostics) *batch {
	return &batch{
		work:      work,
		results:   make([]*models.Record, len(work)),
		claimed:   make([]bool, len(work)),
		disclosed: append([]models.RecordIdentifier(nil), work...),
		diags:     diags,
	}
}

// merge folds one task result into the batch. It claims the first unclaimed
// slot whose identifier matches, so a later duplicate never backfills an
// earlier withheld slot. It returns false when the batch was already
// abandoned and the result was dropped.
func (b *batch) merge(res *taskResult) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.abandoned {
		return false
	}

	for i, want := range b.work {
		if b.claimed[i] || !want.Matches(res.id) {
			continue
		}
		b.claimed[i] = true
		b.results[i] = res.record
		break
	}

	if res.record == nil {
		for i, id := range b.disclosed {
			if id.Matches(res.id) {
				b.disclosed = append(b.disclosed[:i], b.disclosed[i+1:]...)
				break
			}
		}
		b.withheld++
	}

	b.diags.AddIssues(res.issues...)
	b.diags.AddDetails(res.details...)
	return true
}

func (b *batch) abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.abandoned = true
}

func (b *batch) disclosedIDs() []models.RecordIdentifier {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.RecordIdentifier(nil), b.disclosed...)
}

// taskResult collects what one task produced before it is merged. It is the
// issue sink handed to the gateway, so policy issues stay task-local too.
type taskResult struct {
	id      models.RecordIdentifier
	record  *models.Record
	label   string
	issues  []models.DetectedIssue
	details []models.ResultDetail
}

func (t *taskResult) AddIssue(issue models.DetectedIssue) {
	t.issues = append(t.issues, issue)
}

func (t *taskResult) AddIssues(issues ...models.DetectedIssue) {
	t.issues = append(t.issues, issues...)
}

// withhold records that the identifier will not be disclosed.
func (t *taskResult) withhold(label string) {
	t.label = label
	t.issues = append(t.issues, models.DetectedIssue{
		Severity:    models.SeverityModerate,
		Type:        models.IssueBusinessConstraintViolation,
		Text:        fmt.Sprintf("Record '%s' will not be retrieved", t.id),
		Priority:    models.PriorityWarning,
		MitigatedBy: models.MitigationOtherActionTaken,
	})
}

// fail withholds the identifier and keeps the cause as an error detail.
func (t *taskResult) fail(err error) {
	t.withhold(resultFailed)
	t.details = append(t.details, models.ResultDetail{
		Kind:    models.DetailError,
		Message: fmt.Sprintf("could not retrieve record '%s'", t.id),
		Cause:   err,
	})
}
