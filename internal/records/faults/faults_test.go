package faults

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"conflict", fmt.Errorf("store: %w", sentinel.ErrConflict), KindDuplicate},
		{"missing key", fmt.Errorf("update: %w", sentinel.ErrMissingKey), KindMissingKey},
		{"constraint", sentinel.ErrConstraint, KindConstraint},
		{"data", fmt.Errorf("decode: %w", sentinel.ErrDataFault), KindData},
		{"unavailable", fmt.Errorf("dial: %w", sentinel.ErrUnavailable), KindStorage},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), KindTimeout},
		{"sentinel timeout", sentinel.ErrTimeout, KindTimeout},
		{"explicit fault wins", New(KindConfiguration, "no storage", sentinel.ErrConflict), KindConfiguration},
		{"issue raised", IssueRaised(models.DetectedIssue{Text: "x"}), KindIssueRaised},
		{"panic", Recovered("boom"), KindUnknown},
		{"other", errors.New("weird"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKindPredicates(t *testing.T) {
	for _, k := range []Kind{KindDuplicate, KindMissingKey, KindConstraint} {
		assert.True(t, k.ProducesIssue(), k)
		assert.True(t, k.Localized(), k)
	}
	for _, k := range []Kind{KindStorage, KindData, KindTimeout, KindUnknown} {
		assert.False(t, k.ProducesIssue(), k)
		assert.False(t, k.Localized(), k)
		assert.True(t, k.Auditable(), k)
	}
	assert.False(t, KindConfiguration.Auditable())
	assert.False(t, KindValidation.Auditable())
}

func TestIssueFor(t *testing.T) {
	issue, ok := IssueFor(fmt.Errorf("insert: %w", sentinel.ErrConflict))
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, issue.Severity)
	assert.Equal(t, models.IssueAlreadyPerformed, issue.Type)
	assert.Equal(t, models.PriorityError, issue.Priority)

	issue, ok = IssueFor(sentinel.ErrMissingKey)
	require.True(t, ok)
	assert.Equal(t, models.IssueDetected, issue.Type)

	raised := models.DetectedIssue{Type: models.IssueDataQuality, Text: "bad", Priority: models.PriorityWarning}
	issue, ok = IssueFor(fmt.Errorf("wrapped: %w", IssueRaised(raised)))
	require.True(t, ok)
	assert.Equal(t, raised, issue)

	_, ok = IssueFor(sentinel.ErrUnavailable)
	assert.False(t, ok)
}

func TestRecoveredKeepsErrors(t *testing.T) {
	err := Recovered(sentinel.ErrConflict)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	var pe *PanicError
	require.ErrorAs(t, Recovered(42), &pe)
	assert.Equal(t, "panic: 42", pe.Error())
}
