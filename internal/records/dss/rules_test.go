package dss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/internal/records/models"
	"recordgate/internal/records/ports"
)

var _ ports.DecisionSupport = (*Engine)(nil)

func TestRecordPersisting(t *testing.T) {
	tests := []struct {
		name     string
		record   *models.Record
		priority []models.IssuePriority
	}{
		{
			name: "complete record",
			record: &models.Record{
				ID:           models.NewRecordIdentifier("1.2.3", "R1"),
				Participants: []models.Participant{{ID: "dr-1", Role: models.RoleAuthor}},
			},
		},
		{
			name:     "no author",
			record:   &models.Record{ID: models.NewRecordIdentifier("1.2.3", "R1")},
			priority: []models.IssuePriority{models.PriorityWarning},
		},
		{
			name:     "no identifier and no author",
			record:   &models.Record{},
			priority: []models.IssuePriority{models.PriorityError, models.PriorityWarning},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := New().RecordPersisting(context.Background(), tt.record)

			var got []models.IssuePriority
			for _, i := range issues {
				got = append(got, i.Priority)
			}
			assert.Equal(t, tt.priority, got)
		})
	}
}

func TestRetrievalHooks(t *testing.T) {
	ctx := context.Background()
	id := models.NewRecordIdentifier("7.7.7", "R1")

	t.Run("pass through by default", func(t *testing.T) {
		e := New()
		assert.Empty(t, e.RetrievingRecord(ctx, id))
		assert.Empty(t, e.RetrievedRecord(ctx, &models.Record{ID: id}))
	})

	t.Run("blocked domain is flagged before fetch", func(t *testing.T) {
		e := New(WithRetrieveRules(BlockDomains("7.7.7")))

		issues := e.RetrievingRecord(ctx, id)
		require.Len(t, issues, 1)
		assert.Equal(t, models.IssueBusinessConstraintViolation, issues[0].Type)
		assert.Empty(t, e.RetrievedRecord(ctx, &models.Record{ID: id}))
		assert.Empty(t, e.RetrievingRecord(ctx, models.NewRecordIdentifier("1.2.3", "R1")))
	})
}
