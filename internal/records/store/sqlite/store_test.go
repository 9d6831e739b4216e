package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample() *models.Record {
	return &models.Record{
		ID:           models.NewRecordIdentifier("1.2.3", "R1"),
		Type:         "encounter",
		Status:       "active",
		Attributes:   map[string]string{"code": "A01"},
		Annotations:  []models.Annotation{{Text: "seen", Author: "dr-1"}},
		Participants: []models.Participant{{ID: "dr-1", Role: models.RoleAuthor}},
	}
}

func TestStoreAndFetch(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	id, err := s.Store(ctx, sample(), models.ModeProduction)
	require.NoError(t, err)
	assert.Equal(t, "1", id.Version)

	got, err := s.FetchOne(ctx, models.NewRecordIdentifier("1.2.3", "R1"), false)
	require.NoError(t, err)
	want := sample()
	want.ID = id
	assert.Equal(t, want, got)
}

func TestStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := s.Store(ctx, sample(), models.ModeProduction)
	require.NoError(t, err)

	_, err = s.Store(ctx, sample(), models.ModeProduction)

	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestStore_EmptyKeyViolatesConstraint(t *testing.T) {
	rec := sample()
	rec.ID.Identifier = ""

	_, err := openStore(t).Store(context.Background(), rec, models.ModeProduction)

	assert.ErrorIs(t, err, sentinel.ErrConstraint)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Update(ctx, sample(), models.ModeProduction)
	require.ErrorIs(t, err, sentinel.ErrMissingKey)

	_, err = s.Store(ctx, sample(), models.ModeProduction)
	require.NoError(t, err)

	next := sample()
	next.Status = "completed"
	id, err := s.Update(ctx, next, models.ModeProduction)
	require.NoError(t, err)
	assert.Equal(t, "2", id.Version)

	got, err := s.FetchOne(ctx, id, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "completed", got.Status)
	require.Len(t, got.History, 1)
	assert.Equal(t, "1", got.History[0].Version)

	summary, err := s.FetchOne(ctx, id, true)
	require.NoError(t, err)
	assert.Nil(t, summary.History)
	assert.Nil(t, summary.Annotations)
}

func TestReplaceVersion_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := s.Store(ctx, sample(), models.ModeProduction)
	require.NoError(t, err)

	err = s.replaceVersion(ctx, s.db, sample().ID, 7, models.ModeProduction, []byte(`{}`))
	require.ErrorIs(t, err, sentinel.ErrConflict)

	got, err := s.FetchOne(ctx, sample().ID, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.ID.Version)
	assert.Equal(t, "encounter", got.Type)
}

func TestFetchOne_Absent(t *testing.T) {
	got, err := openStore(t).FetchOne(context.Background(), models.NewRecordIdentifier("1.2.3", "none"), false)

	require.NoError(t, err)
	assert.Nil(t, got)
}
