package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"recordgate/internal/records/gateway"
	"recordgate/internal/records/models"
	"recordgate/internal/records/ports/mocks"
	"recordgate/pkg/platform/audit"
	"recordgate/pkg/platform/sentinel"
)

const domain = "1.2.3"

type fakeStorage struct {
	mu      sync.Mutex
	records map[string]*models.Record
	errs    map[string]error
	block   chan struct{}
	calls   int
}

func newFakeStorage(ids ...string) *fakeStorage {
	f := &fakeStorage{records: map[string]*models.Record{}, errs: map[string]error{}}
	for _, id := range ids {
		f.records[id] = &models.Record{ID: models.NewRecordIdentifier(domain, id), Type: "encounter"}
	}
	return f
}

func (f *fakeStorage) Store(context.Context, *models.Record, models.PersistenceMode) (models.RecordIdentifier, error) {
	return models.RecordIdentifier{}, errors.New("read-only")
}

func (f *fakeStorage) Update(context.Context, *models.Record, models.PersistenceMode) (models.RecordIdentifier, error) {
	return models.RecordIdentifier{}, errors.New("read-only")
}

func (f *fakeStorage) FetchOne(_ context.Context, id models.RecordIdentifier, _ bool) (*models.Record, error) {
	f.mu.Lock()
	f.calls++
	rec, err, block := f.records[id.Identifier], f.errs[id.Identifier], f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (f *fakeStorage) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) SendAudit(_ context.Context, event audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAuditor) all() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

func ids(values ...string) []models.RecordIdentifier {
	out := make([]models.RecordIdentifier, len(values))
	for i, v := range values {
		out[i] = models.NewRecordIdentifier(domain, v)
	}
	return out
}

func descriptor(maxResults int) models.QueryDescriptor {
	return models.QueryDescriptor{
		QueryID:    uuid.New(),
		MaxResults: maxResults,
		OriginatingQuery: &models.Record{
			Participants: []models.Participant{{ID: "dr-1", Role: models.RoleAuthor}},
		},
	}
}

func reportObjects(event audit.Event) []audit.AuditableObject {
	var out []audit.AuditableObject
	for _, o := range event.Objects {
		if o.Role == audit.ObjectRoleReport {
			out = append(out, o)
		}
	}
	return out
}

func TestRetrieve_ResultLengthIsMinOfRequestedAndMax(t *testing.T) {
	cases := []struct {
		requested  int
		maxResults int
		want       int
	}{
		{requested: 5, maxResults: 3, want: 3},
		{requested: 5, maxResults: 10, want: 5},
		{requested: 5, maxResults: 0, want: 0},
		{requested: 0, maxResults: 4, want: 0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("L=%d,M=%d", tc.requested, tc.maxResults), func(t *testing.T) {
			values := make([]string, tc.requested)
			for i := range values {
				values[i] = fmt.Sprintf("R%d", i)
			}
			storage := newFakeStorage(values...)
			c := New(gateway.New(storage))

			out := c.Retrieve(context.Background(), ids(values...), descriptor(tc.maxResults), models.NewDiagnostics())

			assert.Len(t, out.Results, tc.want)
			assert.Equal(t, tc.want, storage.fetchCalls())
		})
	}
}

func TestRetrieve_PositionsFollowRequestOrder(t *testing.T) {
	storage := newFakeStorage("A", "C", "D")
	auditor := &recordingAuditor{}
	c := New(gateway.New(storage), WithAuditor(auditor), WithWorkerMultiplier(1))
	diags := models.NewDiagnostics()

	out := c.Retrieve(context.Background(), ids("A", "B", "C", "D"), descriptor(10), diags)

	require.Len(t, out.Results, 4)
	assert.Equal(t, "A", out.Results[0].ID.Identifier)
	assert.Nil(t, out.Results[1])
	assert.Equal(t, "C", out.Results[2].ID.Identifier)
	assert.Equal(t, "D", out.Results[3].ID.Identifier)
	assert.Equal(t, 3, out.TotalCandidates)
	assert.Len(t, out.Disclosed(), 3)

	issues := diags.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "Record '1.2.3@B' will not be retrieved", issues[0].Text)
	assert.Equal(t, models.IssueBusinessConstraintViolation, issues[0].Type)
	assert.Equal(t, models.PriorityWarning, issues[0].Priority)

	events := auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeSuccess, events[0].Outcome)
	assert.Equal(t, audit.ActionRead, events[0].Action)
	objects := reportObjects(events[0])
	require.Len(t, objects, 3)
	for _, o := range objects {
		assert.Equal(t, audit.LifecycleDisclosure, o.Lifecycle)
		assert.NotEqual(t, "1.2.3@B", o.ObjectID)
	}
}

func TestRetrieve_DuplicateIdentifiersClaimFirstUnfilledSlot(t *testing.T) {
	storage := newFakeStorage("A")
	c := New(gateway.New(storage))

	out := c.Retrieve(context.Background(), ids("A", "A"), descriptor(2), models.NewDiagnostics())

	require.Len(t, out.Results, 2)
	assert.NotNil(t, out.Results[0])
	assert.NotNil(t, out.Results[1])
}

func TestRetrieve_MaskedAndFailedRecordsAreWithheld(t *testing.T) {
	storage := newFakeStorage("A", "B", "C")
	storage.records["B"].IsMasked = true
	storage.errs["C"] = sentinel.ErrUnavailable
	auditor := &recordingAuditor{}
	c := New(gateway.New(storage), WithAuditor(auditor))
	diags := models.NewDiagnostics()

	out := c.Retrieve(context.Background(), ids("A", "B", "C"), descriptor(3), diags)

	require.Len(t, out.Results, 3)
	assert.NotNil(t, out.Results[0])
	assert.Nil(t, out.Results[1], "masked records leave their slot empty")
	assert.Nil(t, out.Results[2])
	assert.Equal(t, 1, out.TotalCandidates)
	assert.Len(t, diags.Issues(), 2)

	details := diags.Details()
	require.Len(t, details, 1)
	assert.Equal(t, models.DetailError, details[0].Kind)
	assert.ErrorIs(t, details[0].Cause, sentinel.ErrUnavailable)

	events := auditor.all()
	require.Len(t, events, 1)
	assert.Len(t, reportObjects(events[0]), 1)
}

func TestRetrieve_NothingDisclosedIsMinorFail(t *testing.T) {
	auditor := &recordingAuditor{}
	c := New(gateway.New(newFakeStorage()), WithAuditor(auditor))

	out := c.Retrieve(context.Background(), ids("A", "B"), descriptor(5), models.NewDiagnostics())

	assert.Len(t, out.Results, 2)
	assert.Empty(t, out.Disclosed())
	events := auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeMinorFail, events[0].Outcome)
}

func TestRetrieve_NoStorageAbortsBeforeWork(t *testing.T) {
	auditor := &recordingAuditor{}
	c := New(gateway.New(nil), WithAuditor(auditor))
	diags := models.NewDiagnostics()

	out := c.Retrieve(context.Background(), ids("A"), descriptor(5), diags)

	assert.Empty(t, out.Results)
	require.Len(t, diags.Details(), 1)
	assert.Equal(t, gateway.MsgNoStorage, diags.Details()[0].Message)
	events := auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeEpicFail, events[0].Outcome)
}

func TestRetrieve_DuplicateQueryDoesNoWork(t *testing.T) {
	ctrl := gomock.NewController(t)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	storage := newFakeStorage("A")
	auditor := &recordingAuditor{}
	c := New(gateway.New(storage), WithContinuation(continuation), WithAuditor(auditor))
	desc := descriptor(5)

	gomock.InOrder(
		continuation.EXPECT().IsRegistered(gomock.Any(), desc.QueryID).Return(false, nil),
		continuation.EXPECT().RegisterQuerySet(gomock.Any(), desc.QueryID, ids("A"), gomock.Any()).Return(nil),
		continuation.EXPECT().IsRegistered(gomock.Any(), desc.QueryID).Return(true, nil),
	)

	first := c.Retrieve(context.Background(), ids("A"), desc, models.NewDiagnostics())
	require.Len(t, first.Disclosed(), 1)
	require.Equal(t, 1, storage.fetchCalls())

	diags := models.NewDiagnostics()
	second := c.Retrieve(context.Background(), ids("A"), desc, diags)

	assert.Empty(t, second.Results)
	assert.Equal(t, 1, storage.fetchCalls(), "no gateway calls on the duplicate")
	assert.True(t, diags.HasErrorDetail())
	assert.Contains(t, diags.Details()[0].Message, "already been registered")
}

func TestRetrieve_RegistersAllRequestedIdentifiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	requested := ids("A", "B", "C", "D")
	desc := descriptor(2)

	continuation.EXPECT().IsRegistered(gomock.Any(), desc.QueryID).Return(false, nil)
	continuation.EXPECT().RegisterQuerySet(gomock.Any(), desc.QueryID, requested, desc).Return(nil)

	c := New(gateway.New(newFakeStorage("A", "B", "C", "D")), WithContinuation(continuation))
	out := c.Retrieve(context.Background(), requested, desc, models.NewDiagnostics())

	assert.Len(t, out.Results, 2)
}

func TestRetrieve_RegistrationFailureIsWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	continuation.EXPECT().IsRegistered(gomock.Any(), gomock.Any()).Return(false, nil)
	continuation.EXPECT().RegisterQuerySet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)

	c := New(gateway.New(newFakeStorage("A")), WithContinuation(continuation))
	diags := models.NewDiagnostics()
	out := c.Retrieve(context.Background(), ids("A"), descriptor(1), diags)

	assert.Len(t, out.Disclosed(), 1)
	require.Len(t, diags.Details(), 1)
	assert.Equal(t, models.DetailWarning, diags.Details()[0].Kind)
}

func TestRetrieve_TimeoutAbandonsBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	continuation.EXPECT().IsRegistered(gomock.Any(), gomock.Any()).Return(false, nil)
	// RegisterQuerySet must not be called on a timed-out batch.

	storage := newFakeStorage("A", "B")
	storage.block = make(chan struct{})
	t.Cleanup(func() { close(storage.block) })

	auditor := &recordingAuditor{}
	c := New(gateway.New(storage),
		WithTimeout(50*time.Millisecond),
		WithAuditor(auditor),
		WithContinuation(continuation),
	)
	diags := models.NewDiagnostics()

	started := time.Now()
	out := c.Retrieve(context.Background(), ids("A", "B"), descriptor(2), diags)

	assert.Less(t, time.Since(started), 5*time.Second)
	assert.Empty(t, out.Results)
	assert.Zero(t, out.TotalCandidates)
	require.Len(t, diags.Details(), 1)
	assert.ErrorIs(t, diags.Details()[0].Cause, ErrBatchTimeout)

	events := auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeEpicFail, events[0].Outcome)
	assert.Empty(t, reportObjects(events[0]))
}

func TestRetrieve_QueuedTasksDoNotStartAfterDeadline(t *testing.T) {
	storage := newFakeStorage("A", "B", "C", "D", "E", "F")
	storage.block = make(chan struct{})

	auditor := &recordingAuditor{}
	c := New(gateway.New(storage), WithTimeout(100*time.Millisecond), WithAuditor(auditor))
	c.workers = 1
	diags := models.NewDiagnostics()

	out := c.Retrieve(context.Background(), ids("A", "B", "C", "D", "E", "F"), descriptor(6), diags)
	require.Equal(t, 1, storage.fetchCalls())

	// Free the only worker; the dispatcher's pending task must now bail out.
	close(storage.block)
	assert.Never(t, func() bool { return storage.fetchCalls() > 1 }, 200*time.Millisecond, 10*time.Millisecond)

	assert.Empty(t, out.Results)
	require.Len(t, auditor.all(), 1)
	assert.Equal(t, audit.OutcomeEpicFail, auditor.all()[0].Outcome)
}

func TestRetrieve_TaskPanicIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	dss := mocks.NewMockDecisionSupport(ctrl)
	dss.EXPECT().RetrievingRecord(gomock.Any(), models.NewRecordIdentifier(domain, "A")).Return(nil)
	dss.EXPECT().RetrievingRecord(gomock.Any(), models.NewRecordIdentifier(domain, "B")).
		DoAndReturn(func(context.Context, models.RecordIdentifier) []models.DetectedIssue {
			panic("rule engine exploded")
		})
	dss.EXPECT().RetrievedRecord(gomock.Any(), gomock.Any()).Return(nil)

	c := New(gateway.New(newFakeStorage("A", "B")), WithDecisionSupport(dss))
	diags := models.NewDiagnostics()

	out := c.Retrieve(context.Background(), ids("A", "B"), descriptor(2), diags)

	require.Len(t, out.Results, 2)
	assert.NotNil(t, out.Results[0])
	assert.Nil(t, out.Results[1])
	assert.Len(t, diags.Issues(), 1)
	assert.True(t, diags.HasErrorDetail())
}

func TestRetrieve_DecisionSupportIssuesAreKept(t *testing.T) {
	ctrl := gomock.NewController(t)
	dss := mocks.NewMockDecisionSupport(ctrl)
	pre := models.DetectedIssue{Type: models.IssueDataQuality, Text: "pre", Priority: models.PriorityInformational}
	post := models.DetectedIssue{Type: models.IssueDataQuality, Text: "post", Priority: models.PriorityInformational}
	dss.EXPECT().RetrievingRecord(gomock.Any(), gomock.Any()).Return([]models.DetectedIssue{pre})
	dss.EXPECT().RetrievedRecord(gomock.Any(), gomock.Any()).Return([]models.DetectedIssue{post})

	c := New(gateway.New(newFakeStorage("A")), WithDecisionSupport(dss))
	diags := models.NewDiagnostics()
	c.Retrieve(context.Background(), ids("A"), descriptor(1), diags)

	assert.Equal(t, []models.DetectedIssue{pre, post}, diags.Issues())
}

func TestQueryByFilter_RequiresRegistration(t *testing.T) {
	auditor := &recordingAuditor{}
	c := New(gateway.New(newFakeStorage("A")), WithAuditor(auditor))
	diags := models.NewDiagnostics()

	out := c.QueryByFilter(context.Background(), descriptor(5), diags)

	assert.Empty(t, out.Results)
	require.Len(t, diags.Details(), 1)
	assert.Contains(t, diags.Details()[0].Message, "document registration")
	require.Len(t, auditor.all(), 1)
	assert.Equal(t, audit.OutcomeEpicFail, auditor.all()[0].Outcome)
}

func TestQueryByFilter_ResolvesAndRegisters(t *testing.T) {
	ctrl := gomock.NewController(t)
	registration := mocks.NewMockDocumentRegistration(ctrl)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	desc := descriptor(2)
	desc.OriginatingQuery.Filter = &models.Filter{Domain: domain, Type: "encounter"}
	resolved := ids("A", "B", "C")

	registration.EXPECT().QueryRecord(gomock.Any(), desc.OriginatingQuery.Filter).Return(resolved, nil)
	continuation.EXPECT().IsRegistered(gomock.Any(), desc.QueryID).Return(false, nil)
	continuation.EXPECT().RegisterQuerySet(gomock.Any(), desc.QueryID, resolved, desc).Return(nil)

	c := New(gateway.New(newFakeStorage("A", "B", "C")),
		WithRegistration(registration),
		WithContinuation(continuation),
	)
	out := c.QueryByFilter(context.Background(), desc, models.NewDiagnostics())

	assert.Len(t, out.Results, 2)
	assert.Equal(t, 3, out.TotalCandidates)
}

func TestContinue_PagesRegisteredSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	desc := descriptor(2)
	continuation.EXPECT().FetchQuerySet(gomock.Any(), desc.QueryID).Return(&models.QuerySet{
		QueryID:     desc.QueryID,
		Identifiers: ids("A", "B", "C", "D"),
		Descriptor:  desc,
	}, nil)

	c := New(gateway.New(newFakeStorage("A", "B", "C", "D")), WithContinuation(continuation))
	out := c.Continue(context.Background(), desc.QueryID, 2, 5, models.NewDiagnostics())

	require.Len(t, out.Results, 2)
	assert.Equal(t, "C", out.Results[0].ID.Identifier)
	assert.Equal(t, "D", out.Results[1].ID.Identifier)
	assert.Equal(t, 2, out.StartRecordNumber)
	assert.Equal(t, 4, out.TotalCandidates)
}

func TestContinue_UnknownQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	continuation := mocks.NewMockQueryContinuation(ctrl)
	continuation.EXPECT().FetchQuerySet(gomock.Any(), gomock.Any()).Return(nil, nil)

	c := New(gateway.New(newFakeStorage("A")), WithContinuation(continuation))
	diags := models.NewDiagnostics()
	out := c.Continue(context.Background(), uuid.New(), 0, 5, diags)

	assert.Empty(t, out.Results)
	assert.True(t, diags.HasErrorDetail())
}
