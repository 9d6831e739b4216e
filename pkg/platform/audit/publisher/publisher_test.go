package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audit "recordgate/pkg/platform/audit"
	"recordgate/pkg/platform/audit/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(objectID string) audit.Event {
	return audit.Event{
		Action:    audit.ActionRead,
		Outcome:   audit.OutcomeSuccess,
		EventType: audit.EventTypeQuery,
		Objects: []audit.AuditableObject{{
			ObjectID: objectID,
			IDType:   audit.ObjectIDReportNumber,
			Role:     audit.ObjectRoleReport,
			Type:     audit.ObjectTypeSystemObject,
		}},
	}
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), readEvent("1.2.3@A1"))
	require.NoError(t, err)

	events, err := store.ListByObject(context.Background(), "1.2.3@A1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionRead, events[0].Action)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), readEvent("1.2.3@A1"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, _ := store.ListAll(context.Background())
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), readEvent("1.2.3@A1"))
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterCloseWritesThrough(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	pub.Close()

	require.NoError(t, pub.Emit(context.Background(), readEvent("1.2.3@A1")))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), readEvent("1.2.3@A1"))
			if err != nil {
				assert.True(t, errors.Is(err, ErrBufferFull))
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	err := pub.Emit(context.Background(), readEvent("1.2.3@A1"))
	require.NoError(t, err)
	after := time.Now()

	events, err := pub.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, !events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.True(t, !events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestampAndID(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := readEvent("1.2.3@A1")
	event.Timestamp = customTime
	event.ID = uuid.New()

	require.NoError(t, pub.SendAudit(context.Background(), event))

	events, err := pub.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
	assert.Equal(t, event.ID, events[0].ID)
}

func TestPublisher_ListRecentOrder(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	for _, id := range []string{"d@1", "d@2", "d@3"} {
		require.NoError(t, pub.Emit(context.Background(), readEvent(id)))
	}

	result, err := pub.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, []string{"d@2"}, result[0].ObjectIDs())
	assert.Equal(t, []string{"d@3"}, result[1].ObjectIDs())
}
