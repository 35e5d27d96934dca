package notification

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRepo holds its first CreateBatch until release is closed.
type gatedRepo struct {
	notification.Repository
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedRepo(inner notification.Repository) *gatedRepo {
	return &gatedRepo{Repository: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedRepo) CreateBatch(ctx context.Context, events []notification.Event) error {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return g.Repository.CreateBatch(ctx, events)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func event(subject string) notification.CreateEventRequest {
	return notification.CreateEventRequest{
		RecipientID: "emp-1",
		Type:        notification.TypeLeaveApproved,
		SubjectID:   subject,
		Title:       "Leave approved",
	}
}

func subjects(events []notification.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.SubjectID
	}
	return out
}

func TestNotificationService_FullQueueWritesThrough(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := newGatedRepo(store.Notifications())
	svc := NewNotificationService(repo, sse.NewHub(), quietLogger(), Config{
		BatchSize: 1, FlushInterval: time.Hour, WorkerCount: 1, QueueSize: 1,
	})

	require.NoError(t, svc.Queue(ctx, event("first")))
	select {
	case <-repo.entered:
	case <-time.After(time.Second):
		t.Fatal("worker never flushed the first event")
	}

	// The worker is stuck on "first"; "second" fills the queue.
	require.NoError(t, svc.Queue(ctx, event("second")))
	require.NoError(t, svc.Queue(ctx, event("third")))

	stored, err := store.Notifications().ListByRecipient(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"third"}, subjects(stored))

	close(repo.release)
	svc.Stop()

	stored, err = store.Notifications().ListByRecipient(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first", "second", "third"}, subjects(stored))
}

func TestNotificationService_StopDrainsQueue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewNotificationService(store.Notifications(), sse.NewHub(), quietLogger(), Config{
		BatchSize: 100, FlushInterval: time.Hour, WorkerCount: 2, QueueSize: 10,
	})

	for _, s := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, svc.Queue(ctx, event(s)))
	}
	pending, err := store.Notifications().ListByRecipient(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	svc.Stop()
	svc.Stop()

	stored, err := store.Notifications().ListByRecipient(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, subjects(stored))

	assert.ErrorIs(t, svc.Queue(ctx, event("late")), notification.ErrServiceStopped)
}

func TestNotificationService_QueueRejectsMissingRecipient(t *testing.T) {
	svc := NewNotificationService(memory.NewStore().Notifications(), sse.NewHub(), quietLogger(), Config{})
	defer svc.Stop()

	err := svc.Queue(context.Background(), notification.CreateEventRequest{Type: notification.TypeLeaveApproved})
	assert.ErrorIs(t, err, notification.ErrRecipientRequired)
}

func TestNotificationService_SubscribeStreamsUntilCancelled(t *testing.T) {
	hub := sse.NewHub()
	svc := NewNotificationService(memory.NewStore().Notifications(), hub, quietLogger(), Config{
		BatchSize: 1, FlushInterval: time.Hour, WorkerCount: 1, QueueSize: 10,
	})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, cleanup := svc.Subscribe(ctx, "emp-1")
	defer cleanup()
	require.Equal(t, 1, hub.SubscriberCount("emp-1"))

	require.NoError(t, svc.Queue(context.Background(), event("app-1")))

	select {
	case got := <-out:
		assert.Equal(t, string(notification.TypeLeaveApproved), got.Event)
		assert.Equal(t, "app-1", got.Data.SubjectID)
	case <-time.After(time.Second):
		t.Fatal("event was not streamed")
	}

	cancel()
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream stayed open after cancellation")
	}

	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("emp-1"))
}

func TestNotificationService_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(memory.NewStore().Notifications(), sse.NewHub(), quietLogger(), Config{
		BatchSize: 100, FlushInterval: time.Hour, WorkerCount: 1, QueueSize: 10,
	})

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, svc.Queue(ctx, event(s)))
	}
	svc.Stop()

	recent, err := svc.Recent(ctx, "emp-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].SubjectID)
	assert.Equal(t, "b", recent[1].SubjectID)
}
