package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyRecipient(t *testing.T) {
	h := NewHub()
	a, cleanA := h.Subscribe("emp-a")
	defer cleanA()
	b, cleanB := h.Subscribe("emp-b")
	defer cleanB()

	n := h.Publish(Event{RecipientID: "emp-a", Name: "leave_submitted", Data: "x"})
	assert.Equal(t, 1, n)

	select {
	case ev := <-a:
		assert.Equal(t, "leave_submitted", ev.Name)
	default:
		t.Fatal("expected event for emp-a")
	}
	assert.Len(t, b, 0)
}

func TestHub_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("emp-a")
	defer cleanup()

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, h.Publish(Event{RecipientID: "emp-a"}))
	}
	assert.Equal(t, 0, h.Publish(Event{RecipientID: "emp-a"}))
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("emp-a")
	assert.Equal(t, 1, h.SubscriberCount("emp-a"))

	cleanup()
	cleanup()
	assert.Equal(t, 0, h.SubscriberCount("emp-a"))

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Publish(Event{RecipientID: "emp-a"}))
}
