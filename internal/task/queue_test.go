package task

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestNewQueue(t *testing.T) {
	logger := setupTestLogger()
	capacity := 10
	queue := NewQueue(capacity, logger)

	assert.NotNil(t, queue)
	assert.Equal(t, capacity, cap(queue.ids))
	assert.False(t, queue.closed)
	assert.Equal(t, 0, queue.Len())
}

func TestEnqueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewQueue(2, logger)

	// Test successful enqueue
	id1 := uuid.New()
	err := queue.Enqueue(id1)
	assert.NoError(t, err)

	id2 := uuid.New()
	err = queue.Enqueue(id2)
	assert.NoError(t, err)
	assert.Equal(t, 2, queue.Len())

	// Test queue full
	id3 := uuid.New()
	err = queue.Enqueue(id3)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)

	// Dequeue one item to make space
	<-queue.ids

	// Now we should be able to enqueue again
	err = queue.Enqueue(id3)
	assert.NoError(t, err)
}

func TestEnqueuePreservesOrder(t *testing.T) {
	logger := setupTestLogger()
	queue := NewQueue(16, logger)

	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
		assert.NoError(t, queue.Enqueue(ids[i]))
	}

	// The consumer must see IDs in submission order
	for i := range ids {
		select {
		case got := <-queue.GetChannel():
			assert.Equal(t, ids[i], got, "ID at position %d out of order", i)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timed out waiting for queued ID")
		}
	}
}

func TestClose(t *testing.T) {
	logger := setupTestLogger()
	queue := NewQueue(10, logger)

	// Enqueue a task ID
	id := uuid.New()
	err := queue.Enqueue(id)
	assert.NoError(t, err)

	// Close the queue
	queue.Close()
	assert.True(t, queue.closed)

	// Try to enqueue after closing
	err = queue.Enqueue(uuid.New())
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Make sure we can still drain the queue
	received := <-queue.GetChannel()
	assert.Equal(t, id, received)

	// After draining the channel, the next read should report closed
	select {
	case _, ok := <-queue.GetChannel():
		assert.False(t, ok, "Channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for closed channel read")
	}

	// Closing twice is harmless
	queue.Close()
}

func TestConcurrentEnqueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewQueue(100, logger)

	// Start a goroutine racing the main one; both enqueue half the IDs
	idCount := 50
	doneCh := make(chan struct{})

	go func() {
		for i := 0; i < idCount/2; i++ {
			assert.NoError(t, queue.Enqueue(uuid.New()))
		}
		close(doneCh)
	}()

	for i := 0; i < idCount/2; i++ {
		assert.NoError(t, queue.Enqueue(uuid.New()))
	}
	<-doneCh

	// Verify we can read all the IDs
	count := 0
	for i := 0; i < idCount; i++ {
		select {
		case <-queue.GetChannel():
			count++
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timed out waiting for queued ID")
		}
	}

	assert.Equal(t, idCount, count, "Should read all enqueued IDs")
}
