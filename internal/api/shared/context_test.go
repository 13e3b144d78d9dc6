package shared

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)

	traceID := GetTraceID(ctxWithTrace)
	assert.NotEmpty(t, traceID)
	assert.Len(t, traceID, 32, "Expected trace ID length to be 32 hex characters (16 bytes)")

	// Original context should remain unchanged
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // Not a string
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID when context has invalid type")
}

func TestGenerateTraceIDUniqueness(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		require.Len(t, id, 32)

		_, err := hex.DecodeString(id)
		require.NoError(t, err, "trace ID must be valid hex")

		assert.False(t, seen[id], "Expected all trace IDs to be unique")
		seen[id] = true
	}
}

func TestFallbackTraceID(t *testing.T) {
	const iterations = 50
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateFallbackTraceID()
		require.Len(t, id, 32, "Expected fallback trace IDs to be 32 hex characters")

		_, err := hex.DecodeString(id)
		require.NoError(t, err, "Fallback ID must be valid hex")

		// Small sleep so the time-based components change
		time.Sleep(time.Millisecond)

		assert.False(t, seen[id], "Expected fallback trace IDs to be unique")
		seen[id] = true
	}
}
