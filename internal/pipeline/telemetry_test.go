package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetry_FlushWritesAndResets(t *testing.T) {
	store := &stubStore{}
	telemetry := NewTelemetry(testLogger(), store, true)

	telemetry.RecordSuccess("geographic_entity:europe")
	telemetry.RecordSuccess("geographic_entity:europe")
	telemetry.RecordFailure("geographic_entity:delaware")

	telemetry.Flush(context.Background())

	require.NotNil(t, store.flushedSuccess)
	assert.Equal(t, int64(2), store.flushedSuccess["geographic_entity:europe"])
	assert.Equal(t, int64(1), store.flushedFailure["geographic_entity:delaware"])

	// The buffer is reset; a second flush with nothing recorded writes nothing.
	store.flushedSuccess = nil
	store.flushedFailure = nil
	telemetry.Flush(context.Background())
	assert.Nil(t, store.flushedSuccess)
}

func TestTelemetry_DisabledRecordsNothing(t *testing.T) {
	store := &stubStore{}
	telemetry := NewTelemetry(testLogger(), store, false)

	telemetry.RecordSuccess("geographic_entity:europe")
	telemetry.Flush(context.Background())

	assert.Nil(t, store.flushedSuccess)
}

func TestTelemetry_NilSafe(t *testing.T) {
	var telemetry *Telemetry

	// Stages call telemetry unconditionally; a nil receiver must not panic.
	telemetry.RecordSuccess("geographic_entity:europe")
	telemetry.RecordFailure("geographic_entity:europe")
	telemetry.Flush(context.Background())
}

func TestTelemetry_FailedFlushDropsBatch(t *testing.T) {
	store := &stubStore{flushErr: fmt.Errorf("store unavailable")}
	telemetry := NewTelemetry(testLogger(), store, true)

	telemetry.RecordSuccess("geographic_entity:europe")
	telemetry.Flush(context.Background())

	// The batch is dropped, not retried.
	store.flushErr = nil
	telemetry.Flush(context.Background())
	assert.Nil(t, store.flushedSuccess)
}

func TestTelemetry_EmptyKeyIgnored(t *testing.T) {
	store := &stubStore{}
	telemetry := NewTelemetry(testLogger(), store, true)

	telemetry.RecordSuccess("")
	telemetry.Flush(context.Background())

	assert.Nil(t, store.flushedSuccess)
}
