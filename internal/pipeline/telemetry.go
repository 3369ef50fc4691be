package pipeline

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/interfaces"
)

// Telemetry buffers per-pattern success and failure counters in memory.
// Increments never block a parse; the buffer is flushed to the store on a
// schedule in serve mode or on CLI exit. A failed flush drops the batch —
// counters are lossy-safe and never alter pipeline output.
type Telemetry struct {
	mu      sync.Mutex
	enabled bool
	success map[string]int64
	failure map[string]int64
	store   interfaces.PatternStorage
	logger  arbor.ILogger
}

// NewTelemetry creates a counter buffer backed by the pattern store.
func NewTelemetry(logger arbor.ILogger, store interfaces.PatternStorage, enabled bool) *Telemetry {
	return &Telemetry{
		enabled: enabled,
		success: make(map[string]int64),
		failure: make(map[string]int64),
		store:   store,
		logger:  logger,
	}
}

// RecordSuccess counts a pattern match that survived into the output.
func (t *Telemetry) RecordSuccess(patternKey string) {
	if t == nil || !t.enabled || patternKey == "" {
		return
	}
	t.mu.Lock()
	t.success[patternKey]++
	t.mu.Unlock()
}

// RecordFailure counts a pattern match that a stage rejected, such as a
// hyphen-guarded region.
func (t *Telemetry) RecordFailure(patternKey string) {
	if t == nil || !t.enabled || patternKey == "" {
		return
	}
	t.mu.Lock()
	t.failure[patternKey]++
	t.mu.Unlock()
}

// Flush writes the buffered counters to the store and resets the buffer.
// The batch is dropped on error.
func (t *Telemetry) Flush(ctx context.Context) {
	if t == nil || !t.enabled {
		return
	}

	t.mu.Lock()
	success, failure := t.success, t.failure
	t.success = make(map[string]int64)
	t.failure = make(map[string]int64)
	t.mu.Unlock()

	if len(success) == 0 && len(failure) == 0 {
		return
	}

	if err := t.store.IncrementCounters(ctx, success, failure); err != nil {
		t.logger.Warn().Err(err).
			Int("success", len(success)).
			Int("failure", len(failure)).
			Msg("Telemetry flush failed, dropping counter batch")
	}
}
