package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/patterns"
	"github.com/ternarybob/titulus/internal/storage/badger"
)

// stubStore serves patterns to the library loader and captures telemetry
// flushes without a real database.
type stubStore struct {
	patterns []*models.Pattern

	flushedSuccess map[string]int64
	flushedFailure map[string]int64
	flushErr       error
}

func (s *stubStore) SavePattern(ctx context.Context, pattern *models.Pattern) error { return nil }
func (s *stubStore) SavePatterns(ctx context.Context, patterns []*models.Pattern) error {
	return nil
}
func (s *stubStore) GetPattern(ctx context.Context, patternType models.PatternType, term string) (*models.Pattern, error) {
	return nil, nil
}
func (s *stubStore) DeletePattern(ctx context.Context, patternType models.PatternType, term string) error {
	return nil
}
func (s *stubStore) ListActive(ctx context.Context) ([]*models.Pattern, error) {
	return s.patterns, nil
}
func (s *stubStore) ListByType(ctx context.Context, patternType models.PatternType) ([]*models.Pattern, error) {
	return nil, nil
}
func (s *stubStore) CountPatterns(ctx context.Context) (int, error) { return len(s.patterns), nil }
func (s *stubStore) IncrementCounters(ctx context.Context, success map[string]int64, failure map[string]int64) error {
	if s.flushErr != nil {
		return s.flushErr
	}
	s.flushedSuccess = success
	s.flushedFailure = failure
	return nil
}

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// newTestLibrary loads the curated default pattern set, the same one a fresh
// store is seeded with.
func newTestLibrary(t *testing.T) *patterns.Library {
	t.Helper()

	store := &stubStore{patterns: badger.DefaultPatterns()}
	lib, err := patterns.NewLibrary(context.Background(), testLogger(), store)
	require.NoError(t, err)
	return lib
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	lib := newTestLibrary(t)
	config := &common.PipelineConfig{MaxTitleLength: 2048}
	return New(testLogger(), lib, config, NewTelemetry(testLogger(), &stubStore{}, false))
}
