package interfaces

import (
	"context"

	"github.com/ternarybob/titulus/internal/models"
)

// PatternStorage - interface for pattern library persistence
type PatternStorage interface {
	// Record operations. (type, term) is unique; saving an existing pair
	// overwrites the record.
	SavePattern(ctx context.Context, pattern *models.Pattern) error
	SavePatterns(ctx context.Context, patterns []*models.Pattern) error
	GetPattern(ctx context.Context, patternType models.PatternType, term string) (*models.Pattern, error)
	DeletePattern(ctx context.Context, patternType models.PatternType, term string) error

	// Query operations used by the library loader and the CLI listing.
	ListActive(ctx context.Context) ([]*models.Pattern, error)
	ListByType(ctx context.Context, patternType models.PatternType) ([]*models.Pattern, error)
	CountPatterns(ctx context.Context) (int, error)

	// IncrementCounters applies buffered telemetry deltas keyed by
	// Pattern.Key(). Best-effort: missing records are skipped.
	IncrementCounters(ctx context.Context, success map[string]int64, failure map[string]int64) error
}

// StorageManager - top-level handle over the pattern store
type StorageManager interface {
	PatternStorage() PatternStorage

	// SeedDefaultPatterns loads the curated default library into the store.
	SeedDefaultPatterns(ctx context.Context) error

	Close() error
}
