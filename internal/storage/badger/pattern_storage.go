package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PatternStorage implements the PatternStorage interface for Badger
type PatternStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPatternStorage creates a new PatternStorage instance
func NewPatternStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PatternStorage {
	return &PatternStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PatternStorage) SavePattern(ctx context.Context, pattern *models.Pattern) error {
	if pattern.Term == "" {
		return fmt.Errorf("pattern term is required")
	}
	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern.Term, err)
	}

	if pattern.ID == "" {
		pattern.ID = common.NewPatternID()
	}

	now := time.Now()
	if pattern.CreatedAt.IsZero() {
		pattern.CreatedAt = now
	}
	pattern.UpdatedAt = now

	// Keyed by (type, term) so saving an existing pair overwrites the record.
	if err := s.db.Store().Upsert(pattern.Key(), pattern); err != nil {
		return fmt.Errorf("failed to save pattern: %w", err)
	}
	return nil
}

func (s *PatternStorage) SavePatterns(ctx context.Context, patterns []*models.Pattern) error {
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SavePattern(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}

func (s *PatternStorage) GetPattern(ctx context.Context, patternType models.PatternType, term string) (*models.Pattern, error) {
	key := string(patternType) + ":" + strings.ToLower(term)

	var pattern models.Pattern
	if err := s.db.Store().Get(key, &pattern); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("pattern not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}
	return &pattern, nil
}

func (s *PatternStorage) DeletePattern(ctx context.Context, patternType models.PatternType, term string) error {
	key := string(patternType) + ":" + strings.ToLower(term)

	if err := s.db.Store().Delete(key, &models.Pattern{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	return nil
}

func (s *PatternStorage) ListActive(ctx context.Context) ([]*models.Pattern, error) {
	var patterns []models.Pattern
	if err := s.db.Store().Find(&patterns, badgerhold.Where("Active").Eq(true).Index("Active")); err != nil {
		return nil, fmt.Errorf("failed to list active patterns: %w", err)
	}

	result := make([]*models.Pattern, len(patterns))
	for i := range patterns {
		result[i] = &patterns[i]
	}
	return result, nil
}

func (s *PatternStorage) ListByType(ctx context.Context, patternType models.PatternType) ([]*models.Pattern, error) {
	var patterns []models.Pattern
	if err := s.db.Store().Find(&patterns, badgerhold.Where("Type").Eq(patternType).Index("Type")); err != nil {
		return nil, fmt.Errorf("failed to list patterns by type: %w", err)
	}

	result := make([]*models.Pattern, len(patterns))
	for i := range patterns {
		result[i] = &patterns[i]
	}
	return result, nil
}

func (s *PatternStorage) CountPatterns(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Pattern{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count patterns: %w", err)
	}
	return int(count), nil
}

// IncrementCounters applies buffered telemetry deltas. Counters are
// best-effort: a missing record is skipped, and a failed update is logged
// without aborting the batch.
func (s *PatternStorage) IncrementCounters(ctx context.Context, success map[string]int64, failure map[string]int64) error {
	keys := make(map[string]bool, len(success)+len(failure))
	for key := range success {
		keys[key] = true
	}
	for key := range failure {
		keys[key] = true
	}

	for key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		var pattern models.Pattern
		if err := s.db.Store().Get(key, &pattern); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			s.logger.Warn().Err(err).Str("pattern", key).Msg("Failed to load pattern for counter update")
			continue
		}

		pattern.SuccessCount += success[key]
		pattern.FailureCount += failure[key]
		pattern.UpdatedAt = time.Now()

		if err := s.db.Store().Update(key, &pattern); err != nil {
			s.logger.Warn().Err(err).Str("pattern", key).Msg("Failed to update pattern counters")
		}
	}

	return nil
}
