package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "patterns")}
	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager
}

func testPattern(patternType models.PatternType, term string) *models.Pattern {
	return &models.Pattern{
		Type:     patternType,
		Term:     term,
		Priority: 10,
		Active:   true,
	}
}

func TestPatternStorage_SaveAndGet(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	pattern := testPattern(models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, store.SavePattern(ctx, pattern))
	assert.NotEmpty(t, pattern.ID, "an ID is assigned on first save")
	assert.False(t, pattern.CreatedAt.IsZero())

	loaded, err := store.GetPattern(ctx, models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, err)
	assert.Equal(t, "Europe", loaded.Term)
	assert.Equal(t, models.PatternTypeGeographicEntity, loaded.Type)
}

func TestPatternStorage_GetIsCaseInsensitiveOnTerm(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	require.NoError(t, store.SavePattern(ctx, testPattern(models.PatternTypeGeographicEntity, "Europe")))

	loaded, err := store.GetPattern(ctx, models.PatternTypeGeographicEntity, "EUROPE")
	require.NoError(t, err)
	assert.Equal(t, "Europe", loaded.Term)
}

func TestPatternStorage_TypeTermUniqueness(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	first := testPattern(models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, store.SavePattern(ctx, first))

	// Same (type, term) overwrites; a different type is a separate record.
	second := testPattern(models.PatternTypeGeographicEntity, "Europe")
	second.Priority = 99
	require.NoError(t, store.SavePattern(ctx, second))

	require.NoError(t, store.SavePattern(ctx, testPattern(models.PatternTypeMarketTerm, "Europe")))

	count, err := store.CountPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := store.GetPattern(ctx, models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, err)
	assert.Equal(t, 99, loaded.Priority)
}

func TestPatternStorage_ValidationRejectsBadRecords(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	assert.Error(t, store.SavePattern(ctx, &models.Pattern{Type: models.PatternTypeGeographicEntity}),
		"missing term")

	assert.Error(t, store.SavePattern(ctx, &models.Pattern{Type: "bogus", Term: "Europe", Active: true}),
		"unknown type")

	dictionary := &models.Pattern{Type: models.PatternTypeReportTypeDictionary, Term: "Market", Active: true}
	assert.Error(t, store.SavePattern(ctx, dictionary), "dictionary record without subtype")

	conflicted := testPattern(models.PatternTypeGeographicEntity, "United States")
	conflicted.Aliases = []string{"US"}
	conflicted.ArchivedAliases = []string{"us"}
	assert.Error(t, store.SavePattern(ctx, conflicted), "alias both live and archived")
}

func TestPatternStorage_ListActive(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	active := testPattern(models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, store.SavePattern(ctx, active))

	inactive := testPattern(models.PatternTypeGeographicEntity, "Atlantis")
	inactive.Active = false
	require.NoError(t, store.SavePattern(ctx, inactive))

	patterns, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Europe", patterns[0].Term)
}

func TestPatternStorage_ListByType(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	require.NoError(t, store.SavePattern(ctx, testPattern(models.PatternTypeGeographicEntity, "Europe")))
	require.NoError(t, store.SavePattern(ctx, testPattern(models.PatternTypeMarketTerm, "Market for")))

	patterns, err := store.ListByType(ctx, models.PatternTypeMarketTerm)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Market for", patterns[0].Term)
}

func TestPatternStorage_Delete(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	require.NoError(t, store.SavePattern(ctx, testPattern(models.PatternTypeGeographicEntity, "Europe")))
	require.NoError(t, store.DeletePattern(ctx, models.PatternTypeGeographicEntity, "Europe"))

	_, err := store.GetPattern(ctx, models.PatternTypeGeographicEntity, "Europe")
	assert.Error(t, err)

	// Deleting a missing record is not an error.
	assert.NoError(t, store.DeletePattern(ctx, models.PatternTypeGeographicEntity, "Europe"))
}

func TestPatternStorage_IncrementCounters(t *testing.T) {
	store := newTestManager(t).PatternStorage()
	ctx := context.Background()

	pattern := testPattern(models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, store.SavePattern(ctx, pattern))

	err := store.IncrementCounters(ctx,
		map[string]int64{pattern.Key(): 3, "geographic_entity:nowhere": 1},
		map[string]int64{pattern.Key(): 1},
	)
	require.NoError(t, err, "missing records are skipped, not errors")

	loaded, err := store.GetPattern(ctx, models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.SuccessCount)
	assert.Equal(t, int64(1), loaded.FailureCount)

	// Deltas accumulate across flushes.
	require.NoError(t, store.IncrementCounters(ctx, map[string]int64{pattern.Key(): 2}, nil))
	loaded, err = store.GetPattern(ctx, models.PatternTypeGeographicEntity, "Europe")
	require.NoError(t, err)
	assert.Equal(t, int64(5), loaded.SuccessCount)
}

func TestSeedDefaultPatterns(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, manager.SeedDefaultPatterns(ctx))

	store := manager.PatternStorage()
	count, err := store.CountPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPatterns()), count)

	// Every required type has active records after seeding.
	for _, required := range models.RequiredPatternTypes {
		patterns, err := store.ListByType(ctx, required)
		require.NoError(t, err)
		assert.NotEmpty(t, patterns, "required type %s must be seeded", required)
	}

	// Seeding twice overwrites rather than duplicating.
	require.NoError(t, manager.SeedDefaultPatterns(ctx))
	count, err = store.CountPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPatterns()), count)
}

func TestDefaultPatterns_AllValid(t *testing.T) {
	for _, pattern := range DefaultPatterns() {
		assert.NoError(t, pattern.Validate(), "seed pattern %s/%s", pattern.Type, pattern.Term)
	}
}
