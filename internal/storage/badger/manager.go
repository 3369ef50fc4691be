package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	pattern interfaces.PatternStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		pattern: NewPatternStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// PatternStorage returns the Pattern storage interface
func (m *Manager) PatternStorage() interfaces.PatternStorage {
	return m.pattern
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
