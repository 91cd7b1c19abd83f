package badger

import (
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/config"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger.
type Manager struct {
	db *BadgerDB
	kv interfaces.KeyValueStorage
}

// NewManager opens the database and wraps it in a StorageManager.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", cfg.Path).Msg("Badger storage manager initialized")
	return &Manager{db: db, kv: NewKVStorage(db, logger)}, nil
}

// KeyValueStorage returns the KeyValue storage interface.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
