package storage

import (
	"fmt"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/config"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/storage/badger"
	"github.com/bobmcallan/tradedesk/internal/storage/file"
	"github.com/bobmcallan/tradedesk/internal/storage/memory"
)

// NewStorageManager creates the storage backend named by cfg.Storage.Backend.
func NewStorageManager(logger *common.Logger, cfg *config.Config) (interfaces.StorageManager, error) {
	switch cfg.Storage.Backend {
	case "", "badger":
		return badger.NewManager(logger, &cfg.Storage.Badger)
	case "file":
		return file.New(cfg.Storage.File.Path, logger), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
