package badger

import (
	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	user   interfaces.UserStorage
	team   interfaces.TeamStorage
	game   interfaces.GameStorage
	grant  interfaces.GrantStorage
	logger arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		user:   NewUserStorage(db, logger),
		team:   NewTeamStorage(db, logger),
		game:   NewGameStorage(db, logger),
		grant:  NewGrantStorage(db, logger),
		logger: logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// UserStorage returns the User storage interface
func (m *Manager) UserStorage() interfaces.UserStorage {
	return m.user
}

// TeamStorage returns the Team storage interface
func (m *Manager) TeamStorage() interfaces.TeamStorage {
	return m.team
}

// GameStorage returns the Game storage interface
func (m *Manager) GameStorage() interfaces.GameStorage {
	return m.game
}

// GrantStorage returns the Grant storage interface
func (m *Manager) GrantStorage() interfaces.GrantStorage {
	return m.grant
}

// DB returns the underlying database connection
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
