package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// GameStorage implements the GameStorage interface for Badger
type GameStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewGameStorage creates a new GameStorage instance
func NewGameStorage(db *BadgerDB, logger arbor.ILogger) interfaces.GameStorage {
	return &GameStorage{
		db:     db,
		logger: logger,
	}
}

// StoreGame upserts a game record
func (s *GameStorage) StoreGame(ctx context.Context, game *models.Game) error {
	now := time.Now().Unix()
	game.UpdatedAt = now
	if game.CreatedAt == 0 {
		game.CreatedAt = now
	}

	if err := s.db.Store().Upsert(game.GameID, game); err != nil {
		return fmt.Errorf("failed to store game: %w", err)
	}

	s.logger.Debug().Str("game_id", game.GameID).Msg("Stored game record")
	return nil
}

// GetGame retrieves a game by id
func (s *GameStorage) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	err := s.db.Store().Get(gameID, &game)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &game, nil
}

// GetGamesByTeam returns all games owned by a team
func (s *GameStorage) GetGamesByTeam(ctx context.Context, teamID string) ([]*models.Game, error) {
	var games []models.Game
	err := s.db.Store().Find(&games, badgerhold.Where("TeamID").Eq(teamID).Index("TeamID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find games by team: %w", err)
	}

	result := make([]*models.Game, len(games))
	for i := range games {
		result[i] = &games[i]
	}
	return result, nil
}

// UpdateGameVersion sets the current version on an existing game record
func (s *GameStorage) UpdateGameVersion(ctx context.Context, gameID, version string) error {
	var game models.Game
	err := s.db.Store().Get(gameID, &game)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	game.Version = version
	game.UpdatedAt = time.Now().Unix()

	if err := s.db.Store().Update(gameID, &game); err != nil {
		return fmt.Errorf("failed to update game version: %w", err)
	}

	s.logger.Info().Str("game_id", gameID).Str("version", version).Msg("Updated stored game version")
	return nil
}

// DeleteGame removes a game record
func (s *GameStorage) DeleteGame(ctx context.Context, gameID string) error {
	err := s.db.Store().Delete(gameID, &models.Game{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}
