package interfaces

import (
	"context"
	"errors"

	"github.com/buildsmith/buildsmith/internal/models"
)

// ErrKeyNotFound is returned when a record is not found in storage
var ErrKeyNotFound = errors.New("key not found")

// UserStorage - interface for user record persistence
type UserStorage interface {
	StoreUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, externalID int64) (*models.User, error)
	GetUserBySession(ctx context.Context, sessionID string) (*models.User, error)
	DeleteUser(ctx context.Context, externalID int64) error
	CountUsers(ctx context.Context) (int, error)
}

// TeamStorage - interface for team record persistence
type TeamStorage interface {
	StoreTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
	GetTeamsByMember(ctx context.Context, userID int64) ([]*models.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
}

// GameStorage - interface for game record persistence
type GameStorage interface {
	StoreGame(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	GetGamesByTeam(ctx context.Context, teamID string) ([]*models.Game, error)
	UpdateGameVersion(ctx context.Context, gameID, version string) error
	DeleteGame(ctx context.Context, gameID string) error
}

// GrantStorage - interface for the ordered integration grant store.
// Indexes are 1-based and dense; appending assigns the next free index and
// removal compacts the sequence.
type GrantStorage interface {
	GrantSource
	AppendGrant(ctx context.Context, grant *models.IntegrationGrant) (int, error)
	RemoveGrant(ctx context.Context, index int) error
	CountGrants(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	UserStorage() UserStorage
	TeamStorage() TeamStorage
	GameStorage() GameStorage
	GrantStorage() GrantStorage
	DB() interface{}
	Close() error
}
