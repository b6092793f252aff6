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

// UserStorage implements the UserStorage interface for Badger
type UserStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUserStorage creates a new UserStorage instance
func NewUserStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UserStorage {
	return &UserStorage{
		db:     db,
		logger: logger,
	}
}

// StoreUser upserts a user record keyed by external id. CreatedAt is
// preserved across re-registrations; the session binding always moves to the
// latest login.
func (s *UserStorage) StoreUser(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	user.UpdatedAt = now
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}

	var existing models.User
	if err := s.db.Store().Get(user.ExternalID, &existing); err == nil {
		user.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(user.ExternalID, user); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	s.logger.Debug().Str("username", user.Username).Msg("Stored user record")
	return nil
}

// GetUser retrieves a user by external id
func (s *UserStorage) GetUser(ctx context.Context, externalID int64) (*models.User, error) {
	var user models.User
	err := s.db.Store().Get(externalID, &user)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserBySession retrieves the user bound to a session id
func (s *UserStorage) GetUserBySession(ctx context.Context, sessionID string) (*models.User, error) {
	var users []models.User
	err := s.db.Store().Find(&users, badgerhold.Where("SessionID").Eq(sessionID).Index("SessionID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by session: %w", err)
	}
	if len(users) == 0 {
		return nil, interfaces.ErrKeyNotFound
	}
	return &users[0], nil
}

// DeleteUser removes a user record
func (s *UserStorage) DeleteUser(ctx context.Context, externalID int64) error {
	err := s.db.Store().Delete(externalID, &models.User{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// CountUsers returns the number of stored users
func (s *UserStorage) CountUsers(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.User{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}
