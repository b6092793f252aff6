package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// GrantStorage implements the GrantStorage interface for Badger. Grants form
// a dense 1-based sequence; the mutex keeps append and remove from racing on
// index assignment.
type GrantStorage struct {
	db     *BadgerDB
	mu     sync.Mutex
	logger arbor.ILogger
}

// NewGrantStorage creates a new GrantStorage instance
func NewGrantStorage(db *BadgerDB, logger arbor.ILogger) interfaces.GrantStorage {
	return &GrantStorage{
		db:     db,
		logger: logger,
	}
}

// GrantAt retrieves the grant at a 1-based index. A missing index returns
// ErrNoGrant, which scanners treat as end of store.
func (s *GrantStorage) GrantAt(ctx context.Context, index int) (*models.IntegrationGrant, error) {
	var grant models.IntegrationGrant
	err := s.db.Store().Get(index, &grant)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNoGrant
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grant: %w", err)
	}
	return &grant, nil
}

// AppendGrant stores a grant at the next free index and returns it
func (s *GrantStorage) AppendGrant(ctx context.Context, grant *models.IntegrationGrant) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.countLocked()
	if err != nil {
		return 0, err
	}

	grant.Index = count + 1
	grant.CreatedAt = time.Now().Unix()

	if err := s.db.Store().Insert(grant.Index, grant); err != nil {
		return 0, fmt.Errorf("failed to append grant: %w", err)
	}

	s.logger.Info().Int("index", grant.Index).Str("installation_id", grant.InstallationID).Msg("Appended integration grant")
	return grant.Index, nil
}

// RemoveGrant deletes the grant at an index and shifts later grants down so
// the sequence stays dense.
func (s *GrantStorage) RemoveGrant(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var grant models.IntegrationGrant
	err := s.db.Store().Get(index, &grant)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNoGrant
	}
	if err != nil {
		return fmt.Errorf("failed to get grant: %w", err)
	}

	count, err := s.countLocked()
	if err != nil {
		return err
	}

	for i := index; i < count; i++ {
		var next models.IntegrationGrant
		if err := s.db.Store().Get(i+1, &next); err != nil {
			return fmt.Errorf("failed to read grant %d during compaction: %w", i+1, err)
		}
		next.Index = i
		if err := s.db.Store().Upsert(i, &next); err != nil {
			return fmt.Errorf("failed to shift grant to %d: %w", i, err)
		}
	}

	if err := s.db.Store().Delete(count, &models.IntegrationGrant{}); err != nil {
		return fmt.Errorf("failed to delete grant tail: %w", err)
	}

	s.logger.Info().Int("index", index).Msg("Removed integration grant")
	return nil
}

// CountGrants returns the number of stored grants
func (s *GrantStorage) CountGrants(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

func (s *GrantStorage) countLocked() (int, error) {
	count, err := s.db.Store().Count(&models.IntegrationGrant{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count grants: %w", err)
	}
	return int(count), nil
}
