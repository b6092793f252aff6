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

// TeamStorage implements the TeamStorage interface for Badger
type TeamStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTeamStorage creates a new TeamStorage instance
func NewTeamStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TeamStorage {
	return &TeamStorage{
		db:     db,
		logger: logger,
	}
}

// StoreTeam upserts a team record
func (s *TeamStorage) StoreTeam(ctx context.Context, team *models.Team) error {
	now := time.Now().Unix()
	team.UpdatedAt = now
	if team.CreatedAt == 0 {
		team.CreatedAt = now
	}

	if err := s.db.Store().Upsert(team.TeamID, team); err != nil {
		return fmt.Errorf("failed to store team: %w", err)
	}

	s.logger.Debug().Str("team_id", team.TeamID).Msg("Stored team record")
	return nil
}

// GetTeam retrieves a team by id
func (s *TeamStorage) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	var team models.Team
	err := s.db.Store().Get(teamID, &team)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

// GetTeamsByMember returns teams where the user is owner or member
func (s *TeamStorage) GetTeamsByMember(ctx context.Context, userID int64) ([]*models.Team, error) {
	var teams []models.Team
	err := s.db.Store().Find(&teams, badgerhold.Where("OwnerID").Eq(userID).Index("OwnerID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find teams by owner: %w", err)
	}

	var all []models.Team
	if err := s.db.Store().Find(&all, badgerhold.Where("TeamID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to scan teams: %w", err)
	}
	for _, team := range all {
		if team.OwnerID == userID {
			continue // already collected via index
		}
		for _, member := range team.MemberIDs {
			if member == userID {
				teams = append(teams, team)
				break
			}
		}
	}

	result := make([]*models.Team, len(teams))
	for i := range teams {
		result[i] = &teams[i]
	}
	return result, nil
}

// DeleteTeam removes a team record
func (s *TeamStorage) DeleteTeam(ctx context.Context, teamID string) error {
	err := s.db.Store().Delete(teamID, &models.Team{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}
