package common

import (
	"github.com/google/uuid"
)

// NewSessionID generates a session identifier. UUIDv4 carries 122 bits of
// entropy and is safe as a URL query value without further encoding.
func NewSessionID() string {
	return uuid.NewString()
}

// NewGameID generates a unique game record ID with the "game_" prefix
func NewGameID() string {
	return "game_" + uuid.New().String()
}

// NewTeamID generates a unique team record ID with the "team_" prefix
func NewTeamID() string {
	return "team_" + uuid.New().String()
}
