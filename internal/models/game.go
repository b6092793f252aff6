package models

// Team groups users and games. The core only needs teams for listing and
// for scoping game ownership on session-authenticated mutations.
type Team struct {
	TeamID    string  `json:"team_id" badgerhold:"key"`
	TeamName  string  `json:"team_name"`
	OwnerID   int64   `json:"owner_id" badgerhold:"index"` // user external id
	MemberIDs []int64 `json:"member_ids"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// Game is the backend release record. Version is the current released
// version; the upload pipeline commits a strictly greater one.
type Game struct {
	GameID     string `json:"game_id" badgerhold:"key"`
	GameName   string `json:"game_name"`
	TeamID     string `json:"team_id" badgerhold:"index"`
	Version    string `json:"version"`
	GitHubRepo string `json:"github_repo"` // "owner/repo", empty when unlinked
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

// RepoOwnerName splits GitHubRepo into owner and name. ok is false when the
// record has no linked repository or the value is malformed.
func (g *Game) RepoOwnerName() (owner, name string, ok bool) {
	if g.GitHubRepo == "" {
		return "", "", false
	}
	for i := 0; i < len(g.GitHubRepo); i++ {
		if g.GitHubRepo[i] == '/' {
			owner, name = g.GitHubRepo[:i], g.GitHubRepo[i+1:]
			return owner, name, owner != "" && name != ""
		}
	}
	return "", "", false
}
