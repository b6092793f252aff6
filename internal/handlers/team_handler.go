package handlers

import (
	"errors"
	"net/http"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// TeamHandler serves session-scoped team listing
type TeamHandler struct {
	users  interfaces.UserStorage
	teams  interfaces.TeamStorage
	logger arbor.ILogger
}

func NewTeamHandler(users interfaces.UserStorage, teams interfaces.TeamStorage) *TeamHandler {
	return &TeamHandler{
		users:  users,
		teams:  teams,
		logger: common.GetLogger(),
	}
}

// ListHandler handles GET /get-user-teams. The session id header identifies
// the caller; an unknown session is a 401, not an empty list.
func (h *TeamHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	sessionID, ok := RequireSessionID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUserBySession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusUnauthorized, "Invalid session")
			return
		}
		h.logger.Error().Err(err).Msg("Session lookup failed")
		WriteError(w, http.StatusInternalServerError, "Session lookup failed")
		return
	}

	teams, err := h.teams.GetTeamsByMember(r.Context(), user.ExternalID)
	if err != nil {
		h.logger.Error().Err(err).Str("username", user.Username).Msg("Team listing failed")
		WriteError(w, http.StatusInternalServerError, "Team listing failed")
		return
	}

	WriteJSON(w, http.StatusOK, teams)
}
