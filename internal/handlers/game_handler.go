package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/buildsmith/buildsmith/internal/release"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
)

// maxUploadMemory bounds the multipart form buffer; file parts past this
// spill to disk.
const maxUploadMemory = 32 << 20

// UpdateGameRequest commits a new current version for a game record.
type UpdateGameRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	GameID    string `json:"game_id" validate:"required"`
	Version   string `json:"version" validate:"required"`
}

// DeleteGameRequest removes a game record.
type DeleteGameRequest struct {
	GameID    string `json:"gameId" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

// GameHandler serves game records, their CI status, and the release upload
// surface.
type GameHandler struct {
	users      interfaces.UserStorage
	teams      interfaces.TeamStorage
	games      interfaces.GameStorage
	aggregator interfaces.StatusAggregator
	pipelines  *release.PipelineFactory
	validate   *validator.Validate
	logger     arbor.ILogger
}

func NewGameHandler(users interfaces.UserStorage, teams interfaces.TeamStorage, games interfaces.GameStorage, aggregator interfaces.StatusAggregator, pipelines *release.PipelineFactory) *GameHandler {
	return &GameHandler{
		users:      users,
		teams:      teams,
		games:      games,
		aggregator: aggregator,
		pipelines:  pipelines,
		validate:   validator.New(),
		logger:     common.GetLogger(),
	}
}

// requireSession resolves the session to a user, writing the error response
// on failure.
func (h *GameHandler) requireSession(w http.ResponseWriter, r *http.Request, sessionID string) (*models.User, bool) {
	user, err := h.users.GetUserBySession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusUnauthorized, "Invalid session")
		} else {
			h.logger.Error().Err(err).Msg("Session lookup failed")
			WriteError(w, http.StatusInternalServerError, "Session lookup failed")
		}
		return nil, false
	}
	return user, true
}

// requireOwnership checks that the user belongs to the game's owning team,
// writing the error response on failure. Games without a team scope are
// open to any authenticated session.
func (h *GameHandler) requireOwnership(w http.ResponseWriter, r *http.Request, user *models.User, game *models.Game) bool {
	if game.TeamID == "" {
		return true
	}

	teams, err := h.teams.GetTeamsByMember(r.Context(), user.ExternalID)
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", game.GameID).Msg("Team lookup failed")
		WriteError(w, http.StatusInternalServerError, "Team lookup failed")
		return false
	}

	for _, team := range teams {
		if team.TeamID == game.TeamID {
			return true
		}
	}

	WriteError(w, http.StatusForbidden, "Not a member of the owning team")
	return false
}

// UpdateHandler handles PUT /update-game. The proposed version must be
// strictly greater than the stored one; equal or lower proposals are
// rejected before anything is written.
func (h *GameHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	var req UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.requireSession(w, r, req.SessionID)
	if !ok {
		return
	}

	game, err := h.games.GetGame(r.Context(), req.GameID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Game lookup failed")
		return
	}

	if !h.requireOwnership(w, r, user, game) {
		return
	}

	if err := models.ValidateProposedVersion(game.Version, req.Version); err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := h.games.UpdateGameVersion(r.Context(), req.GameID, req.Version); err != nil {
		h.logger.Error().Err(err).Str("game_id", req.GameID).Msg("Version update failed")
		WriteError(w, http.StatusInternalServerError, "Version update failed")
		return
	}

	WriteSuccess(w, "Game version updated")
}

// DeleteHandler handles DELETE /delete-game
func (h *GameHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	var req DeleteGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.requireSession(w, r, req.SessionID)
	if !ok {
		return
	}

	game, err := h.games.GetGame(r.Context(), req.GameID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Game lookup failed")
		return
	}

	if !h.requireOwnership(w, r, user, game) {
		return
	}

	if err := h.games.DeleteGame(r.Context(), game.GameID); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		h.logger.Error().Err(err).Str("game_id", req.GameID).Msg("Game deletion failed")
		WriteError(w, http.StatusInternalServerError, "Game deletion failed")
		return
	}

	WriteSuccess(w, "Game deleted")
}

// WorkflowsHandler handles GET /api/games/{id}/workflows, returning the run
// list and derived deploy status.
func (h *GameHandler) WorkflowsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	gameID := PathSegment(r, "/api/games/", 0)
	if gameID == "" {
		WriteError(w, http.StatusBadRequest, "Missing game id")
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Game lookup failed")
		return
	}

	status, err := h.aggregator.GameStatus(r.Context(), game)
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID).Msg("Workflow status failed")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, status)
}

// WorkflowLogHandler handles GET /api/games/{id}/workflows/{runID}/log. Logs
// are fetched from the CI provider on demand, never cached.
func (h *GameHandler) WorkflowLogHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	gameID := PathSegment(r, "/api/games/", 0)
	runIDStr := PathSegment(r, "/api/games/", 2)
	runID, err := strconv.ParseInt(runIDStr, 10, 64)
	if gameID == "" || err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid game id or run id")
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Game lookup failed")
		return
	}

	log, err := h.aggregator.GameRunLog(r.Context(), game, runID)
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID).Msg("Workflow log fetch failed")
		WriteDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.WriteHeader(http.StatusOK)
	w.Write(log)
}

// UploadHandler handles POST /api/games/{id}/upload. The multipart form
// carries the artifact under "file" and the proposed version under
// "version"; the session id header authenticates the caller.
func (h *GameHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	sessionID, ok := RequireSessionID(w, r)
	if !ok {
		return
	}
	user, ok := h.requireSession(w, r, sessionID)
	if !ok {
		return
	}

	gameID := PathSegment(r, "/api/games/", 0)
	if gameID == "" {
		WriteError(w, http.StatusBadRequest, "Missing game id")
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Game lookup failed")
		return
	}

	if !h.requireOwnership(w, r, user, game) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file part")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/zip"
	}

	// Each request drives its own pipeline; concurrent uploads never share
	// staged state.
	pipeline := h.pipelines.New()

	if err := pipeline.SelectFile(&models.SelectedFile{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	}, file); err != nil {
		WriteDomainError(w, err)
		return
	}

	version := r.FormValue("version")
	if err := pipeline.ProposeVersion(game.Version, version); err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := pipeline.Run(r.Context(), sessionID, game); err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID).Str("version", version).Msg("Release upload failed")
		var partial *models.PartialCommitError
		if errors.As(err, &partial) {
			WriteJSON(w, http.StatusBadGateway, map[string]string{
				"status":  "partial",
				"error":   partial.Error(),
				"game_id": partial.GameID,
				"version": partial.Version,
			})
			return
		}
		WriteDomainError(w, err)
		return
	}

	// Keep the local record in step with the committed version
	if err := h.games.UpdateGameVersion(r.Context(), gameID, version); err != nil {
		h.logger.Warn().Err(err).Str("game_id", gameID).Msg("Local version record update failed")
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"game_id": gameID,
		"version": version,
	})
}

// SuggestVersionHandler handles GET /api/games/{id}/next-version, the default
// proposal offered before an upload.
func (h *GameHandler) SuggestVersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	gameID := PathSegment(r, "/api/games/", 0)
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Game not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Game lookup failed")
		return
	}

	next, err := release.SuggestNextVersion(game.Version)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"current": game.Version,
		"next":    next,
	})
}
