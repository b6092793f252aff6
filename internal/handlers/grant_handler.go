package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
)

// AppendGrantRequest stores a new integration grant at the end of the
// sequence.
type AppendGrantRequest struct {
	InstallationID string `json:"installation_id" validate:"required"`
	AccessToken    string `json:"access_token" validate:"required"`
}

// GrantHandler serves the ordered grant store surface
type GrantHandler struct {
	grants   interfaces.GrantStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewGrantHandler(grants interfaces.GrantStorage) *GrantHandler {
	return &GrantHandler{
		grants:   grants,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

// AppendHandler handles POST /api/grants
func (h *GrantHandler) AppendHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req AppendGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	index, err := h.grants.AppendGrant(r.Context(), &models.IntegrationGrant{
		InstallationID: req.InstallationID,
		AccessToken:    req.AccessToken,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Grant append failed")
		WriteError(w, http.StatusInternalServerError, "Grant append failed")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]int{"index": index})
}

// CountHandler handles GET /api/grants. Tokens are never listed back out;
// only the count is reported.
func (h *GrantHandler) CountHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	count, err := h.grants.CountGrants(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Grant count failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

// RemoveHandler handles DELETE /api/grants/{index}
func (h *GrantHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	index, err := strconv.Atoi(PathSegment(r, "/api/grants/", 0))
	if err != nil || index < 1 {
		WriteError(w, http.StatusBadRequest, "Invalid grant index")
		return
	}

	if err := h.grants.RemoveGrant(r.Context(), index); err != nil {
		if errors.Is(err, interfaces.ErrNoGrant) {
			WriteError(w, http.StatusNotFound, "Grant not found")
			return
		}
		h.logger.Error().Err(err).Int("index", index).Msg("Grant removal failed")
		WriteError(w, http.StatusInternalServerError, "Grant removal failed")
		return
	}

	WriteSuccess(w, "Grant removed")
}
