package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
)

// RegisterUserRequest is the record store registration payload. Registration
// is an upsert keyed by provider id; the session binding always moves to the
// most recent login.
type RegisterUserRequest struct {
	GitHubID  int64  `json:"github_id" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

// UserHandler serves the record store's user surface
type UserHandler struct {
	storage  interfaces.UserStorage
	apiKey   string
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewUserHandler(storage interfaces.UserStorage, apiKey string) *UserHandler {
	return &UserHandler{
		storage:  storage,
		apiKey:   apiKey,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

// RegisterHandler handles POST /rest-api/users. Service-to-service calls
// authenticate with the x-api-key header, not a session.
func (h *UserHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if h.apiKey == "" || r.Header.Get("x-api-key") != h.apiKey {
		WriteError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := &models.User{
		ExternalID: req.GitHubID,
		Username:   req.Username,
		Email:      req.Email,
		SessionID:  req.SessionID,
	}
	if err := h.storage.StoreUser(r.Context(), user); err != nil {
		h.logger.Error().Err(err).Str("username", req.Username).Msg("Failed to store user")
		WriteError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{
		"status":   "success",
		"username": req.Username,
	})
}
