package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/buildsmith/buildsmith/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteDomainError maps domain error types onto HTTP responses. Upstream
// failures pass their status and body through verbatim; validation failures
// are 400s; anything else is a 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var upstream *models.UpstreamError
	if errors.As(err, &upstream) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upstream.StatusCode)
		w.Write([]byte(upstream.Body))
		return
	}

	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		WriteError(w, http.StatusBadRequest, fieldErr.Error())
		return
	}

	WriteError(w, http.StatusInternalServerError, err.Error())
}

// RequireSessionID extracts the session id header, writing a 401 when absent.
func RequireSessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.Header.Get("sessionID")
	if sessionID == "" {
		WriteError(w, http.StatusUnauthorized, "Missing sessionID header")
		return "", false
	}
	return sessionID, true
}

// PathSegment returns the nth segment of the URL path after trimming prefix,
// empty when out of range. Used for /api/games/{id}/... style routes.
func PathSegment(r *http.Request, prefix string, n int) string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if n < 0 || n >= len(parts) {
		return ""
	}
	return parts[n]
}
