package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (upload state and progress events)
	mux.Handle("/ws", s.app.WSHandler)

	// OAuth callback (desktop deep link or web redirect)
	mux.HandleFunc("/auth/callback", s.app.AuthHandler.CallbackHandler)

	// Record-store surface consumed by the backend registration flow
	mux.HandleFunc("/rest-api/users", s.app.UserHandler.RegisterHandler)
	mux.HandleFunc("/get-user-teams", s.app.TeamHandler.ListHandler)
	mux.HandleFunc("/update-game", s.app.GameHandler.UpdateHandler)
	mux.HandleFunc("/delete-game", s.app.GameHandler.DeleteHandler)

	// API routes - Games (workflow status, logs, upload, version suggestion)
	mux.HandleFunc("/api/games/", s.handleGameRoutes) // Handles /api/games/{id} subpaths

	// API routes - Installation grants
	mux.HandleFunc("/api/grants", s.handleGrantsRoute)  // GET (count), POST (append)
	mux.HandleFunc("/api/grants/", s.handleGrantRoutes) // DELETE /{index}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleGameRoutes routes game-related requests to the appropriate handler
func (s *Server) handleGameRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// GET /api/games/{id}/workflows/{runID}/log
	if r.Method == "GET" && strings.HasSuffix(path, "/log") && strings.Contains(path, "/workflows/") {
		s.app.GameHandler.WorkflowLogHandler(w, r)
		return
	}

	// GET /api/games/{id}/workflows
	if r.Method == "GET" && strings.HasSuffix(path, "/workflows") {
		s.app.GameHandler.WorkflowsHandler(w, r)
		return
	}

	// GET /api/games/{id}/next-version
	if r.Method == "GET" && strings.HasSuffix(path, "/next-version") {
		s.app.GameHandler.SuggestVersionHandler(w, r)
		return
	}

	// POST /api/games/{id}/upload
	if r.Method == "POST" && strings.HasSuffix(path, "/upload") {
		s.app.GameHandler.UploadHandler(w, r)
		return
	}

	http.Error(w, "Not found", http.StatusNotFound)
}

// handleGrantsRoute routes /api/grants requests (count and append)
func (s *Server) handleGrantsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.GrantHandler.CountHandler(w, r)
	case "POST":
		s.app.GrantHandler.AppendHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGrantRoutes routes /api/grants/{index} requests
func (s *Server) handleGrantRoutes(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Path) <= len("/api/grants/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "DELETE":
		s.app.GrantHandler.RemoveHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
