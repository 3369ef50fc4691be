package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Parsing
	mux.HandleFunc("/api/parse", s.parseHandler.ParseTitleHandler)       // POST - parse one title
	mux.HandleFunc("/api/parse/batch", s.parseHandler.BatchParseHandler) // POST - parse up to 1000 titles

	// API routes - Pattern library (read-only; curation goes through the CLI)
	mux.HandleFunc("/api/patterns", s.patternHandler.ListPatternsHandler) // GET - list patterns, ?type= filter

	// API routes - System
	mux.HandleFunc("/api/status", s.statusHandler.GetStatusHandler) // GET - application status
	mux.HandleFunc("/api/health", s.statusHandler.HealthHandler)    // GET - liveness probe
	mux.HandleFunc("/api/version", s.statusHandler.VersionHandler)  // GET - build version

	return mux
}
