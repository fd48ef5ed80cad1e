package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/models"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Ratios and peers
	mux.HandleFunc("/api/ratios/", s.handleRatios)
	mux.HandleFunc("/api/peers/", s.routePeers)
	mux.HandleFunc("/api/compare", s.handleCompare)

	// Reports
	mux.HandleFunc("/api/analysis/", s.handleAnalysis)
}

// routePeers dispatches /api/peers/{symbol}[/chart.png].
func (s *Server) routePeers(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/peers/")
	if path == "" || path == "/chart.png" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	if strings.HasSuffix(path, "/chart.png") {
		s.handlePeerChart(w, r, strings.TrimSuffix(path, "/chart.png"))
		return
	}
	if strings.Contains(path, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handlePeers(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// statusFor maps a domain error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSymbolNotFound), errors.Is(err, models.ErrNoStatements):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoSymbols):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoLLM):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
