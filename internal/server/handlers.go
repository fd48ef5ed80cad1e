package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/services/report"
)

type ratiosResponse struct {
	Symbol string              `json:"symbol"`
	Ratios []models.RatioValue `json:"ratios"`
}

type peersResponse struct {
	Symbol string                      `json:"symbol"`
	Peers  []models.PeerCandidate      `json:"peers"`
	Table  *models.PeerComparisonTable `json:"table"`
}

type compareRequest struct {
	Symbols []string `json:"symbols"`
}

// handleRatios handles GET /api/ratios/{symbol}.
func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := models.NormalizeSymbol(PathParam(r, "/api/ratios/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	rs, err := s.app.PeerService.CompanyRatios(r.Context(), symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Ratio computation failed")
		WriteError(w, statusFor(err), err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, ratiosResponse{Symbol: symbol, Ratios: rs.Ordered()})
}

// handlePeers handles GET /api/peers/{symbol}?peers=A,B&format=json|markdown|text.
func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol = models.NormalizeSymbol(symbol)

	peers, table, ok := s.comparison(w, r, symbol)
	if !ok {
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "markdown", "md":
		WriteText(w, http.StatusOK, "text/markdown; charset=utf-8", []byte(report.FormatComparisonMarkdown(table)))
	case "text":
		WriteText(w, http.StatusOK, "text/plain; charset=utf-8", []byte(report.FormatComparisonText(table)))
	default:
		WriteJSON(w, http.StatusOK, peersResponse{Symbol: symbol, Peers: peers, Table: table})
	}
}

// handlePeerChart handles GET /api/peers/{symbol}/chart.png?ratio=...&peers=A,B.
func (s *Server) handlePeerChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol = models.NormalizeSymbol(symbol)

	ratio := models.RatioPE
	if raw := r.URL.Query().Get("ratio"); raw != "" {
		name, ok := models.ParseRatioName(raw)
		if !ok {
			WriteErrorWithCode(w, http.StatusBadRequest, "unknown ratio: "+raw, "unknown_ratio")
			return
		}
		ratio = name
	}

	_, table, ok := s.comparison(w, r, symbol)
	if !ok {
		return
	}

	png, err := s.app.ReportService.RenderChart(table, ratio)
	if err != nil {
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "chart_unavailable")
		return
	}
	WriteText(w, http.StatusOK, "image/png", png)
}

// handleCompare handles POST /api/compare with {"symbols": [...]}. Columns
// follow the request order; no peer filtering is applied.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req compareRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	table, err := s.app.PeerService.Compare(r.Context(), req.Symbols)
	if err != nil {
		WriteError(w, statusFor(err), err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, table)
}

// handleAnalysis handles GET /api/analysis/{symbol}?peers=A,B&save=true&format=json|markdown|html.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := models.NormalizeSymbol(PathParam(r, "/api/analysis/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	q := r.URL.Query()
	save := s.app.Config.Reports.Save
	if raw := q.Get("save"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "save must be true or false")
			return
		}
		save = v
	}

	rep, err := s.app.ReportService.Analyze(r.Context(), symbol, interfaces.AnalyzeOptions{
		Peers: SplitList(q.Get("peers")),
		Save:  save,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Analysis failed")
		WriteError(w, statusFor(err), err.Error())
		return
	}

	switch strings.ToLower(q.Get("format")) {
	case "html":
		page, err := s.app.ReportService.RenderHTML(rep.Markdown)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteText(w, http.StatusOK, "text/html; charset=utf-8", []byte(page))
	case "markdown", "md":
		WriteText(w, http.StatusOK, "text/markdown; charset=utf-8", []byte(rep.Markdown))
	default:
		WriteJSON(w, http.StatusOK, rep)
	}
}

// comparison resolves the peers of symbol and builds its table. It writes the
// error response and returns false on failure.
func (s *Server) comparison(w http.ResponseWriter, r *http.Request, symbol string) ([]models.PeerCandidate, *models.PeerComparisonTable, bool) {
	ctx := r.Context()

	peers, err := s.app.ResolvePeers(ctx, symbol, SplitList(r.URL.Query().Get("peers")))
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Peer discovery failed")
		WriteError(w, statusFor(err), err.Error())
		return nil, nil, false
	}

	table, err := s.app.PeerService.CompareWithPeers(ctx, symbol, models.CandidateSymbols(peers))
	if err != nil {
		WriteError(w, statusFor(err), err.Error())
		return nil, nil, false
	}
	return peers, table, true
}
