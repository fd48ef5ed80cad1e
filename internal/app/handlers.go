package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/services/report"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("peerscope\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetFinancialRatios implements the get_financial_ratios tool
func handleGetFinancialRatios(peers interfaces.PeerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		symbol = models.NormalizeSymbol(symbol)

		ratios, err := peers.CompanyRatios(ctx, symbol)
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("Ratio computation failed")
			return errorResult(fmt.Sprintf("Ratio error: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# Financial Ratios for %s\n\n", symbol))
		sb.WriteString(report.FormatRatiosMarkdown(ratios))
		return textResult(sb.String()), nil
	}
}

// handleGetPeerComparison implements the get_peer_comparison tool
func handleGetPeerComparison(peers interfaces.PeerService, source interfaces.MarketDataSource, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		symbol = models.NormalizeSymbol(symbol)
		format := request.GetString("format", "markdown")

		kept, err := resolvePeers(ctx, source, peers, symbol, request.GetStringSlice("peers", nil))
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Peer discovery failed")
			return errorResult(fmt.Sprintf("Peer discovery error: %v", err)), nil
		}

		table, err := peers.CompareWithPeers(ctx, symbol, models.CandidateSymbols(kept))
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("Peer comparison failed")
			return errorResult(fmt.Sprintf("Comparison error: %v", err)), nil
		}

		if format == "text" {
			return textResult(report.FormatComparisonText(table)), nil
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# Peer Comparison for %s\n\n", symbol))
		sb.WriteString(report.FormatComparisonMarkdown(table))
		return textResult(sb.String()), nil
	}
}

// handleDiscoverPeers implements the discover_peers tool
func handleDiscoverPeers(source interfaces.MarketDataSource, peers interfaces.PeerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		symbol = models.NormalizeSymbol(symbol)

		found, err := resolvePeers(ctx, source, peers, symbol, nil)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Peer discovery failed")
			return errorResult(fmt.Sprintf("Peer discovery error: %v", err)), nil
		}
		if len(found) == 0 {
			return textResult(fmt.Sprintf("No verifiable peers found for %s.", symbol)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# Peers of %s (top %d)\n\n", symbol, len(found)))
		sb.WriteString(report.FormatPeersMarkdown(found))
		return textResult(sb.String()), nil
	}
}

// handleAnalyzeCompany implements the analyze_company tool
func handleAnalyzeCompany(reports interfaces.ReportService, saveDefault bool, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}

		rep, err := reports.Analyze(ctx, symbol, interfaces.AnalyzeOptions{
			Peers: request.GetStringSlice("peers", nil),
			Save:  request.GetBool("save", saveDefault),
		})
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("Analysis failed")
			return errorResult(fmt.Sprintf("Analysis error: %v", err)), nil
		}

		text := rep.Markdown
		if rep.Path != "" {
			text += fmt.Sprintf("\n\n---\nSaved to: %s\n", rep.Path)
		}
		return textResult(text), nil
	}
}

// resolvePeers fetches the profile only when discovery needs it
func resolvePeers(ctx context.Context, source interfaces.MarketDataSource, peers interfaces.PeerService, symbol string, explicit []string) ([]models.PeerCandidate, error) {
	profile := models.CompanyProfile{Symbol: symbol}
	if len(explicit) == 0 {
		data, err := source.GetCompanyData(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		if data.Profile.Symbol != "" {
			profile = data.Profile
		}
	}
	return peers.ResolvePeers(ctx, profile, explicit)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
