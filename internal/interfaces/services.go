package interfaces

import (
	"context"

	"github.com/bobmcallan/peerscope/internal/models"
)

// PeerService computes ratios and peer comparison tables
type PeerService interface {
	// CompanyRatios fetches one company and computes its ratio set
	CompanyRatios(ctx context.Context, symbol string) (models.RatioSet, error)

	// Compare builds a table with one column per symbol, in order
	Compare(ctx context.Context, symbols []string) (*models.PeerComparisonTable, error)

	// CompareWithPeers builds a table with the primary symbol first
	CompareWithPeers(ctx context.Context, primary string, peers []string) (*models.PeerComparisonTable, error)

	// FilterPeers keeps verifiable candidates, capped and sorted by symbol
	FilterPeers(ctx context.Context, primary string, candidates []models.PeerCandidate) []models.PeerCandidate

	// DiscoverPeers asks the LLM for candidates and filters them
	DiscoverPeers(ctx context.Context, profile models.CompanyProfile) ([]models.PeerCandidate, error)

	// ResolvePeers filters explicit peers, or discovers them when none are given
	ResolvePeers(ctx context.Context, profile models.CompanyProfile, explicit []string) ([]models.PeerCandidate, error)
}

// AnalyzeOptions configures a recommendation run
type AnalyzeOptions struct {
	Peers []string // explicit peers; discovery is skipped when set
	Save  bool     // write the markdown report to the reports directory
}

// ReportService produces recommendation reports
type ReportService interface {
	// Analyze runs discovery, comparison and the LLM recommendation
	Analyze(ctx context.Context, symbol string, opts AnalyzeOptions) (*models.AnalysisReport, error)

	// SaveReport writes the report markdown and returns its path
	SaveReport(report *models.AnalysisReport) (string, error)

	// RenderHTML converts report markdown to HTML
	RenderHTML(markdown string) (string, error)

	// RenderChart draws one ratio across the table columns as a PNG
	RenderChart(table *models.PeerComparisonTable, ratio models.RatioName) ([]byte, error)
}
