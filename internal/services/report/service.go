// Package report provides analysis report generation services
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/prompts"
)

// DefaultReportsDir is used when no directory is configured
const DefaultReportsDir = "reports"

// Service implements ReportService
type Service struct {
	source     interfaces.MarketDataSource
	peers      interfaces.PeerService
	llm        interfaces.LLMClient
	prompts    *prompts.Set
	reportsDir string
	now        func() time.Time
	logger     *common.Logger
}

// Option configures the service
type Option func(*Service)

// WithReportsDir sets where saved reports are written
func WithReportsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.reportsDir = dir
		}
	}
}

// WithPrompts replaces the default prompt set
func WithPrompts(p *prompts.Set) Option {
	return func(s *Service) {
		if p != nil {
			s.prompts = p
		}
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new report service.
// llm may be nil; reports then carry no recommendation.
func NewService(
	source interfaces.MarketDataSource,
	peers interfaces.PeerService,
	llm interfaces.LLMClient,
	logger *common.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Service{
		source:     source,
		peers:      peers,
		llm:        llm,
		prompts:    prompts.Default(),
		reportsDir: DefaultReportsDir,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline: profile, peers, comparison, recommendation
func (s *Service) Analyze(ctx context.Context, symbol string, opts interfaces.AnalyzeOptions) (*models.AnalysisReport, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.ErrNoSymbols
	}
	s.logger.Info().Str("symbol", symbol).Msg("Generating analysis report")

	// Step 1: Company data
	data, err := s.source.GetCompanyData(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	profile := data.Profile
	if profile.Symbol == "" {
		profile.Symbol = symbol
	}

	// Step 2: Peers
	peers := s.resolvePeers(ctx, symbol, profile, opts.Peers)

	// Step 3: Comparison
	table, err := s.peers.CompareWithPeers(ctx, symbol, models.CandidateSymbols(peers))
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", symbol, err)
	}

	report := &models.AnalysisReport{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		Provider:    s.provider(),
		Profile:     profile,
		Peers:       peers,
		Table:       table,
		GeneratedAt: s.now(),
	}
	body := formatReportBody(report, &data.Statements)

	// Step 4: Recommendation
	recommendation, err := s.recommend(ctx, symbol, body, models.CandidateSymbols(peers))
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Recommendation failed (continuing)")
		report.RecommendationError = err.Error()
	}
	report.Recommendation = recommendation
	report.Markdown = appendRecommendation(body, recommendation, report.RecommendationError)

	// Step 5: Persist
	if opts.Save {
		if _, err := s.SaveReport(report); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("symbol", symbol).
		Int("peers", len(peers)).
		Bool("recommendation", report.Recommendation != "").
		Msg("Analysis report generated")

	return report, nil
}

// resolvePeers degrades to an empty peer list when discovery fails
func (s *Service) resolvePeers(ctx context.Context, symbol string, profile models.CompanyProfile, explicit []string) []models.PeerCandidate {
	peers, err := s.peers.ResolvePeers(ctx, profile, explicit)
	if err != nil {
		if !errors.Is(err, models.ErrNoLLM) {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Peer discovery failed (continuing without peers)")
		}
		return []models.PeerCandidate{}
	}
	return peers
}

func (s *Service) recommend(ctx context.Context, symbol, body string, peers []string) (string, error) {
	if s.llm == nil {
		return "", models.ErrNoLLM
	}
	prompt, err := s.prompts.RecommendationPrompt(prompts.RecommendationData{
		Symbol: symbol,
		Report: body,
		Peers:  strings.Join(peers, ", "),
	})
	if err != nil {
		return "", err
	}
	text, err := s.llm.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("recommendation for %s: %w", symbol, err)
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) provider() string {
	if s.llm == nil {
		return "none"
	}
	return s.llm.Provider()
}

// ReportFileName returns {SYMBOL}_report_{provider}_{YYYYMMDD-HHMMSS}.md
func ReportFileName(report *models.AnalysisReport) string {
	provider := report.Provider
	if provider == "" {
		provider = "none"
	}
	name := fmt.Sprintf("%s_report_%s_%s.md", report.Symbol, provider, report.GeneratedAt.Format("20060102-150405"))
	return strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(name)
}

// SaveReport writes the report markdown into the reports directory
func (s *Service) SaveReport(report *models.AnalysisReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nil report")
	}
	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(s.reportsDir, ReportFileName(report))
	if err := os.WriteFile(path, []byte(report.Markdown), 0o644); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	report.Path = path

	s.logger.Info().Str("symbol", report.Symbol).Str("path", path).Msg("Report saved")
	return path, nil
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
