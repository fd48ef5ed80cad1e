// Package peer builds ratio comparison tables for a company and its peers
package peer

import (
	"context"
	"fmt"

	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/prompts"
	"github.com/bobmcallan/peerscope/internal/ratios"
)

const (
	DefaultMaxPeers   = 5
	DefaultCandidates = 10
)

// Service implements PeerService
type Service struct {
	source     interfaces.MarketDataSource
	llm        interfaces.LLMClient
	prompts    *prompts.Set
	maxPeers   int
	candidates int
	logger     *common.Logger
}

// Option configures the service
type Option func(*Service)

// WithMaxPeers caps how many peers survive filtering
func WithMaxPeers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPeers = n
		}
	}
}

// WithCandidates sets how many peers the LLM is asked for
func WithCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.candidates = n
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

// NewService creates a new peer service.
// llm may be nil; DiscoverPeers then returns models.ErrNoLLM.
func NewService(source interfaces.MarketDataSource, llm interfaces.LLMClient, logger *common.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Service{
		source:     source,
		llm:        llm,
		prompts:    prompts.Default(),
		maxPeers:   DefaultMaxPeers,
		candidates: DefaultCandidates,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompanyRatios fetches one company and computes its ratio set
func (s *Service) CompanyRatios(ctx context.Context, symbol string) (models.RatioSet, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.ErrNoSymbols
	}

	data, err := s.source.GetCompanyData(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	return ratios.Compute(&data.Statements, data.Snapshot), nil
}

// Compare builds a table with one column per symbol in request order.
// Blank and repeated symbols are skipped. A symbol that cannot be fetched
// gets an error column; the others are unaffected.
func (s *Service) Compare(ctx context.Context, symbols []string) (*models.PeerComparisonTable, error) {
	ordered := dedupe(symbols)
	if len(ordered) == 0 {
		return nil, models.ErrNoSymbols
	}

	table := &models.PeerComparisonTable{Columns: make([]models.CompanyColumn, 0, len(ordered))}
	for _, symbol := range ordered {
		table.Columns = append(table.Columns, s.column(ctx, symbol))
	}
	table.Benchmark = Benchmark(table.Columns)

	s.logger.Info().
		Strs("symbols", ordered).
		Int("failed", countFailed(table.Columns)).
		Msg("Peer comparison built")

	return table, nil
}

// CompareWithPeers builds a table with the primary symbol first
func (s *Service) CompareWithPeers(ctx context.Context, primary string, peers []string) (*models.PeerComparisonTable, error) {
	if models.NormalizeSymbol(primary) == "" {
		return nil, models.ErrNoSymbols
	}
	return s.Compare(ctx, append([]string{primary}, peers...))
}

func (s *Service) column(ctx context.Context, symbol string) models.CompanyColumn {
	data, err := s.source.GetCompanyData(ctx, symbol)
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Company fetch failed, column marked as error")
		return models.CompanyColumn{Symbol: symbol, Error: err.Error()}
	}
	return models.CompanyColumn{
		Symbol: symbol,
		Ratios: ratios.Compute(&data.Statements, data.Snapshot),
	}
}

// Benchmark returns the mean of each ratio's defined values across the
// columns. Failed columns are skipped; a ratio with no defined values is
// undefined.
func Benchmark(columns []models.CompanyColumn) models.RatioSet {
	out := models.NewRatioSet()
	for _, name := range models.RatioNames {
		sum, n := 0.0, 0
		for _, c := range columns {
			if f, ok := c.Value(name).Get(); ok {
				sum += f
				n++
			}
		}
		if n > 0 {
			out[name] = models.Of(sum / float64(n))
		}
	}
	return out
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		sym := models.NormalizeSymbol(raw)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

func countFailed(columns []models.CompanyColumn) int {
	n := 0
	for _, c := range columns {
		if c.Failed() {
			n++
		}
	}
	return n
}

// Ensure Service implements PeerService
var _ interfaces.PeerService = (*Service)(nil)
