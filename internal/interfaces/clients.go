// Package interfaces defines service contracts for peerscope
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/peerscope/internal/models"
)

// MarketDataSource supplies statements, snapshot and profile for a symbol
type MarketDataSource interface {
	// GetCompanyData fetches statements, market snapshot and profile.
	// Unknown symbols return an error wrapping models.ErrSymbolNotFound.
	GetCompanyData(ctx context.Context, symbol string) (*models.CompanyData, error)

	// ValidateSymbol reports whether the source has recent prices for the symbol
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)
}

// EODHDClient provides access to EODHD API
type EODHDClient interface {
	MarketDataSource

	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}

// LLMClient generates text from a prompt
type LLMClient interface {
	// GenerateContent generates content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// Provider returns the provider name, e.g. "gemini"
	Provider() string
}
