// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
)

// MockMarketDataSource implements MarketDataSource for testing.
// Symbols present in Companies are valid unless listed in Invalid.
type MockMarketDataSource struct {
	mu              sync.Mutex
	Companies       map[string]*models.CompanyData
	Invalid         map[string]bool
	FetchErrors     map[string]error
	ValidateErrors  map[string]error
	GetCompanyCalls int
	ValidateCalls   int
	FetchedSymbols  []string
}

// NewMockMarketDataSource creates an empty mock source
func NewMockMarketDataSource() *MockMarketDataSource {
	return &MockMarketDataSource{
		Companies:      make(map[string]*models.CompanyData),
		Invalid:        make(map[string]bool),
		FetchErrors:    make(map[string]error),
		ValidateErrors: make(map[string]error),
	}
}

// Add registers a company and returns the mock for chaining
func (m *MockMarketDataSource) Add(symbol string, data *models.CompanyData) *MockMarketDataSource {
	m.Companies[symbol] = data
	return m
}

func (m *MockMarketDataSource) GetCompanyData(ctx context.Context, symbol string) (*models.CompanyData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCompanyCalls++
	m.FetchedSymbols = append(m.FetchedSymbols, symbol)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.FetchErrors[symbol]; ok {
		return nil, err
	}
	if data, ok := m.Companies[symbol]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", symbol, models.ErrSymbolNotFound)
}

func (m *MockMarketDataSource) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidateCalls++

	if err, ok := m.ValidateErrors[symbol]; ok {
		return false, err
	}
	if m.Invalid[symbol] {
		return false, nil
	}
	_, ok := m.Companies[symbol]
	return ok, nil
}

// MockLLMClient implements LLMClient for testing. Responses are returned in
// order; the last one repeats once the list is exhausted.
type MockLLMClient struct {
	mu        sync.Mutex
	Name      string
	Responses []string
	Err       error
	Prompts   []string
}

// NewMockLLMClient creates a mock that answers with the given responses
func NewMockLLMClient(responses ...string) *MockLLMClient {
	return &MockLLMClient{Name: "mock", Responses: responses}
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", models.ErrEmptyResponse
	}
	i := len(m.Prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

func (m *MockLLMClient) Provider() string {
	return m.Name
}

// SampleCompany builds a two-period company whose ratios are easy to reason
// about: Current Ratio = scale, Revenue Growth = 10%.
func SampleCompany(symbol, name string, scale float64) *models.CompanyData {
	prev := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	cur := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	return &models.CompanyData{
		Profile: models.CompanyProfile{
			Symbol:      symbol,
			Name:        name,
			Exchange:    "US",
			Sector:      "Technology",
			Industry:    "Software",
			Description: name + " builds software.",
		},
		Statements: models.FinancialStatementSet{
			Symbol: symbol,
			Periods: []models.Period{
				{EndDate: prev, Items: map[string]float64{
					models.ItemTotalRevenue:      100,
					models.ItemEBIT:              20,
					models.ItemNetIncome:         10,
					models.ItemSharesOutstanding: 10,
					models.ItemFreeCashFlow:      8,
				}},
				{EndDate: cur, Items: map[string]float64{
					models.ItemCurrentAssets:      100 * scale,
					models.ItemCurrentLiabilities: 100,
					models.ItemTotalAssets:        1000,
					models.ItemStockholdersEquity: 500,
					models.ItemTotalDebt:          200,
					models.ItemCash:               50,
					models.ItemTotalRevenue:       110,
					models.ItemOperatingIncome:    22,
					models.ItemNetIncome:          11,
					models.ItemCostOfRevenue:      60,
					models.ItemEBIT:               22,
					models.ItemDepreciation:       3,
					models.ItemInterestExpense:    2,
					models.ItemSharesOutstanding:  10,
					models.ItemFreeCashFlow:       9,
				}},
			},
		},
		Snapshot: models.MarketSnapshot{
			MarketCap:  models.Of(2000),
			TrailingPE: models.Of(20),
			Price:      models.Of(100),
		},
	}
}

var (
	_ interfaces.MarketDataSource = (*MockMarketDataSource)(nil)
	_ interfaces.LLMClient        = (*MockLLMClient)(nil)
)
