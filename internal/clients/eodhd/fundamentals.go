package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/bobmcallan/peerscope/internal/models"
)

// fundamentalsResponse represents the parts of /fundamentals used for ratios
type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Exchange     string `json:"Exchange"`
		CurrencyCode string `json:"CurrencyCode"`
		CountryName  string `json:"CountryName"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		Description  string `json:"Description"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization flexValue `json:"MarketCapitalization"`
		PERatio              flexValue `json:"PERatio"`
	} `json:"Highlights"`
	Valuation struct {
		TrailingPE flexValue `json:"TrailingPE"`
	} `json:"Valuation"`
	Financials struct {
		BalanceSheet    statementGroup[balanceSheetEntry]    `json:"Balance_Sheet"`
		IncomeStatement statementGroup[incomeStatementEntry] `json:"Income_Statement"`
		CashFlow        statementGroup[cashFlowEntry]        `json:"Cash_Flow"`
	} `json:"Financials"`
}

// statementGroup holds one statement keyed by period end date
type statementGroup[T any] struct {
	CurrencySymbol string       `json:"currency_symbol"`
	Yearly         yearlyMap[T] `json:"yearly"`
}

// yearlyMap decodes an object keyed by date. EODHD sends [] when empty.
type yearlyMap[T any] map[string]T

func (m *yearlyMap[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*m = nil
		return nil
	}
	return json.Unmarshal(trimmed, (*map[string]T)(m))
}

type balanceSheetEntry struct {
	TotalCurrentAssets           flexValue `json:"totalCurrentAssets"`
	TotalCurrentLiabilities      flexValue `json:"totalCurrentLiabilities"`
	TotalAssets                  flexValue `json:"totalAssets"`
	TotalStockholderEquity       flexValue `json:"totalStockholderEquity"`
	ShortLongTermDebtTotal       flexValue `json:"shortLongTermDebtTotal"`
	ShortTermDebt                flexValue `json:"shortTermDebt"`
	LongTermDebt                 flexValue `json:"longTermDebt"`
	CashAndEquivalents           flexValue `json:"cashAndEquivalents"`
	Cash                         flexValue `json:"cash"`
	Inventory                    flexValue `json:"inventory"`
	CommonStockSharesOutstanding flexValue `json:"commonStockSharesOutstanding"`
}

type incomeStatementEntry struct {
	TotalRevenue                flexValue `json:"totalRevenue"`
	OperatingIncome             flexValue `json:"operatingIncome"`
	NetIncome                   flexValue `json:"netIncome"`
	CostOfRevenue               flexValue `json:"costOfRevenue"`
	EBIT                        flexValue `json:"ebit"`
	EBITDA                      flexValue `json:"ebitda"`
	InterestExpense             flexValue `json:"interestExpense"`
	DepreciationAndAmortization flexValue `json:"depreciationAndAmortization"`
}

type cashFlowEntry struct {
	FreeCashFlow                     flexValue `json:"freeCashFlow"`
	TotalCashFromOperatingActivities flexValue `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              flexValue `json:"capitalExpenditures"`
	Depreciation                     flexValue `json:"depreciation"`
}

// GetCompanyData retrieves fundamentals and the last close for a symbol
func (c *Client) GetCompanyData(ctx context.Context, symbol string) (*models.CompanyData, error) {
	path := fmt.Sprintf("/fundamentals/%s", url.PathEscape(symbol))

	var raw json.RawMessage
	if err := c.get(ctx, path, nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", symbol, models.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("fundamentals %s: %w", symbol, err)
	}

	// Unknown tickers come back as an empty array or object
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrSymbolNotFound)
	}

	var resp fundamentalsResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode fundamentals for %s: %w", symbol, err)
	}
	if resp.General.Code == "" && len(resp.Financials.BalanceSheet.Yearly) == 0 && len(resp.Financials.IncomeStatement.Yearly) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrSymbolNotFound)
	}

	statements := buildStatements(symbol, &resp)
	if len(statements.Periods) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoStatements)
	}

	snapshot := models.MarketSnapshot{
		MarketCap:  resp.Highlights.MarketCapitalization.value(),
		TrailingPE: resp.Valuation.TrailingPE.value(),
		AsOf:       c.now(),
	}
	if !snapshot.TrailingPE.Defined() {
		snapshot.TrailingPE = resp.Highlights.PERatio.value()
	}

	price, err := c.lastClose(ctx, symbol)
	if err != nil {
		c.logger.Warn().Str("symbol", symbol).Err(err).Msg("Price lookup failed, snapshot price left undefined")
	}
	snapshot.Price = price

	return &models.CompanyData{
		Profile: models.CompanyProfile{
			Symbol:      symbol,
			Name:        resp.General.Name,
			Exchange:    resp.General.Exchange,
			Country:     resp.General.CountryName,
			Currency:    resp.General.CurrencyCode,
			Sector:      resp.General.Sector,
			Industry:    resp.General.Industry,
			Description: resp.General.Description,
		},
		Statements: statements,
		Snapshot:   snapshot,
	}, nil
}

// buildStatements merges the three yearly statements into periods keyed by
// end date, sorted ascending. Undefined fields are left out of the period.
func buildStatements(symbol string, resp *fundamentalsResponse) models.FinancialStatementSet {
	periods := make(map[string]*models.Period)
	period := func(date string) *models.Period {
		if p, ok := periods[date]; ok {
			return p
		}
		end, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil
		}
		p := &models.Period{EndDate: end, Items: make(map[string]float64)}
		periods[date] = p
		return p
	}

	for date, e := range resp.Financials.BalanceSheet.Yearly {
		p := period(date)
		if p == nil {
			continue
		}
		set(p, models.ItemCurrentAssets, e.TotalCurrentAssets)
		set(p, models.ItemCurrentLiabilities, e.TotalCurrentLiabilities)
		set(p, models.ItemTotalAssets, e.TotalAssets)
		set(p, models.ItemStockholdersEquity, e.TotalStockholderEquity)
		set(p, models.ItemTotalDebt, e.ShortLongTermDebtTotal)
		if !p.Has(models.ItemTotalDebt) {
			setSum(p, models.ItemTotalDebt, e.ShortTermDebt, e.LongTermDebt)
		}
		set(p, models.ItemCash, e.CashAndEquivalents)
		if !p.Has(models.ItemCash) {
			set(p, models.ItemCash, e.Cash)
		}
		set(p, models.ItemInventory, e.Inventory)
		set(p, models.ItemSharesOutstanding, e.CommonStockSharesOutstanding)
	}

	for date, e := range resp.Financials.IncomeStatement.Yearly {
		p := period(date)
		if p == nil {
			continue
		}
		set(p, models.ItemTotalRevenue, e.TotalRevenue)
		set(p, models.ItemOperatingIncome, e.OperatingIncome)
		set(p, models.ItemNetIncome, e.NetIncome)
		set(p, models.ItemCostOfRevenue, e.CostOfRevenue)
		set(p, models.ItemEBIT, e.EBIT)
		set(p, models.ItemEBITDA, e.EBITDA)
		set(p, models.ItemInterestExpense, e.InterestExpense)
		set(p, models.ItemDepreciation, e.DepreciationAndAmortization)
	}

	for date, e := range resp.Financials.CashFlow.Yearly {
		p := period(date)
		if p == nil {
			continue
		}
		set(p, models.ItemFreeCashFlow, e.FreeCashFlow)
		set(p, models.ItemOperatingCashFlow, e.TotalCashFromOperatingActivities)
		set(p, models.ItemCapitalExpenditure, e.CapitalExpenditures)
		if !p.Has(models.ItemDepreciation) {
			set(p, models.ItemDepreciation, e.Depreciation)
		}
	}

	out := models.FinancialStatementSet{
		Symbol:   symbol,
		Currency: resp.Financials.BalanceSheet.CurrencySymbol,
	}
	if out.Currency == "" {
		out.Currency = resp.General.CurrencyCode
	}
	for _, p := range periods {
		if len(p.Items) == 0 {
			continue
		}
		out.Periods = append(out.Periods, *p)
	}
	out.Sort()
	return out
}

func set(p *models.Period, item string, v flexValue) {
	if f, ok := v.value().Get(); ok {
		p.Items[item] = f
	}
}

// setSum stores the sum of the defined parts, or nothing when none are defined
func setSum(p *models.Period, item string, parts ...flexValue) {
	total, found := 0.0, false
	for _, part := range parts {
		if f, ok := part.value().Get(); ok {
			total += f
			found = true
		}
	}
	if found {
		p.Items[item] = total
	}
}
