package models

import (
	"sort"
	"time"
)

// Canonical line-item names used in statement periods
const (
	ItemCurrentAssets      = "Current Assets"
	ItemCurrentLiabilities = "Current Liabilities"
	ItemTotalAssets        = "Total Assets"
	ItemStockholdersEquity = "Stockholders Equity"
	ItemTotalDebt          = "Total Debt"
	ItemTotalRevenue       = "Total Revenue"
	ItemOperatingIncome    = "Operating Income"
	ItemNetIncome          = "Net Income"
	ItemCostOfRevenue      = "Cost Of Revenue"
	ItemEBIT               = "EBIT"
	ItemEBITDA             = "EBITDA"
	ItemDepreciation       = "Depreciation And Amortization"
	ItemInterestExpense    = "Interest Expense"
	ItemCash               = "Cash And Cash Equivalents"
	ItemSharesOutstanding  = "Ordinary Shares Number"
	ItemFreeCashFlow       = "Free Cash Flow"
	ItemOperatingCashFlow  = "Operating Cash Flow"
	ItemCapitalExpenditure = "Capital Expenditure"
	ItemInventory          = "Inventory"
)

// Period is one reporting period. A line item that was not reported is
// absent from Items.
type Period struct {
	EndDate time.Time          `json:"end_date"`
	Items   map[string]float64 `json:"items"`
}

// Get returns the line item as an optional value
func (p Period) Get(item string) Value {
	f, ok := p.Items[item]
	if !ok {
		return Undefined()
	}
	return Of(f)
}

// Has reports whether the line item was reported
func (p Period) Has(item string) bool {
	_, ok := p.Items[item]
	return ok
}

// FinancialStatementSet holds a company's reporting periods ordered
// ascending by end date.
type FinancialStatementSet struct {
	Symbol   string   `json:"symbol"`
	Currency string   `json:"currency,omitempty"`
	Periods  []Period `json:"periods"`
}

// Sort orders periods ascending by end date
func (s *FinancialStatementSet) Sort() {
	sort.SliceStable(s.Periods, func(i, j int) bool {
		return s.Periods[i].EndDate.Before(s.Periods[j].EndDate)
	})
}

// Latest returns the most recent period
func (s *FinancialStatementSet) Latest() (Period, bool) {
	if len(s.Periods) == 0 {
		return Period{}, false
	}
	return s.Periods[len(s.Periods)-1], true
}

// Previous returns the period before the most recent one
func (s *FinancialStatementSet) Previous() (Period, bool) {
	if len(s.Periods) < 2 {
		return Period{}, false
	}
	return s.Periods[len(s.Periods)-2], true
}

// MarketSnapshot holds point-in-time market fields for a company
type MarketSnapshot struct {
	MarketCap  Value     `json:"market_cap"`
	TrailingPE Value     `json:"trailing_pe"`
	Price      Value     `json:"price"`
	AsOf       time.Time `json:"as_of"`
}

// CompanyProfile holds descriptive company information
type CompanyProfile struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Exchange    string `json:"exchange,omitempty"`
	Country     string `json:"country,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
}

// CompanyData is everything fetched for one symbol in a single call
type CompanyData struct {
	Profile    CompanyProfile        `json:"profile"`
	Statements FinancialStatementSet `json:"statements"`
	Snapshot   MarketSnapshot        `json:"snapshot"`
}
