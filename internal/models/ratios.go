package models

import "strings"

// RatioName identifies one ratio in the fixed vocabulary
type RatioName string

const (
	RatioCurrent           RatioName = "Current Ratio"
	RatioQuick             RatioName = "Quick Ratio"
	RatioCash              RatioName = "Cash Ratio"
	RatioROE               RatioName = "Return on Equity (RoE)"
	RatioROA               RatioName = "Return on Assets (RoA)"
	RatioROCE              RatioName = "Return on Capital Employed (RoCE)"
	RatioNetProfitMargin   RatioName = "Net Profit Margin"
	RatioOperatingMargin   RatioName = "Operating Margin"
	RatioAssetTurnover     RatioName = "Asset Turnover"
	RatioInventoryTurnover RatioName = "Inventory Turnover"
	RatioPE                RatioName = "Price-to-Earnings (P/E)"
	RatioPS                RatioName = "Price-to-Sales (P/S)"
	RatioPB                RatioName = "Price-to-Book (P/B)"
	RatioEVToEBITDA        RatioName = "EV/EBITDA"
	RatioDebtToEquity      RatioName = "Debt-to-Equity (D/E)"
	RatioInterestCoverage  RatioName = "Interest Coverage"
	RatioRevenueGrowth     RatioName = "Revenue Growth (%)"
	RatioEBITGrowth        RatioName = "EBIT Growth (%)"
	RatioEPS               RatioName = "EPS"
	RatioEPSGrowth         RatioName = "EPS Growth (%)"
	RatioFreeCashFlow      RatioName = "Free Cash Flow"
	RatioFCFGrowth         RatioName = "FCF Growth (%)"
)

// RatioNames is the vocabulary in presentation order
var RatioNames = []RatioName{
	RatioCurrent,
	RatioQuick,
	RatioCash,
	RatioROE,
	RatioROA,
	RatioROCE,
	RatioNetProfitMargin,
	RatioOperatingMargin,
	RatioAssetTurnover,
	RatioInventoryTurnover,
	RatioPE,
	RatioPS,
	RatioPB,
	RatioEVToEBITDA,
	RatioDebtToEquity,
	RatioInterestCoverage,
	RatioRevenueGrowth,
	RatioEBITGrowth,
	RatioEPS,
	RatioEPSGrowth,
	RatioFreeCashFlow,
	RatioFCFGrowth,
}

// IsRatioName reports whether name belongs to the vocabulary
func IsRatioName(name string) bool {
	for _, n := range RatioNames {
		if string(n) == name {
			return true
		}
	}
	return false
}

// ParseRatioName matches name against the vocabulary ignoring case and
// surrounding space
func ParseRatioName(name string) (RatioName, bool) {
	name = strings.TrimSpace(name)
	for _, n := range RatioNames {
		if strings.EqualFold(string(n), name) {
			return n, true
		}
	}
	return "", false
}

// RatioSet maps every ratio name to an optional value. Sets built with
// NewRatioSet always carry the whole vocabulary.
type RatioSet map[RatioName]Value

// NewRatioSet returns a set with every ratio undefined
func NewRatioSet() RatioSet {
	rs := make(RatioSet, len(RatioNames))
	for _, n := range RatioNames {
		rs[n] = Undefined()
	}
	return rs
}

// Get returns the value for name, undefined when absent
func (rs RatioSet) Get(name RatioName) Value {
	return rs[name]
}

// DefinedCount returns how many ratios hold a number
func (rs RatioSet) DefinedCount() int {
	n := 0
	for _, v := range rs {
		if v.Defined() {
			n++
		}
	}
	return n
}

// RatioValue is one named entry, used for ordered output
type RatioValue struct {
	Name  RatioName `json:"name"`
	Value Value     `json:"value"`
}

// Ordered returns the set in vocabulary order
func (rs RatioSet) Ordered() []RatioValue {
	out := make([]RatioValue, 0, len(RatioNames))
	for _, n := range RatioNames {
		out = append(out, RatioValue{Name: n, Value: rs[n]})
	}
	return out
}
