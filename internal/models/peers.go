package models

import "strings"

// BenchmarkColumn is the heading of the synthetic mean column
const BenchmarkColumn = "Industry Benchmark"

// ErrorMarker is shown in place of every value of a failed column
const ErrorMarker = "ERROR"

// PeerCandidate is a proposed peer before validation
type PeerCandidate struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// CandidateSymbols returns the symbols of candidates, in order
func CandidateSymbols(candidates []PeerCandidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Symbol
	}
	return out
}

// CompanyColumn is one company's ratios within a comparison table.
// A failed fetch leaves Ratios nil and Error set.
type CompanyColumn struct {
	Symbol string   `json:"symbol"`
	Ratios RatioSet `json:"ratios,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Failed reports whether the column carries an error marker
func (c CompanyColumn) Failed() bool {
	return c.Error != ""
}

// Value returns the ratio for the column, undefined when failed
func (c CompanyColumn) Value(name RatioName) Value {
	if c.Failed() {
		return Undefined()
	}
	return c.Ratios.Get(name)
}

// PeerComparisonTable has one column per company, in request order, plus a
// benchmark column holding the mean of each row's defined values.
type PeerComparisonTable struct {
	Columns   []CompanyColumn `json:"columns"`
	Benchmark RatioSet        `json:"benchmark"`
}

// Symbols returns the column symbols in order
func (t *PeerComparisonTable) Symbols() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Symbol
	}
	return out
}

// Column finds a column by symbol
func (t *PeerComparisonTable) Column(symbol string) (CompanyColumn, bool) {
	for _, c := range t.Columns {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return CompanyColumn{}, false
}

// ComparisonRow is one ratio across every column
type ComparisonRow struct {
	Name      RatioName `json:"name"`
	Values    []Value   `json:"values"`
	Benchmark Value     `json:"benchmark"`
}

// Rows returns the table row-wise in vocabulary order
func (t *PeerComparisonTable) Rows() []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(RatioNames))
	for _, n := range RatioNames {
		row := ComparisonRow{Name: n, Values: make([]Value, len(t.Columns)), Benchmark: t.Benchmark.Get(n)}
		for i, c := range t.Columns {
			row.Values[i] = c.Value(n)
		}
		rows = append(rows, row)
	}
	return rows
}

// NormalizeSymbol trims and upper-cases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
