package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/peerscope/internal/models"
)

func sampleTable() *models.PeerComparisonTable {
	a := models.NewRatioSet()
	a[models.RatioCurrent] = models.Of(2)
	a[models.RatioPE] = models.Of(18.456)
	b := models.NewRatioSet()
	b[models.RatioCurrent] = models.Of(3)

	return &models.PeerComparisonTable{
		Columns: []models.CompanyColumn{
			{Symbol: "AAA.US", Ratios: a},
			{Symbol: "BBB.US", Ratios: b},
			{Symbol: "CCC.US", Error: "fetch CCC.US: symbol not found"},
		},
		Benchmark: func() models.RatioSet {
			rs := models.NewRatioSet()
			rs[models.RatioCurrent] = models.Of(2.5)
			rs[models.RatioPE] = models.Of(18.456)
			return rs
		}(),
	}
}

func lineWith(t *testing.T, text, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	t.Fatalf("no line starting with %q in:\n%s", prefix, text)
	return ""
}

func TestFormatComparisonMarkdown(t *testing.T) {
	md := FormatComparisonMarkdown(sampleTable())

	assert.True(t, strings.HasPrefix(md, "| Ratio | AAA.US | BBB.US | CCC.US | Industry Benchmark |\n"))
	assert.Equal(t, "| Current Ratio | 2.00 | 3.00 | ERROR | 2.50 |", lineWith(t, md, "| Current Ratio |"))
	assert.Equal(t, "| Price-to-Earnings (P/E) | 18.46 | N/A | ERROR | 18.46 |", lineWith(t, md, "| Price-to-Earnings (P/E) |"))
	assert.Contains(t, md, "- **CCC.US**: fetch CCC.US: symbol not found")

	// header, separator and one row per ratio
	rows := 0
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "|") {
			rows++
		}
	}
	assert.Equal(t, len(models.RatioNames)+2, rows)
}

func TestFormatComparisonMarkdown_Nil(t *testing.T) {
	assert.Empty(t, FormatComparisonMarkdown(nil))
	assert.Empty(t, FormatComparisonText(nil))
}

func TestFormatComparisonText(t *testing.T) {
	text := FormatComparisonText(sampleTable())

	header := strings.Fields(strings.Split(text, "\n")[0])
	assert.Equal(t, []string{"Ratio", "AAA.US", "BBB.US", "CCC.US", "Industry", "Benchmark"}, header)

	assert.Contains(t, text, "ERROR")
	assert.Contains(t, text, "CCC.US: fetch CCC.US: symbol not found")
}

func TestFormatRatiosMarkdown(t *testing.T) {
	rs := models.NewRatioSet()
	rs[models.RatioROE] = models.Of(0.125)

	md := FormatRatiosMarkdown(rs)
	assert.Contains(t, md, "| Return on Equity (RoE) | 0.12 |")
	assert.Contains(t, md, "| Current Ratio | N/A |")
}

func TestFormatPeersMarkdown(t *testing.T) {
	md := FormatPeersMarkdown([]models.PeerCandidate{
		{Symbol: "MSFT.US", Name: "Microsoft"},
		{Symbol: "ORCL.US"},
	})
	assert.Contains(t, md, "| MSFT.US | Microsoft |")
	assert.Contains(t, md, "| ORCL.US |  |")
}

func TestFormatStatementMarkdown(t *testing.T) {
	statements := &models.FinancialStatementSet{
		Periods: []models.Period{
			{EndDate: time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), Items: map[string]float64{
				models.ItemTotalRevenue: 1000,
			}},
			{EndDate: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), Items: map[string]float64{
				models.ItemTotalRevenue: 1250000,
				models.ItemNetIncome:    -4200,
			}},
		},
	}

	md := formatStatementMarkdown(statements, []string{models.ItemTotalRevenue, models.ItemNetIncome, models.ItemEBITDA})

	assert.True(t, strings.HasPrefix(md, "| Line Item | 2023-12-31 | 2022-12-31 |"), md)
	assert.Contains(t, md, "| Total Revenue | 1,250,000 | 1,000 |")
	assert.Contains(t, md, "| Net Income | -4,200 | N/A |")
	assert.NotContains(t, md, "EBITDA")

	// the caller's ordering is untouched
	assert.Equal(t, 2022, statements.Periods[0].EndDate.Year())
}

func TestFormatStatementMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "_No statements reported._\n", formatStatementMarkdown(nil, []string{models.ItemNetIncome}))
	assert.Equal(t, "_No statements reported._\n", formatStatementMarkdown(&models.FinancialStatementSet{
		Periods: []models.Period{{Items: map[string]float64{}}},
	}, []string{models.ItemNetIncome}))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567.4, "1,234,567"},
		{-1500, "-1,500"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, formatAmount(tt.in), "formatAmount(%v)", tt.in)
	}
}

func TestFormatStatementMarkdown_ShowsLatestFourPeriods(t *testing.T) {
	statements := &models.FinancialStatementSet{Symbol: "AAA.US"}
	for year := 2018; year <= 2023; year++ {
		statements.Periods = append(statements.Periods, models.Period{
			EndDate: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
			Items:   map[string]float64{models.ItemTotalRevenue: float64(year)},
		})
	}

	md := formatStatementMarkdown(statements, []string{models.ItemTotalRevenue})

	assert.True(t, strings.HasPrefix(md, "| Line Item | 2023-12-31 | 2022-12-31 | 2021-12-31 | 2020-12-31 |\n"), md)
	assert.NotContains(t, md, "2019-12-31")
	assert.NotContains(t, md, "2018-12-31")
	assert.Contains(t, md, "| Total Revenue | 2,023 | 2,022 | 2,021 | 2,020 |")
	assert.Len(t, statements.Periods, 6)
}

func TestFormatStatementMarkdown_DropsItemsOnlyInOlderPeriods(t *testing.T) {
	statements := &models.FinancialStatementSet{}
	for year := 2018; year <= 2023; year++ {
		items := map[string]float64{models.ItemTotalRevenue: 1}
		if year == 2018 {
			items[models.ItemEBITDA] = 5
		}
		statements.Periods = append(statements.Periods, models.Period{
			EndDate: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
			Items:   items,
		})
	}

	md := formatStatementMarkdown(statements, []string{models.ItemTotalRevenue, models.ItemEBITDA})
	assert.NotContains(t, md, "EBITDA")
}
