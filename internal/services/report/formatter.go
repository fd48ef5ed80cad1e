package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bobmcallan/peerscope/internal/models"
)

// statementSection groups line items into one report table
type statementSection struct {
	Title string
	Items []string
}

var statementSections = []statementSection{
	{"Financials", []string{
		models.ItemTotalRevenue,
		models.ItemCostOfRevenue,
		models.ItemOperatingIncome,
		models.ItemEBIT,
		models.ItemEBITDA,
		models.ItemInterestExpense,
		models.ItemNetIncome,
	}},
	{"Balance Sheet", []string{
		models.ItemCurrentAssets,
		models.ItemCurrentLiabilities,
		models.ItemInventory,
		models.ItemCash,
		models.ItemTotalAssets,
		models.ItemTotalDebt,
		models.ItemStockholdersEquity,
		models.ItemSharesOutstanding,
	}},
	{"Cash Flows", []string{
		models.ItemOperatingCashFlow,
		models.ItemCapitalExpenditure,
		models.ItemFreeCashFlow,
		models.ItemDepreciation,
	}},
}

// cell renders one table value; failed columns show the error marker
func cell(column models.CompanyColumn, name models.RatioName) string {
	if column.Failed() {
		return models.ErrorMarker
	}
	return column.Value(name).Format(2)
}

// FormatComparisonMarkdown renders the table with ratios as rows and one
// column per company followed by the benchmark column.
func FormatComparisonMarkdown(table *models.PeerComparisonTable) string {
	if table == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString("| Ratio |")
	for _, c := range table.Columns {
		sb.WriteString(fmt.Sprintf(" %s |", c.Symbol))
	}
	sb.WriteString(fmt.Sprintf(" %s |\n", models.BenchmarkColumn))

	sb.WriteString("|-------|")
	for range table.Columns {
		sb.WriteString("------|")
	}
	sb.WriteString("------|\n")

	for _, name := range models.RatioNames {
		sb.WriteString(fmt.Sprintf("| %s |", name))
		for _, c := range table.Columns {
			sb.WriteString(fmt.Sprintf(" %s |", cell(c, name)))
		}
		sb.WriteString(fmt.Sprintf(" %s |\n", table.Benchmark.Get(name).Format(2)))
	}

	if failed := failedColumns(table); len(failed) > 0 {
		sb.WriteString("\n")
		for _, c := range failed {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", c.Symbol, c.Error))
		}
	}
	return sb.String()
}

// FormatComparisonText renders the table as aligned plain text for terminals
func FormatComparisonText(table *models.PeerComparisonTable) string {
	if table == nil {
		return ""
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(w, "Ratio\t")
	for _, c := range table.Columns {
		fmt.Fprintf(w, "%s\t", c.Symbol)
	}
	fmt.Fprintf(w, "%s\t\n", models.BenchmarkColumn)

	for _, name := range models.RatioNames {
		fmt.Fprintf(w, "%s\t", name)
		for _, c := range table.Columns {
			fmt.Fprintf(w, "%s\t", cell(c, name))
		}
		fmt.Fprintf(w, "%s\t\n", table.Benchmark.Get(name).Format(2))
	}
	w.Flush()

	for _, c := range failedColumns(table) {
		sb.WriteString(fmt.Sprintf("%s: %s\n", c.Symbol, c.Error))
	}
	return sb.String()
}

// FormatRatiosMarkdown renders a single company's ratio set
func FormatRatiosMarkdown(ratios models.RatioSet) string {
	var sb strings.Builder
	sb.WriteString("| Ratio | Value |\n")
	sb.WriteString("|-------|-------|\n")
	for _, rv := range ratios.Ordered() {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", rv.Name, rv.Value.Format(2)))
	}
	return sb.String()
}

// FormatPeersMarkdown renders the peer symbol/name table
func FormatPeersMarkdown(peers []models.PeerCandidate) string {
	var sb strings.Builder
	sb.WriteString("| Symbol | Company Name |\n")
	sb.WriteString("|--------|--------------|\n")
	for _, p := range peers {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", p.Symbol, p.Name))
	}
	return sb.String()
}

// statementPeriods is how many yearly periods a statement section shows
const statementPeriods = 4

// formatStatementMarkdown renders one statement section with the most recent
// period first, limited to statementPeriods. Line items missing from every
// shown period are left out.
func formatStatementMarkdown(statements *models.FinancialStatementSet, items []string) string {
	if statements == nil || len(statements.Periods) == 0 {
		return "_No statements reported._\n"
	}

	periods := make([]models.Period, len(statements.Periods))
	copy(periods, statements.Periods)
	if len(periods) > statementPeriods {
		periods = periods[len(periods)-statementPeriods:]
	}
	for i, j := 0, len(periods)-1; i < j; i, j = i+1, j-1 {
		periods[i], periods[j] = periods[j], periods[i]
	}

	var sb strings.Builder
	sb.WriteString("| Line Item |")
	for _, p := range periods {
		sb.WriteString(fmt.Sprintf(" %s |", p.EndDate.Format("2006-01-02")))
	}
	sb.WriteString("\n|-----------|")
	for range periods {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	rows := 0
	for _, item := range items {
		reported := false
		for _, p := range periods {
			if p.Has(item) {
				reported = true
				break
			}
		}
		if !reported {
			continue
		}
		rows++
		sb.WriteString(fmt.Sprintf("| %s |", item))
		for _, p := range periods {
			if v, ok := p.Get(item).Get(); ok {
				sb.WriteString(fmt.Sprintf(" %s |", formatAmount(v)))
			} else {
				sb.WriteString(" N/A |")
			}
		}
		sb.WriteString("\n")
	}
	if rows == 0 {
		return "_No statements reported._\n"
	}
	return sb.String()
}

// formatAmount prints a statement amount with thousands separators
func formatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)
	var out []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func failedColumns(table *models.PeerComparisonTable) []models.CompanyColumn {
	var out []models.CompanyColumn
	for _, c := range table.Columns {
		if c.Failed() {
			out = append(out, c)
		}
	}
	return out
}
