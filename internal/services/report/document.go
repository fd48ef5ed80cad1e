package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bobmcallan/peerscope/internal/models"
)

// formatReportBody renders everything up to the recommendation. The same text
// is handed to the LLM as the report under review.
func formatReportBody(report *models.AnalysisReport, statements *models.FinancialStatementSet) string {
	var sb strings.Builder
	symbol := report.Symbol
	p := report.Profile

	sb.WriteString(fmt.Sprintf("# Financial Report, Analysis and AI Recommendation for %s\n\n", symbol))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04")))

	// Basic info
	sb.WriteString(fmt.Sprintf("#### Basic Info for %s\n\n", symbol))
	name := p.Name
	if name == "" {
		name = symbol
	}
	sb.WriteString(fmt.Sprintf("**Company Name:** %s\n\n", name))
	if p.Sector != "" || p.Industry != "" {
		sb.WriteString(fmt.Sprintf("**Sector:** %s | **Industry:** %s\n\n", p.Sector, p.Industry))
	}
	if p.Exchange != "" {
		sb.WriteString(fmt.Sprintf("**Exchange:** %s\n\n", p.Exchange))
	}
	if p.Description != "" && p.Description != "NA" {
		sb.WriteString("**Business Summary:**\n\n")
		sb.WriteString(p.Description + "\n\n")
	}

	// Peers
	sb.WriteString(fmt.Sprintf("**Peers (top %d)**\n\n", len(report.Peers)))
	if len(report.Peers) > 0 {
		sb.WriteString(FormatPeersMarkdown(report.Peers))
		sb.WriteString("\n")
	} else {
		sb.WriteString("_No peers found._\n\n")
	}

	// Statements
	for _, section := range statementSections {
		sb.WriteString(fmt.Sprintf("#### %s\n\n", section.Title))
		sb.WriteString(formatStatementMarkdown(statements, section.Items))
		sb.WriteString("\n")
	}

	// Ratios
	sb.WriteString(fmt.Sprintf("### Financial Ratios for %s\n\n", symbol))
	if primary, ok := report.Table.Column(symbol); ok && !primary.Failed() {
		sb.WriteString(FormatRatiosMarkdown(primary.Ratios))
	} else {
		sb.WriteString("_Ratios unavailable._\n")
	}
	sb.WriteString("\n")

	if len(report.Table.Columns) > 1 {
		sb.WriteString("### Peer Comparison\n\n")
		sb.WriteString(FormatComparisonMarkdown(report.Table))
		sb.WriteString("\n")
	}

	return sb.String()
}

// appendRecommendation adds the AI recommendation section. A failed
// recommendation is noted in place of the text.
func appendRecommendation(body, recommendation, failure string) string {
	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("### AI Recommendation\n\n")
	switch {
	case recommendation != "":
		sb.WriteString(recommendation)
		sb.WriteString("\n")
	case failure != "":
		sb.WriteString(fmt.Sprintf("_Recommendation unavailable: %s_\n", failure))
	default:
		sb.WriteString("_No recommendation returned._\n")
	}
	return sb.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; padding: 0 1em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #d1d5db; padding: 4px 8px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderHTML converts report markdown into a standalone HTML page. The page
// title is taken from the first heading.
func (s *Service) RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return fmt.Sprintf(htmlPage, html.EscapeString(pageTitle(md)), buf.String()), nil
}

func pageTitle(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return "peerscope report"
}
