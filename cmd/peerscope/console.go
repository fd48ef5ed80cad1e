package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bobmcallan/peerscope/internal/app"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/services/report"
)

const prompt = "Enter a ticker with exchange suffix (e.g. AAPL.US), or 'bye' to exit: "

type consoleOptions struct {
	Peers   []string // explicit peers; discovery is skipped when set
	Analyze bool
	Format  string // text or markdown
}

// console reads tickers line by line and prints a comparison for each
type console struct {
	app  *app.App
	opts consoleOptions
	in   io.Reader
	out  io.Writer
}

func (c *console) run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if isExit(line) {
			return nil
		}
		for _, symbol := range splitPeers(line) {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.handle(ctx, models.NormalizeSymbol(symbol))
		}
	}
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "bye", "quit", "exit":
		return true
	}
	return false
}

// handle processes one ticker. Failures are reported and never end the loop.
func (c *console) handle(ctx context.Context, symbol string) {
	logger := c.app.Logger

	valid, err := c.app.MarketData.ValidateSymbol(ctx, symbol)
	if err != nil {
		logger.Warn().Err(err).Str("symbol", symbol).Msg("Symbol validation failed")
		fmt.Fprintf(c.out, "Could not validate %s: %v\n\n", symbol, err)
		return
	}
	if !valid {
		fmt.Fprintf(c.out, "%s is not a valid ticker, skipping.\n\n", symbol)
		return
	}

	if c.opts.Analyze {
		c.analyze(ctx, symbol)
		return
	}

	peers, err := c.app.ResolvePeers(ctx, symbol, c.opts.Peers)
	if err != nil {
		logger.Warn().Err(err).Str("symbol", symbol).Msg("Peer lookup failed, comparing the company alone")
		fmt.Fprintf(c.out, "Peer lookup failed: %v\n", err)
	}
	if len(peers) > 0 {
		fmt.Fprintf(c.out, "Peers: %s\n\n", strings.Join(models.CandidateSymbols(peers), ", "))
	} else {
		fmt.Fprintf(c.out, "No peers found for %s.\n\n", symbol)
	}

	table, err := c.app.PeerService.CompareWithPeers(ctx, symbol, models.CandidateSymbols(peers))
	if err != nil {
		fmt.Fprintf(c.out, "Comparison failed: %v\n\n", err)
		return
	}

	if strings.EqualFold(c.opts.Format, "markdown") {
		fmt.Fprintln(c.out, report.FormatComparisonMarkdown(table))
	} else {
		fmt.Fprintln(c.out, report.FormatComparisonText(table))
	}
}

func (c *console) analyze(ctx context.Context, symbol string) {
	rep, err := c.app.ReportService.Analyze(ctx, symbol, interfaces.AnalyzeOptions{
		Peers: c.opts.Peers,
		Save:  c.app.Config.Reports.Save,
	})
	if err != nil {
		fmt.Fprintf(c.out, "Analysis failed: %v\n\n", err)
		return
	}

	fmt.Fprintln(c.out, rep.Markdown)
	if rep.Path != "" {
		fmt.Fprintf(c.out, "Report saved to %s\n\n", rep.Path)
	}
}

// splitPeers splits on commas and whitespace
func splitPeers(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
