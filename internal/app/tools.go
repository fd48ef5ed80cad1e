package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the peerscope server version and status. Use this to verify connectivity."),
	)
}

// createGetFinancialRatiosTool returns the get_financial_ratios tool definition
func createGetFinancialRatiosTool() mcp.Tool {
	return mcp.NewTool("get_financial_ratios",
		mcp.WithDescription("Compute the financial ratios (liquidity, profitability, valuation, leverage, growth) of one company from its yearly statements. Ratios that cannot be computed are shown as N/A."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker with exchange suffix (e.g., 'AAPL.US', 'RELIANCE.NSE')"),
		),
	)
}

// createGetPeerComparisonTool returns the get_peer_comparison tool definition
func createGetPeerComparisonTool() mcp.Tool {
	return mcp.NewTool("get_peer_comparison",
		mcp.WithDescription("Compare a company's ratios against its peers with an Industry Benchmark column (mean of each ratio across companies). Peers are discovered automatically when not given."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Primary ticker with exchange suffix (e.g., 'AAPL.US')"),
		),
		mcp.WithArray("peers",
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Peer tickers to compare against (e.g., ['MSFT.US', 'GOOGL.US']). Invalid tickers are dropped; at most 5 are kept."),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default) or 'text'"),
		),
	)
}

// createDiscoverPeersTool returns the discover_peers tool definition
func createDiscoverPeersTool() mcp.Tool {
	return mcp.NewTool("discover_peers",
		mcp.WithDescription("Ask the configured LLM for peer companies in the same industry and exchange, then keep only tickers the market data provider recognises."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker with exchange suffix (e.g., 'TCS.NSE')"),
		),
	)
}

// createAnalyzeCompanyTool returns the analyze_company tool definition
func createAnalyzeCompanyTool() mcp.Tool {
	return mcp.NewTool("analyze_company",
		mcp.WithDescription("Generate the full financial report for a company: basic info, peers, statements, ratios, peer comparison and an AI recommendation on long-term investment potential."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker with exchange suffix (e.g., 'AAPL.US')"),
		),
		mcp.WithArray("peers",
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Explicit peer tickers; skips LLM peer discovery when given"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Write the markdown report to the reports directory (default: from config)"),
		),
	)
}
