package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the startup banner for the named surface ("console", "server").
func PrintBanner(w io.Writer, config *Config, surface string, logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 62
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  PEERSCOPE%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s  Financial ratios, peer benchmarks & AI recommendations%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Surface", surface},
		{"LLM Provider", config.LLM.Provider},
	}
	if surface == "server" {
		kvLines = append(kvLines, [2]string{"Service URL", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)})
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("surface", surface).
		Str("llm_provider", config.LLM.Provider).
		Msg("Application started")
}

// PrintShutdownBanner writes the shutdown banner.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset
	fmt.Fprintf(w, "\n%s\n", hr)
	fmt.Fprintf(w, "%s  PEERSCOPE — SHUTTING DOWN%s\n", banner.ColorBold+banner.ColorWhite, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
