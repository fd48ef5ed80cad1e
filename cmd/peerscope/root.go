package main

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/peerscope/internal/app"
	"github.com/bobmcallan/peerscope/internal/common"
)

// appFactory builds the App from a config path; tests swap it for one over mocks
type appFactory func(configPath string) (*app.App, error)

func newRootCmd(newApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peerscope",
		Short: "Compare a company's financial ratios against its peers",
		Long: `Reads tickers from the console and prints, for each one:
- the peers (discovered by the configured LLM, or given with --peers)
- a ratio comparison table with an Industry Benchmark column
- with --analyze, the full report and an AI recommendation

Type bye, quit or exit to leave.`,
		Example: `  peerscope
  peerscope --peers MSFT.US,GOOGL.US
  peerscope --analyze --format markdown
  peerscope mcp`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, newApp)
			if err != nil {
				return err
			}
			defer a.Close()

			peers, _ := cmd.Flags().GetStringSlice("peers")
			analyze, _ := cmd.Flags().GetBool("analyze")
			format, _ := cmd.Flags().GetString("format")

			out := cmd.OutOrStdout()
			common.PrintBanner(out, a.Config, "console", a.Logger)

			c := &console{
				app: a,
				opts: consoleOptions{
					Peers:   splitPeers(strings.Join(peers, ",")),
					Analyze: analyze,
					Format:  format,
				},
				in:  cmd.InOrStdin(),
				out: out,
			}
			ctx := cmd.Context()
			err = c.run(ctx)
			common.PrintShutdownBanner(out, a.Logger)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.PersistentFlags().String("config", "", "path to peerscope.toml")
	cmd.PersistentFlags().StringSlice("peers", nil, "peer tickers; skips LLM peer discovery")
	cmd.PersistentFlags().Bool("analyze", false, "generate the full report with an AI recommendation")
	cmd.PersistentFlags().StringP("format", "f", "text", "comparison output: text or markdown")

	cmd.AddCommand(newMCPCmd(newApp))
	return cmd
}

func newMCPCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, newApp)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := server.ServeStdio(a.MCPServer); err != nil {
				a.Logger.Error().Err(err).Msg("MCP stdio server failed")
				return err
			}
			return nil
		},
	}
}

func loadApp(cmd *cobra.Command, newApp appFactory) (*app.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	a, err := newApp(configPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to initialize app: %v\n", err)
		return nil, err
	}
	return a, nil
}
