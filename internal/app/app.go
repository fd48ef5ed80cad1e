package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/openai/openai-go/v2/option"

	"github.com/bobmcallan/peerscope/internal/clients/eodhd"
	"github.com/bobmcallan/peerscope/internal/clients/gemini"
	"github.com/bobmcallan/peerscope/internal/clients/openai"
	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/prompts"
	"github.com/bobmcallan/peerscope/internal/services/peer"
	"github.com/bobmcallan/peerscope/internal/services/report"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by both cmd/peerscope and cmd/peerscope-server.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketData    interfaces.MarketDataSource
	LLM           interfaces.LLMClient // nil when no API key is configured
	Prompts       *prompts.Set
	PeerService   interfaces.PeerService
	ReportService interfaces.ReportService
	MCPServer     *server.MCPServer
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, PEERSCOPE_CONFIG, peerscope.toml next to
// the binary, or config/peerscope.toml, whichever is found first.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("PEERSCOPE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "peerscope.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/peerscope.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp initializes all services, clients, and the MCP server.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Fall back to build info when ldflags are not set
	common.LoadVersionFromBuildInfo()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	binDir := getBinaryDir()
	config.Logging.FilePath = common.ResolvePath(binDir, config.Logging.FilePath)
	config.Prompts.Path = common.ResolvePath(binDir, config.Prompts.Path)

	logger := common.NewLoggerFromConfig(config.Logging)
	return newApp(context.Background(), config, logger, startupStart)
}

// NewAppWithConfig builds an App from an already loaded config
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return newApp(ctx, config, logger, time.Now())
}

func newApp(ctx context.Context, config *common.Config, logger *common.Logger, startupStart time.Time) (*App, error) {
	for _, name := range config.ValidateRequired() {
		logger.Warn().Str("setting", name).Msg("Required setting not configured - some features may be unavailable")
	}

	promptSet, err := prompts.Load(config.Prompts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	eodhdClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	llm, err := newLLMClient(ctx, config, promptSet, logger)
	if err != nil {
		logger.Warn().Err(err).Str("provider", config.LLM.Provider).Msg("Failed to initialize LLM client")
	}

	peerService := peer.NewService(eodhdClient, llm, logger,
		peer.WithMaxPeers(config.Peers.MaxPeers),
		peer.WithCandidates(config.Peers.Candidates),
		peer.WithPrompts(promptSet),
	)
	reportService := report.NewService(eodhdClient, peerService, llm, logger,
		report.WithReportsDir(config.Reports.Dir),
		report.WithPrompts(promptSet),
	)

	mcpServer := server.NewMCPServer(
		"peerscope",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:        config,
		Logger:        logger,
		MarketData:    eodhdClient,
		LLM:           llm,
		Prompts:       promptSet,
		PeerService:   peerService,
		ReportService: reportService,
		MCPServer:     mcpServer,
		StartupTime:   startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// newLLMClient builds the configured provider's client. It returns a nil
// interface when the provider has no API key.
func newLLMClient(ctx context.Context, config *common.Config, promptSet *prompts.Set, logger *common.Logger) (interfaces.LLMClient, error) {
	key := config.LLMAPIKey()
	if key == "" {
		return nil, nil
	}

	switch config.LLM.Provider {
	case common.ProviderOpenAI:
		var requestOpts []option.RequestOption
		if config.Clients.OpenAI.BaseURL != "" {
			requestOpts = append(requestOpts, option.WithBaseURL(config.Clients.OpenAI.BaseURL))
		}
		return openai.NewClient(key, requestOpts,
			openai.WithModel(config.Clients.OpenAI.Model),
			openai.WithSystemPrompt(promptSet.System),
			openai.WithTemperature(config.LLM.Temperature),
			openai.WithMaxTokens(config.LLM.MaxOutputTokens),
			openai.WithLogger(logger),
		), nil
	default:
		client, err := gemini.NewClient(ctx, key, "",
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithSystemPrompt(promptSet.System),
			gemini.WithTemperature(config.LLM.Temperature),
			gemini.WithMaxOutputTokens(config.LLM.MaxOutputTokens),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Close releases resources held by the App. Safe to call more than once.
func (a *App) Close() {
	if a.Logger != nil {
		a.Logger.Debug().Msg("App closed")
	}
}

// ResolvePeers returns the verified peers of symbol. Explicit peers are
// filtered; otherwise the configured LLM is asked for candidates.
func (a *App) ResolvePeers(ctx context.Context, symbol string, explicit []string) ([]models.PeerCandidate, error) {
	return resolvePeers(ctx, a.MarketData, a.PeerService, models.NormalizeSymbol(symbol), explicit)
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetFinancialRatiosTool(), handleGetFinancialRatios(a.PeerService, logger))
	s.AddTool(createGetPeerComparisonTool(), handleGetPeerComparison(a.PeerService, a.MarketData, logger))
	s.AddTool(createDiscoverPeersTool(), handleDiscoverPeers(a.MarketData, a.PeerService, logger))
	s.AddTool(createAnalyzeCompanyTool(), handleAnalyzeCompany(a.ReportService, a.Config.Reports.Save, logger))
}
