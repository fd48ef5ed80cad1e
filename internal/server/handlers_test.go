package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/peerscope/internal/app"
	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/services/peer"
	"github.com/bobmcallan/peerscope/internal/services/report"
	testcommon "github.com/bobmcallan/peerscope/test/common"
)

// newTestServer builds a Server over mock market data. llm may be nil.
func newTestServer(t *testing.T, llm *testcommon.MockLLMClient) *Server {
	t.Helper()
	src := testcommon.NewMockMarketDataSource().
		Add("AAA.US", testcommon.SampleCompany("AAA.US", "Alpha Corp", 2)).
		Add("BBB.US", testcommon.SampleCompany("BBB.US", "Beta Corp", 3)).
		Add("CCC.US", testcommon.SampleCompany("CCC.US", "Gamma Corp", 4))

	cfg := common.NewDefaultConfig()
	cfg.Reports.Save = false
	logger := common.NewSilentLogger()

	a := &app.App{
		Config:      cfg,
		Logger:      logger,
		MarketData:  src,
		StartupTime: time.Now(),
	}
	if llm != nil {
		a.LLM = llm
	}
	peers := peer.NewService(src, a.LLM, logger)
	a.PeerService = peers
	a.ReportService = report.NewService(src, peers, a.LLM, logger, report.WithReportsDir(t.TempDir()))
	return NewServer(a)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = do(t, s, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["version"])

	rr = do(t, s, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestHandleRatios(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/ratios/aaa.us", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body ratiosResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "AAA.US", body.Symbol)
	require.Len(t, body.Ratios, len(models.RatioNames))
	assert.Equal(t, models.RatioCurrent, body.Ratios[0].Name)
	got, ok := body.Ratios[0].Value.Get()
	require.True(t, ok)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestHandleRatios_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/ratios/NOPE.US", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/ratios/", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlePeers_ExplicitPeers(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/peers/AAA.US?peers=CCC.US,FAKE.US,BBB.US", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body peersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "AAA.US", body.Symbol)
	assert.Equal(t, []string{"BBB.US", "CCC.US"}, models.CandidateSymbols(body.Peers))
	require.NotNil(t, body.Table)
	assert.Equal(t, []string{"AAA.US", "BBB.US", "CCC.US"}, body.Table.Symbols())

	bench, ok := body.Table.Benchmark.Get(models.RatioCurrent).Get()
	require.True(t, ok)
	assert.InDelta(t, 3.0, bench, 1e-9)
}

func TestHandlePeers_Formats(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/peers/AAA.US?peers=BBB.US&format=markdown", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rr.Body.String(), "| Ratio | AAA.US | BBB.US | Industry Benchmark |")

	rr = do(t, s, http.MethodGet, "/api/peers/AAA.US?peers=BBB.US&format=text", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Industry Benchmark")
	assert.NotContains(t, rr.Body.String(), "|")
}

func TestHandlePeers_DiscoveryWithoutLLM(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/peers/AAA.US", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandlePeers_Discovery(t *testing.T) {
	llm := testcommon.NewMockLLMClient(`{"CCC.US": "Gamma Corp", "XYZ.US": "Nope"}`)
	s := newTestServer(t, llm)

	rr := do(t, s, http.MethodGet, "/api/peers/AAA.US", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body peersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"CCC.US"}, models.CandidateSymbols(body.Peers))
}

func TestHandlePeerChart(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/peers/AAA.US/chart.png?ratio=current+ratio&peers=BBB.US", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = do(t, s, http.MethodGet, "/api/peers/AAA.US/chart.png?ratio=sharpe&peers=BBB.US", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown_ratio")
}

func TestRoutePeers_BadPaths(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/peers/", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/peers/AAA.US/other", nil).Code)
}

func TestHandleCompare(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodPost, "/api/compare", []byte(`{"symbols": ["BBB.US", "NOPE.US"]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var table models.PeerComparisonTable
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &table))
	require.Len(t, table.Columns, 2)
	assert.Equal(t, "BBB.US", table.Columns[0].Symbol)
	assert.NotEmpty(t, table.Columns[1].Error)

	rr = do(t, s, http.MethodPost, "/api/compare", []byte(`{"symbols": []}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodPost, "/api/compare", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/compare", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleAnalysis(t *testing.T) {
	llm := testcommon.NewMockLLMClient("Hold for the long term.")
	s := newTestServer(t, llm)

	rr := do(t, s, http.MethodGet, "/api/analysis/AAA.US?peers=BBB.US", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rep models.AnalysisReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, "AAA.US", rep.Symbol)
	assert.Equal(t, "mock", rep.Provider)
	assert.Equal(t, "Hold for the long term.", rep.Recommendation)
	assert.Empty(t, rep.Path)

	rr = do(t, s, http.MethodGet, "/api/analysis/AAA.US?peers=BBB.US&format=html", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "<table>")
	assert.Contains(t, rr.Body.String(), "Hold for the long term.")

	rr = do(t, s, http.MethodGet, "/api/analysis/AAA.US?peers=BBB.US&format=markdown", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "# Financial Report"))
}

func TestHandleAnalysis_Save(t *testing.T) {
	s := newTestServer(t, testcommon.NewMockLLMClient("Buy."))

	rr := do(t, s, http.MethodGet, "/api/analysis/AAA.US?peers=BBB.US&save=true", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rep models.AnalysisReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Contains(t, rep.Path, "AAA.US_report_mock_")

	rr = do(t, s, http.MethodGet, "/api/analysis/AAA.US?save=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAnalysis_UnknownSymbol(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/analysis/NOPE.US?peers=BBB.US", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(models.ErrNoStatements))
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrNoSymbols))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(models.ErrNoLLM))
	assert.Equal(t, http.StatusBadGateway, statusFor(assert.AnError))
}
