package ratios

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/peerscope/internal/models"
)

func yearEnd(y int) time.Time {
	return time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC)
}

// fixture returns two periods for a manufacturer that reports inventory
func fixture() *models.FinancialStatementSet {
	return &models.FinancialStatementSet{
		Symbol: "ACME.US",
		Periods: []models.Period{
			{EndDate: yearEnd(2022), Items: map[string]float64{
				models.ItemTotalRevenue:      100,
				models.ItemEBIT:              18,
				models.ItemNetIncome:         10,
				models.ItemSharesOutstanding: 100,
				models.ItemFreeCashFlow:      12,
				models.ItemInventory:         100,
			}},
			{EndDate: yearEnd(2023), Items: map[string]float64{
				models.ItemCurrentAssets:      1200,
				models.ItemCurrentLiabilities: 600,
				models.ItemTotalAssets:        5000,
				models.ItemStockholdersEquity: 2500,
				models.ItemTotalDebt:          1000,
				models.ItemCash:               300,
				models.ItemTotalRevenue:       110,
				models.ItemOperatingIncome:    20,
				models.ItemNetIncome:          12,
				models.ItemCostOfRevenue:      60,
				models.ItemEBIT:               21,
				models.ItemDepreciation:       4,
				models.ItemInterestExpense:    3,
				models.ItemSharesOutstanding:  100,
				models.ItemFreeCashFlow:       15,
				models.ItemInventory:          200,
			}},
		},
	}
}

func snapshot() models.MarketSnapshot {
	return models.MarketSnapshot{
		MarketCap:  models.Of(5000),
		TrailingPE: models.Of(18.5),
		Price:      models.Of(50),
	}
}

func latest(s *models.FinancialStatementSet) map[string]float64 {
	return s.Periods[len(s.Periods)-1].Items
}

func assertRatio(t *testing.T, rs models.RatioSet, name models.RatioName, want float64) {
	t.Helper()
	v, ok := rs[name].Get()
	require.True(t, ok, "%s should be defined", name)
	assert.InDelta(t, want, v, 1e-9, "%s", name)
}

func assertUndefined(t *testing.T, rs models.RatioSet, names ...models.RatioName) {
	t.Helper()
	for _, name := range names {
		assert.False(t, rs[name].Defined(), "%s should be undefined, got %v", name, rs[name])
	}
}

func TestCompute_AllRatios(t *testing.T) {
	rs := Compute(fixture(), snapshot())

	assert.Len(t, rs, len(models.RatioNames))
	assertRatio(t, rs, models.RatioCurrent, 2)
	assertRatio(t, rs, models.RatioQuick, 1000.0/600)
	assertRatio(t, rs, models.RatioCash, 0.5)
	assertRatio(t, rs, models.RatioROE, 12.0/2500)
	assertRatio(t, rs, models.RatioROA, 12.0/5000)
	assertRatio(t, rs, models.RatioROCE, 21.0/4400)
	assertRatio(t, rs, models.RatioNetProfitMargin, 12.0/110)
	assertRatio(t, rs, models.RatioOperatingMargin, 20.0/110)
	assertRatio(t, rs, models.RatioAssetTurnover, 110.0/5000)
	assertRatio(t, rs, models.RatioInventoryTurnover, 60.0/150)
	assertRatio(t, rs, models.RatioPE, 18.5)
	assertRatio(t, rs, models.RatioPS, 5000.0/110)
	assertRatio(t, rs, models.RatioPB, 2)
	assertRatio(t, rs, models.RatioEVToEBITDA, 5700.0/25)
	assertRatio(t, rs, models.RatioDebtToEquity, 0.4)
	assertRatio(t, rs, models.RatioInterestCoverage, 7)
	assertRatio(t, rs, models.RatioRevenueGrowth, 10)
	assertRatio(t, rs, models.RatioEBITGrowth, 3.0*100/18)
	assertRatio(t, rs, models.RatioEPS, 0.12)
	assertRatio(t, rs, models.RatioEPSGrowth, 20)
	assertRatio(t, rs, models.RatioFreeCashFlow, 15)
	assertRatio(t, rs, models.RatioFCFGrowth, 25)
}

func TestCompute_DefinedValuesAreFinite(t *testing.T) {
	rs := Compute(fixture(), snapshot())
	for name, v := range rs {
		if f, ok := v.Get(); ok {
			assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "%s = %v", name, f)
		}
	}
	assert.Equal(t, len(models.RatioNames), rs.DefinedCount())
}

func TestCompute_NoInventory(t *testing.T) {
	with := Compute(fixture(), snapshot())

	s := fixture()
	for i := range s.Periods {
		delete(s.Periods[i].Items, models.ItemInventory)
	}
	without := Compute(s, snapshot())

	assertUndefined(t, without, models.RatioQuick, models.RatioInventoryTurnover)
	for _, name := range models.RatioNames {
		if name == models.RatioQuick || name == models.RatioInventoryTurnover {
			continue
		}
		assert.Equal(t, with[name], without[name], "%s changed when inventory was removed", name)
	}
}

func TestCompute_InventoryOnlyInLatestPeriod(t *testing.T) {
	s := fixture()
	delete(s.Periods[0].Items, models.ItemInventory)

	rs := Compute(s, snapshot())
	assertRatio(t, rs, models.RatioInventoryTurnover, 60.0/200)
	assertRatio(t, rs, models.RatioQuick, 1000.0/600)
}

func TestCompute_InventoryOnlyInPriorPeriod(t *testing.T) {
	s := fixture()
	delete(latest(s), models.ItemInventory)

	rs := Compute(s, snapshot())
	assertUndefined(t, rs, models.RatioQuick, models.RatioInventoryTurnover)
}

func TestCompute_QuickRatioSignPreserved(t *testing.T) {
	s := fixture()
	latest(s)[models.ItemInventory] = 1500

	rs := Compute(s, snapshot())
	assertRatio(t, rs, models.RatioQuick, -300.0/600)
}

func TestCompute_LiquidityNonNegative(t *testing.T) {
	rs := Compute(fixture(), snapshot())
	for _, name := range []models.RatioName{models.RatioCurrent, models.RatioQuick, models.RatioCash} {
		assert.GreaterOrEqual(t, rs[name].Float(), 0.0, "%s", name)
	}
}

func TestCompute_GrowthExact(t *testing.T) {
	s := &models.FinancialStatementSet{Periods: []models.Period{
		{EndDate: yearEnd(2022), Items: map[string]float64{
			models.ItemTotalRevenue: 100, models.ItemEBIT: 100, models.ItemNetIncome: 100,
			models.ItemSharesOutstanding: 1, models.ItemFreeCashFlow: 100,
		}},
		{EndDate: yearEnd(2023), Items: map[string]float64{
			models.ItemTotalRevenue: 110, models.ItemEBIT: 110, models.ItemNetIncome: 110,
			models.ItemSharesOutstanding: 1, models.ItemFreeCashFlow: 110,
		}},
	}}

	rs := Compute(s, models.MarketSnapshot{})
	for _, name := range []models.RatioName{
		models.RatioRevenueGrowth, models.RatioEBITGrowth, models.RatioEPSGrowth, models.RatioFCFGrowth,
	} {
		v, ok := rs[name].Get()
		require.True(t, ok, "%s", name)
		assert.Equal(t, 10.0, v, "%s should be exactly 10", name)
	}
}

func TestCompute_GrowthNegativePriorKeepsSign(t *testing.T) {
	s := fixture()
	s.Periods[0].Items[models.ItemEBIT] = -10
	latest(s)[models.ItemEBIT] = 10

	rs := Compute(s, snapshot())
	assertRatio(t, rs, models.RatioEBITGrowth, -200)
}

func TestCompute_SinglePeriod(t *testing.T) {
	s := fixture()
	s.Periods = s.Periods[1:]

	rs := Compute(s, snapshot())
	assertUndefined(t, rs,
		models.RatioRevenueGrowth, models.RatioEBITGrowth, models.RatioEPSGrowth, models.RatioFCFGrowth)
	assertRatio(t, rs, models.RatioCurrent, 2)
	assertRatio(t, rs, models.RatioEPS, 0.12)
	// only the latest inventory is available
	assertRatio(t, rs, models.RatioInventoryTurnover, 60.0/200)
}

func TestCompute_ZeroAndNegativeDenominators(t *testing.T) {
	s := fixture()
	cur := latest(s)
	cur[models.ItemCurrentLiabilities] = 0
	cur[models.ItemTotalRevenue] = 0
	cur[models.ItemStockholdersEquity] = -50
	cur[models.ItemInterestExpense] = 0
	cur[models.ItemTotalAssets] = 0
	s.Periods[0].Items[models.ItemEBIT] = 0

	rs := Compute(s, snapshot())
	assertUndefined(t, rs,
		models.RatioCurrent, models.RatioQuick, models.RatioCash,
		models.RatioNetProfitMargin, models.RatioOperatingMargin, models.RatioPS,
		models.RatioROE, models.RatioPB, models.RatioDebtToEquity,
		models.RatioInterestCoverage, models.RatioROA, models.RatioAssetTurnover,
		models.RatioROCE, models.RatioEBITGrowth,
	)
	// revenue growth to zero is -100%, not undefined
	assertRatio(t, rs, models.RatioRevenueGrowth, -100)
	assertRatio(t, rs, models.RatioEPS, 0.12)
}

func TestCompute_InterestCoverageNegativeExpense(t *testing.T) {
	s := fixture()
	latest(s)[models.ItemInterestExpense] = -3

	rs := Compute(s, snapshot())
	assertRatio(t, rs, models.RatioInterestCoverage, -7)
}

func TestCompute_MissingRequiredItemIsolated(t *testing.T) {
	s := fixture()
	delete(latest(s), models.ItemNetIncome)

	rs := Compute(s, snapshot())
	assertUndefined(t, rs,
		models.RatioROE, models.RatioROA, models.RatioNetProfitMargin, models.RatioEPS, models.RatioEPSGrowth)
	assertRatio(t, rs, models.RatioCurrent, 2)
	assertRatio(t, rs, models.RatioOperatingMargin, 20.0/110)
	assertRatio(t, rs, models.RatioRevenueGrowth, 10)
}

func TestCompute_EBITDA(t *testing.T) {
	t.Run("reported", func(t *testing.T) {
		s := fixture()
		latest(s)[models.ItemEBITDA] = 57
		rs := Compute(s, snapshot())
		assertRatio(t, rs, models.RatioEVToEBITDA, 100)
	})

	t.Run("missing depreciation counts as zero", func(t *testing.T) {
		s := fixture()
		delete(latest(s), models.ItemDepreciation)
		rs := Compute(s, snapshot())
		assertRatio(t, rs, models.RatioEVToEBITDA, 5700.0/21)
	})

	t.Run("non-positive", func(t *testing.T) {
		s := fixture()
		latest(s)[models.ItemEBITDA] = -5
		rs := Compute(s, snapshot())
		assertUndefined(t, rs, models.RatioEVToEBITDA)
	})

	t.Run("missing cash", func(t *testing.T) {
		s := fixture()
		delete(latest(s), models.ItemCash)
		rs := Compute(s, snapshot())
		assertUndefined(t, rs, models.RatioEVToEBITDA, models.RatioCash)
	})
}

func TestCompute_FreeCashFlowFallback(t *testing.T) {
	s := fixture()
	for i := range s.Periods {
		delete(s.Periods[i].Items, models.ItemFreeCashFlow)
	}
	cur := latest(s)
	cur[models.ItemOperatingCashFlow] = 40
	cur[models.ItemCapitalExpenditure] = -15
	s.Periods[0].Items[models.ItemOperatingCashFlow] = 30
	s.Periods[0].Items[models.ItemCapitalExpenditure] = 10

	rs := Compute(s, snapshot())
	assertRatio(t, rs, models.RatioFreeCashFlow, 25)
	assertRatio(t, rs, models.RatioFCFGrowth, 25)
}

func TestCompute_SnapshotMissing(t *testing.T) {
	rs := Compute(fixture(), models.MarketSnapshot{})
	assertUndefined(t, rs, models.RatioPE, models.RatioPS, models.RatioPB, models.RatioEVToEBITDA)
	assertRatio(t, rs, models.RatioCurrent, 2)
}

func TestCompute_NoStatements(t *testing.T) {
	rs := Compute(nil, snapshot())
	assert.Len(t, rs, len(models.RatioNames))
	assert.Equal(t, 1, rs.DefinedCount())
	assertRatio(t, rs, models.RatioPE, 18.5)

	rs = Compute(&models.FinancialStatementSet{}, models.MarketSnapshot{})
	assert.Equal(t, 0, rs.DefinedCount())
}

func TestCompute_Idempotent(t *testing.T) {
	s := fixture()
	snap := snapshot()

	first := Compute(s, snap)
	second := Compute(s, snap)
	assert.Equal(t, first, second)
	for _, name := range models.RatioNames {
		a, _ := first[name].Get()
		b, _ := second[name].Get()
		assert.Equal(t, math.Float64bits(a), math.Float64bits(b), "%s", name)
	}
}
