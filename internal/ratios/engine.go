// Package ratios derives financial ratios from statements and a market snapshot
package ratios

import (
	"math"

	"github.com/bobmcallan/peerscope/internal/models"
)

// Compute derives every ratio in the vocabulary. Ratios whose inputs are
// missing, or whose denominator is zero or not meaningful, are undefined.
// Growth ratios need at least two periods. Compute has no side effects.
func Compute(statements *models.FinancialStatementSet, snapshot models.MarketSnapshot) models.RatioSet {
	rs := models.NewRatioSet()
	rs[models.RatioPE] = snapshot.TrailingPE

	if statements == nil {
		return rs
	}
	cur, ok := statements.Latest()
	if !ok {
		return rs
	}

	ca := cur.Get(models.ItemCurrentAssets)
	cl := cur.Get(models.ItemCurrentLiabilities)
	ta := cur.Get(models.ItemTotalAssets)
	equity := cur.Get(models.ItemStockholdersEquity)
	debt := cur.Get(models.ItemTotalDebt)
	cash := cur.Get(models.ItemCash)
	revenue := cur.Get(models.ItemTotalRevenue)
	opIncome := cur.Get(models.ItemOperatingIncome)
	netIncome := cur.Get(models.ItemNetIncome)
	cogs := cur.Get(models.ItemCostOfRevenue)
	ebit := cur.Get(models.ItemEBIT)
	interest := cur.Get(models.ItemInterestExpense)
	marketCap := snapshot.MarketCap

	// Liquidity
	rs[models.RatioCurrent] = divPositive(ca, cl)
	rs[models.RatioCash] = div(cash, cl)

	// Profitability
	rs[models.RatioROE] = divPositive(netIncome, equity)
	rs[models.RatioROA] = div(netIncome, ta)
	rs[models.RatioROCE] = divPositive(ebit, sub(ta, cl))
	rs[models.RatioNetProfitMargin] = divPositive(netIncome, revenue)
	rs[models.RatioOperatingMargin] = divPositive(opIncome, revenue)

	// Efficiency
	rs[models.RatioAssetTurnover] = div(revenue, ta)

	// Inventory-dependent ratios are left undefined when the latest period
	// has no inventory line.
	if inv := cur.Get(models.ItemInventory); inv.Defined() {
		rs[models.RatioQuick] = divPositive(sub(ca, inv), cl)
		rs[models.RatioInventoryTurnover] = div(cogs, averageInventory(statements))
	}

	// Valuation
	rs[models.RatioPS] = divPositive(marketCap, revenue)
	rs[models.RatioPB] = divPositive(marketCap, equity)
	rs[models.RatioEVToEBITDA] = divPositive(enterpriseValue(marketCap, debt, cash), ebitda(cur))

	// Leverage
	rs[models.RatioDebtToEquity] = divPositive(debt, equity)
	rs[models.RatioInterestCoverage] = div(ebit, interest)

	// Per share and cash flow
	rs[models.RatioEPS] = eps(cur)
	rs[models.RatioFreeCashFlow] = freeCashFlow(cur)

	// Growth
	if prev, ok := statements.Previous(); ok {
		rs[models.RatioRevenueGrowth] = growth(revenue, prev.Get(models.ItemTotalRevenue))
		rs[models.RatioEBITGrowth] = growth(ebit, prev.Get(models.ItemEBIT))
		rs[models.RatioEPSGrowth] = growth(eps(cur), eps(prev))
		rs[models.RatioFCFGrowth] = growth(freeCashFlow(cur), freeCashFlow(prev))
	}

	return rs
}

// div returns num/den, undefined when either side is missing or den is zero
func div(num, den models.Value) models.Value {
	n, ok1 := num.Get()
	d, ok2 := den.Get()
	if !ok1 || !ok2 || d == 0 {
		return models.Undefined()
	}
	return models.Of(n / d)
}

// divPositive is div restricted to strictly positive denominators
func divPositive(num, den models.Value) models.Value {
	if d, ok := den.Get(); !ok || d <= 0 {
		return models.Undefined()
	}
	return div(num, den)
}

func sub(a, b models.Value) models.Value {
	x, ok1 := a.Get()
	y, ok2 := b.Get()
	if !ok1 || !ok2 {
		return models.Undefined()
	}
	return models.Of(x - y)
}

// growth is the percent change from prev to cur. The signed prior value is
// the denominator; a zero prior value is undefined.
func growth(cur, prev models.Value) models.Value {
	c, ok1 := cur.Get()
	p, ok2 := prev.Get()
	if !ok1 || !ok2 || p == 0 {
		return models.Undefined()
	}
	return models.Of((c - p) * 100 / p)
}

// averageInventory is the mean inventory of the two most recent periods. When
// the prior period has no inventory line the latest value is used alone.
func averageInventory(statements *models.FinancialStatementSet) models.Value {
	cur, _ := statements.Latest()
	latest := cur.Get(models.ItemInventory)
	prev, ok := statements.Previous()
	if !ok || !prev.Has(models.ItemInventory) {
		return latest
	}
	p := prev.Get(models.ItemInventory)
	return models.Of((latest.Float() + p.Float()) / 2)
}

// ebitda uses the reported figure, else EBIT plus depreciation and
// amortization. Missing D&A counts as zero.
func ebitda(p models.Period) models.Value {
	if v := p.Get(models.ItemEBITDA); v.Defined() {
		return v
	}
	ebit := p.Get(models.ItemEBIT)
	if !ebit.Defined() {
		return models.Undefined()
	}
	return models.Of(ebit.Float() + p.Get(models.ItemDepreciation).Float())
}

func enterpriseValue(marketCap, debt, cash models.Value) models.Value {
	if !marketCap.Defined() || !debt.Defined() || !cash.Defined() {
		return models.Undefined()
	}
	return models.Of(marketCap.Float() + debt.Float() - cash.Float())
}

func eps(p models.Period) models.Value {
	return div(p.Get(models.ItemNetIncome), p.Get(models.ItemSharesOutstanding))
}

// freeCashFlow uses the reported figure, else operating cash flow less
// capital expenditure. CapEx sign conventions vary so its magnitude is used.
func freeCashFlow(p models.Period) models.Value {
	if v := p.Get(models.ItemFreeCashFlow); v.Defined() {
		return v
	}
	ocf := p.Get(models.ItemOperatingCashFlow)
	capex := p.Get(models.ItemCapitalExpenditure)
	if !ocf.Defined() || !capex.Defined() {
		return models.Undefined()
	}
	return models.Of(ocf.Float() - math.Abs(capex.Float()))
}
