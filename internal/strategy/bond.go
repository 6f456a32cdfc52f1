package strategy

import (
	"fmt"

	"TechScreen/internal/domain/models"
)

const (
	StrategyYieldCurveFlattening = "yield_curve_flattening"
	StrategyYieldCurveSteepening = "yield_curve_steepening"
	StrategyCreditSpreadNarrow   = "credit_spread_narrowing"
	StrategyCreditSpreadWiden    = "credit_spread_widening"
	StrategyBondBreakout         = "technical_breakout"
	StrategyBondOversold         = "technical_oversold"
)

// curveThreshold is the 20-day relative momentum gap that counts as a real
// curve or spread move rather than noise.
const curveThreshold = 0.02

// BondModule screens fixed-income ETFs. The voting base runs per instrument;
// on top of it sit two cross-instrument proxies, a duration (yield-curve)
// read from long vs short Treasury ETFs and a credit read from high-yield vs
// investment-grade ETFs, plus per-instrument technical checks.
type BondModule struct {
	params Params
}

func (m *BondModule) Class() models.AssetClass { return models.ClassBonds }

func (m *BondModule) Candidates(sets map[string]*IndicatorSet) []models.Signal {
	var out []models.Signal
	for _, sym := range sortedSymbols(sets) {
		set := sets[sym]
		out = append(out, votingSignal(set, m.Class(), m.params))
		out = append(out, m.technical(set)...)
	}
	out = append(out, m.yieldCurve(sets)...)
	out = append(out, m.creditSpread(sets)...)
	return out
}

// yieldCurve compares 20-day momentum of the long-duration proxy against the
// short-duration proxy. A rallying long end (falling long yields) reads as
// flattening and favors duration; the reverse reads as steepening.
func (m *BondModule) yieldCurve(sets map[string]*IndicatorSet) []models.Signal {
	long, okL := sets[m.params.LongDuration]
	short, okS := sets[m.params.ShortDuration]
	if !okL || !okS {
		return nil
	}
	longMom, ok1 := long.Momentum20.Last()
	shortMom, ok2 := short.Momentum20.Last()
	if !ok1 || !ok2 {
		return nil
	}

	rel := longMom - shortMom
	switch {
	case rel > curveThreshold:
		return []models.Signal{m.proxySignal(long, StrategyYieldCurveFlattening, models.DirectionBuy, 0.8,
			fmt.Sprintf("curve flattening: long-end momentum leads short end by %.1f%%", rel*100))}
	case rel < -curveThreshold:
		out := []models.Signal{m.proxySignal(long, StrategyYieldCurveSteepening, models.DirectionSell, 0.7,
			fmt.Sprintf("curve steepening: long-end momentum trails short end by %.1f%%", -rel*100))}
		out = append(out, m.proxySignal(short, StrategyYieldCurveSteepening, models.DirectionBuy, 0.6,
			"curve steepening: rotate into short duration"))
		return out
	}
	return nil
}

// creditSpread compares high-yield against investment-grade momentum. High
// yield outperforming reads as spreads narrowing (risk appetite), the
// reverse as spreads widening.
func (m *BondModule) creditSpread(sets map[string]*IndicatorSet) []models.Signal {
	hy, okH := sets[m.params.HighYield]
	ig, okI := sets[m.params.InvestmentGrade]
	if !okH || !okI {
		return nil
	}
	hyMom, ok1 := hy.Momentum20.Last()
	igMom, ok2 := ig.Momentum20.Last()
	if !ok1 || !ok2 {
		return nil
	}

	rel := hyMom - igMom
	switch {
	case rel > curveThreshold:
		return []models.Signal{m.proxySignal(hy, StrategyCreditSpreadNarrow, models.DirectionBuy, 0.7,
			fmt.Sprintf("spreads narrowing: high yield outpaces investment grade by %.1f%%", rel*100))}
	case rel < -curveThreshold:
		out := []models.Signal{m.proxySignal(hy, StrategyCreditSpreadWiden, models.DirectionSell, 0.7,
			fmt.Sprintf("spreads widening: high yield lags investment grade by %.1f%%", -rel*100))}
		out = append(out, m.proxySignal(ig, StrategyCreditSpreadWiden, models.DirectionBuy, 0.6,
			"spreads widening: rotate into investment grade"))
		return out
	}
	return nil
}

// technical adds per-instrument breakout and oversold checks on top of the
// voting base.
func (m *BondModule) technical(set *IndicatorSet) []models.Signal {
	price := set.Close[len(set.Close)-1]
	volume := set.Volume[len(set.Volume)-1]

	upper, ok1 := set.BBUpper.Last()
	lower, ok2 := set.BBLower.Last()
	rsi, ok3 := set.RSI.Last()
	volSMA, ok4 := set.VolumeSMA.Last()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	var out []models.Signal
	if price > upper && volSMA > 0 && volume > 1.3*volSMA {
		out = append(out, m.proxySignal(set, StrategyBondBreakout, models.DirectionBuy, 0.6,
			"upper-band breakout on above-average volume"))
	}
	if rsi < 30 && price < lower {
		out = append(out, m.proxySignal(set, StrategyBondOversold, models.DirectionBuy, 0.6,
			fmt.Sprintf("oversold: RSI %.1f under 30, close under lower band", rsi)))
	}
	return out
}

func (m *BondModule) proxySignal(set *IndicatorSet, name string, dir models.Direction, conf float64, rationale string) models.Signal {
	price := set.Close[len(set.Close)-1]
	atr, _ := set.ATR.Last()
	sig := models.Signal{
		Instrument: set.Symbol,
		AssetClass: m.Class(),
		Strategy:   name,
		Direction:  dir,
		Strength:   2,
		Confidence: conf,
		Price:      price,
		Rationale:  rationale,
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}
	if dir == models.DirectionBuy {
		sig.StopLoss = price - 1.5*atr
		sig.Target = price + 2*atr
	} else {
		sig.StopLoss = price + 1.5*atr
		sig.Target = price - 2*atr
	}
	return sig
}
