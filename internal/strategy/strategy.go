// Package strategy turns per-instrument indicator bundles into candidate
// trading signals. Modules are pure: same indicators in, same candidates out.
// They emit every qualifying candidate unfiltered; reconciling conflicts is
// the selection package's job.
package strategy

import (
	"fmt"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/indicator"
)

// MinBars is the minimum history length an instrument needs before its
// indicators are computed. Below this the instrument is excluded, not zeroed.
const MinBars = 50

// fibWindow is the rolling high/low span used for retracement levels.
const fibWindow = 50

// IndicatorSet bundles every derived series for one instrument, all aligned
// to the source bar index. Warm-up positions are undefined, never zero.
type IndicatorSet struct {
	Symbol string
	Bars   []models.PriceBar

	Close  []float64
	High   []float64
	Low    []float64
	Volume []float64

	SMA20  indicator.Series
	SMA50  indicator.Series
	SMA200 indicator.Series
	EMA12  indicator.Series
	EMA26  indicator.Series

	RSI        indicator.Series
	MACDLine   indicator.Series
	MACDSignal indicator.Series
	MACDHist   indicator.Series

	BBUpper  indicator.Series
	BBMiddle indicator.Series
	BBLower  indicator.Series

	ATR        indicator.Series
	Volatility indicator.Series
	Momentum10 indicator.Series
	Momentum20 indicator.Series

	ADX     indicator.Series
	PlusDI  indicator.Series
	MinusDI indicator.Series

	VolumeSMA indicator.Series

	Fib    indicator.FibLevels
	HasFib bool
}

// Compute derives the full indicator bundle for one instrument's history.
// Histories shorter than MinBars are rejected with ErrInsufficientHistory.
func Compute(h models.History) (*IndicatorSet, error) {
	if h.Len() < MinBars {
		return nil, fmt.Errorf("%s: %d bars: %w", h.Symbol, h.Len(), repository.ErrInsufficientHistory)
	}

	set := &IndicatorSet{
		Symbol: h.Symbol,
		Bars:   h.Bars,
		Close:  h.Closes(),
		High:   h.Highs(),
		Low:    h.Lows(),
		Volume: h.Volumes(),
	}

	set.SMA20 = indicator.SMA(set.Close, 20)
	set.SMA50 = indicator.SMA(set.Close, 50)
	set.SMA200 = indicator.SMA(set.Close, 200)
	set.EMA12 = indicator.EMA(set.Close, 12)
	set.EMA26 = indicator.EMA(set.Close, 26)
	set.RSI = indicator.RSI(set.Close, 14)
	set.MACDLine, set.MACDSignal, set.MACDHist = indicator.MACD(set.Close, 12, 26, 9)
	set.BBUpper, set.BBMiddle, set.BBLower = indicator.Bollinger(set.Close, 20, 2)
	set.ATR = indicator.ATR(set.High, set.Low, set.Close, 14)
	set.Volatility = indicator.Volatility(set.Close, 20)
	set.Momentum10 = indicator.Momentum(set.Close, 10)
	set.Momentum20 = indicator.Momentum(set.Close, 20)
	set.ADX, set.PlusDI, set.MinusDI = indicator.ADX(set.High, set.Low, set.Close, 14)
	set.VolumeSMA = indicator.SMA(set.Volume, 20)

	if hi, ok := indicator.RollingMax(set.High, fibWindow).Last(); ok {
		if lo, ok2 := indicator.RollingMin(set.Low, fibWindow).Last(); ok2 {
			set.Fib = indicator.Fibonacci(hi, lo)
			set.HasFib = true
		}
	}

	return set, nil
}

// ComputeAll builds indicator sets for a universe, silently excluding
// instruments with insufficient history. The returned slice names them.
func ComputeAll(histories map[string]models.History) (map[string]*IndicatorSet, []string) {
	sets := make(map[string]*IndicatorSet, len(histories))
	var excluded []string
	for sym, h := range histories {
		set, err := Compute(h)
		if err != nil {
			excluded = append(excluded, sym)
			continue
		}
		sets[sym] = set
	}
	return sets, excluded
}

// Module generates candidate signals for one asset class.
type Module interface {
	Class() models.AssetClass
	Candidates(sets map[string]*IndicatorSet) []models.Signal
}

// Params carries the tunable knobs modules need beyond their indicator input.
type Params struct {
	// Bond duration proxies, long to short, for the yield-curve strategy.
	LongDuration  string
	MidDuration   string
	ShortDuration string
	// Bond credit proxies for the spread strategy.
	InvestmentGrade string
	HighYield       string
	// Now stamps emitted signals; defaults to time.Now.
	Now func() time.Time
}

func (p Params) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Params) withBondDefaults() Params {
	if p.LongDuration == "" {
		p.LongDuration = "TLT"
	}
	if p.MidDuration == "" {
		p.MidDuration = "IEF"
	}
	if p.ShortDuration == "" {
		p.ShortDuration = "SHY"
	}
	if p.InvestmentGrade == "" {
		p.InvestmentGrade = "LQD"
	}
	if p.HighYield == "" {
		p.HighYield = "HYG"
	}
	return p
}

// ForClass builds the strategy module for an asset class.
func ForClass(class models.AssetClass, params Params) Module {
	switch class {
	case models.ClassEquities:
		return &EquityModule{params: params}
	case models.ClassBonds:
		return &BondModule{params: params.withBondDefaults()}
	case models.ClassCommodities:
		return &CommodityModule{params: params}
	case models.ClassGolds:
		return &GoldModule{params: params}
	default:
		return &EquityModule{params: params}
	}
}

// sortedSymbols yields deterministic iteration order over a universe.
func sortedSymbols(sets map[string]*IndicatorSet) []string {
	out := make([]string, 0, len(sets))
	for sym := range sets {
		out = append(out, sym)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
