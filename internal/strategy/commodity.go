package strategy

import (
	"fmt"
	"math"

	"TechScreen/internal/domain/models"
)

const (
	StrategyTrendUp             = "trend_following_up"
	StrategyTrendDown           = "trend_following_down"
	StrategyBreakoutUp          = "breakout_up"
	StrategyBreakoutDown        = "breakout_down"
	StrategyReversionOversold   = "mean_reversion_oversold"
	StrategyReversionOverbought = "mean_reversion_overbought"
)

// CommodityModule screens commodity ETFs, where sustained trends dominate.
// Trend following is the lead strategy, with band breakouts and a
// mean-reversion check for range-bound markets, over the voting base.
type CommodityModule struct {
	params Params
}

func (m *CommodityModule) Class() models.AssetClass { return models.ClassCommodities }

func (m *CommodityModule) Candidates(sets map[string]*IndicatorSet) []models.Signal {
	var out []models.Signal
	for _, sym := range sortedSymbols(sets) {
		set := sets[sym]
		out = append(out, votingSignal(set, m.Class(), m.params))
		if sig, ok := m.trendFollowing(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.breakout(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.meanReversion(set); ok {
			out = append(out, sig)
		}
	}
	return out
}

// trendFollowing scores four alignment conditions per direction: price vs
// SMA20, SMA20 vs SMA50, MACD line vs signal line, and agreeing 10/20-day
// momentum sign. Three of four fire a signal; an ADX reading above 25 with
// the directional index on the same side adds conviction.
func (m *CommodityModule) trendFollowing(set *IndicatorSet) (models.Signal, bool) {
	price := set.Close[len(set.Close)-1]

	sma20, ok1 := set.SMA20.Last()
	sma50, ok2 := set.SMA50.Last()
	if !ok1 || !ok2 {
		return models.Signal{}, false
	}
	macd, okM := set.MACDLine.Last()
	sigLine, okS := set.MACDSignal.Last()
	mom10, ok10 := set.Momentum10.Last()
	mom20, ok20 := set.Momentum20.Last()

	up, down := 0, 0
	if price > sma20 {
		up++
	} else if price < sma20 {
		down++
	}
	if sma20 > sma50 {
		up++
	} else if sma20 < sma50 {
		down++
	}
	if okM && okS {
		if macd > sigLine {
			up++
		} else if macd < sigLine {
			down++
		}
	}
	if ok10 && ok20 {
		if mom10 > 0 && mom20 > 0 {
			up++
		} else if mom10 < 0 && mom20 < 0 {
			down++
		}
	}

	confirmed := false
	if adx, ok := set.ADX.Last(); ok && adx > 25 {
		p, _ := set.PlusDI.Last()
		n, _ := set.MinusDI.Last()
		confirmed = (up > down && p > n) || (down > up && n > p)
	}

	atr, _ := set.ATR.Last()
	base := models.Signal{
		Instrument: set.Symbol,
		AssetClass: m.Class(),
		Price:      price,
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}
	rationale := func(word string, count int) string {
		if confirmed {
			return fmt.Sprintf("%s: %d/4 alignment conditions, ADX confirms", word, count)
		}
		return fmt.Sprintf("%s: %d/4 alignment conditions", word, count)
	}
	conf := func(count int) float64 {
		c := float64(count) / 4.0
		if confirmed {
			c += 0.1
		}
		return math.Min(c, 1.0)
	}
	switch {
	case up >= 3:
		base.Strategy = StrategyTrendUp
		base.Direction = models.DirectionBuy
		base.Strength = up
		base.Confidence = conf(up)
		base.StopLoss = price - 2*atr
		base.Target = price + 3*atr
		base.Rationale = rationale("uptrend", up)
		return base, true
	case down >= 3:
		base.Strategy = StrategyTrendDown
		base.Direction = models.DirectionSell
		base.Strength = down
		base.Confidence = conf(down)
		base.StopLoss = price + 2*atr
		base.Target = price - 3*atr
		base.Rationale = rationale("downtrend", down)
		return base, true
	}
	return models.Signal{}, false
}

// breakout fires on a close beyond a Bollinger band with volume running at
// least 1.5x its average.
func (m *CommodityModule) breakout(set *IndicatorSet) (models.Signal, bool) {
	price := set.Close[len(set.Close)-1]
	volume := set.Volume[len(set.Volume)-1]

	upper, ok1 := set.BBUpper.Last()
	lower, ok2 := set.BBLower.Last()
	volSMA, ok3 := set.VolumeSMA.Last()
	if !ok1 || !ok2 || !ok3 || volSMA <= 0 || volume <= 1.5*volSMA {
		return models.Signal{}, false
	}

	atr, _ := set.ATR.Last()
	base := models.Signal{
		Instrument: set.Symbol,
		AssetClass: m.Class(),
		Strength:   2,
		Confidence: 0.7,
		Price:      price,
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}
	switch {
	case price > upper:
		base.Strategy = StrategyBreakoutUp
		base.Direction = models.DirectionBuy
		base.StopLoss = price - 2*atr
		base.Target = price + 3*atr
		base.Rationale = "upper-band breakout on 1.5x average volume"
		return base, true
	case price < lower:
		base.Strategy = StrategyBreakoutDown
		base.Direction = models.DirectionSell
		base.StopLoss = price + 2*atr
		base.Target = price - 3*atr
		base.Rationale = "lower-band breakdown on 1.5x average volume"
		return base, true
	}
	return models.Signal{}, false
}

// meanReversion trades oscillator extremes back toward the middle band.
func (m *CommodityModule) meanReversion(set *IndicatorSet) (models.Signal, bool) {
	price := set.Close[len(set.Close)-1]

	rsi, ok1 := set.RSI.Last()
	upper, ok2 := set.BBUpper.Last()
	lower, ok3 := set.BBLower.Last()
	middle, ok4 := set.BBMiddle.Last()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return models.Signal{}, false
	}

	atr, _ := set.ATR.Last()
	base := models.Signal{
		Instrument: set.Symbol,
		AssetClass: m.Class(),
		Strength:   2,
		Confidence: 0.6,
		Price:      price,
		Target:     middle,
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}
	switch {
	case rsi < 30 && price < lower:
		base.Strategy = StrategyReversionOversold
		base.Direction = models.DirectionBuy
		base.StopLoss = price - 1.5*atr
		base.Rationale = fmt.Sprintf("oversold: RSI %.1f under 30, close under lower band", rsi)
		return base, true
	case rsi > 70 && rsi < 100 && price > upper:
		base.Strategy = StrategyReversionOverbought
		base.Direction = models.DirectionSell
		base.StopLoss = price + 1.5*atr
		base.Rationale = fmt.Sprintf("overbought: RSI %.1f over 70, close over upper band", rsi)
		return base, true
	}
	return models.Signal{}, false
}
