package strategy

import (
	"fmt"
	"math"

	"TechScreen/internal/domain/models"
)

const (
	StrategyMomentumBreakout = "momentum_breakout"
	StrategyMeanReversion    = "mean_reversion"
)

// EquityModule screens equity ETFs with trend-plus-volume breakouts and a
// Bollinger/RSI mean-reversion check, over the shared voting base.
type EquityModule struct {
	params Params
}

func (m *EquityModule) Class() models.AssetClass { return models.ClassEquities }

func (m *EquityModule) Candidates(sets map[string]*IndicatorSet) []models.Signal {
	var out []models.Signal
	for _, sym := range sortedSymbols(sets) {
		set := sets[sym]
		out = append(out, votingSignal(set, m.Class(), m.params))
		if sig, ok := m.momentumBreakout(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.meanReversion(set); ok {
			out = append(out, sig)
		}
	}
	return out
}

// momentumBreakout fires when price sits above both moving averages in an
// aligned trend and volume runs above its average. Three of the four checks
// must pass.
func (m *EquityModule) momentumBreakout(set *IndicatorSet) (models.Signal, bool) {
	price := set.Close[len(set.Close)-1]
	volume := set.Volume[len(set.Volume)-1]

	sma20, ok1 := set.SMA20.Last()
	sma50, ok2 := set.SMA50.Last()
	volSMA, ok3 := set.VolumeSMA.Last()
	if !ok1 || !ok2 || !ok3 {
		return models.Signal{}, false
	}

	strength := 0
	if price > sma20 {
		strength++
	}
	if price > sma50 {
		strength++
	}
	if sma20 > sma50 {
		strength++
	}
	if volSMA > 0 && volume > 1.2*volSMA {
		strength++
	}
	if strength < 3 {
		return models.Signal{}, false
	}

	atr, _ := set.ATR.Last()
	return models.Signal{
		Instrument: set.Symbol,
		AssetClass: m.Class(),
		Strategy:   StrategyMomentumBreakout,
		Direction:  models.DirectionBuy,
		Strength:   strength,
		Confidence: math.Min(float64(strength)/4.0, 1.0),
		Price:      price,
		StopLoss:   price - 2*atr,
		Target:     price + 3*atr,
		Rationale:  fmt.Sprintf("trend breakout: %d/4 conditions, price above 20/50-day averages", strength),
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}, true
}

// meanReversion fires only on the combination of an oscillator extreme and a
// close outside the Bollinger band, targeting the middle band.
func (m *EquityModule) meanReversion(set *IndicatorSet) (models.Signal, bool) {
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
		Strategy:   StrategyMeanReversion,
		Strength:   2,
		Confidence: 0.7,
		Price:      price,
		Target:     middle,
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}

	switch {
	case rsi < 35 && price < lower:
		base.Direction = models.DirectionBuy
		base.StopLoss = price - 1.5*atr
		base.Rationale = fmt.Sprintf("oversold reversion: RSI %.1f below 35, close under lower band", rsi)
		return base, true
	case rsi > 65 && rsi < 100 && price > upper:
		base.Direction = models.DirectionSell
		base.StopLoss = price + 1.5*atr
		base.Rationale = fmt.Sprintf("overbought reversion: RSI %.1f above 65, close over upper band", rsi)
		return base, true
	}
	return models.Signal{}, false
}
