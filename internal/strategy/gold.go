package strategy

import (
	"fmt"
	"math"

	"TechScreen/internal/domain/models"
)

const (
	StrategyGoldBreakoutUp   = "technical_breakout_up"
	StrategyGoldBreakoutDown = "technical_breakout_down"
	StrategyFibSupport       = "fibonacci_support"
	StrategyFibResistance    = "fibonacci_resistance"
	StrategyMomentumStrong   = "momentum_strong"
	StrategyMomentumWeak     = "momentum_weak"
	StrategySafeHaven        = "safe_haven"
	StrategyInflationHedge   = "inflation_hedge"
)

// fibProximity is how close price must sit to a retracement level, as a
// fraction of price, for the level to count as tested.
const fibProximity = 0.02

// GoldModule screens gold and precious-metal ETFs. Alongside breakout and
// momentum it reads Fibonacci retracements of the 50-day swing and two macro
// factors: safe-haven demand inferred from rising realized volatility and an
// inflation-hedge read from long-window drift.
type GoldModule struct {
	params Params
}

func (m *GoldModule) Class() models.AssetClass { return models.ClassGolds }

func (m *GoldModule) Candidates(sets map[string]*IndicatorSet) []models.Signal {
	var out []models.Signal
	for _, sym := range sortedSymbols(sets) {
		set := sets[sym]
		out = append(out, votingSignal(set, m.Class(), m.params))
		if sig, ok := m.breakout(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.fibonacci(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.momentum(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.safeHaven(set); ok {
			out = append(out, sig)
		}
		if sig, ok := m.inflationHedge(set); ok {
			out = append(out, sig)
		}
	}
	return out
}

func (m *GoldModule) breakout(set *IndicatorSet) (models.Signal, bool) {
	price := set.Close[len(set.Close)-1]
	volume := set.Volume[len(set.Volume)-1]

	upper, ok1 := set.BBUpper.Last()
	lower, ok2 := set.BBLower.Last()
	volSMA, ok3 := set.VolumeSMA.Last()
	if !ok1 || !ok2 || !ok3 || volSMA <= 0 || volume <= 1.5*volSMA {
		return models.Signal{}, false
	}

	atr, _ := set.ATR.Last()
	base := m.signal(set, "", models.DirectionWatch, 0.8, "")
	switch {
	case price > upper:
		base.Strategy = StrategyGoldBreakoutUp
		base.Direction = models.DirectionBuy
		base.StopLoss = price - 2*atr
		base.Target = price + 3*atr
		base.Rationale = "upper-band breakout on 1.5x average volume"
		return base, true
	case price < lower:
		base.Strategy = StrategyGoldBreakoutDown
		base.Direction = models.DirectionSell
		base.StopLoss = price + 2*atr
		base.Target = price - 3*atr
		base.Rationale = "lower-band breakdown on 1.5x average volume"
		return base, true
	}
	return models.Signal{}, false
}

// fibonacci looks for price testing the 38.2/50/61.8 retracements of the
// 50-day swing: a test with a weak oscillator reads as support holding, a
// test with a strong oscillator as resistance rejecting.
func (m *GoldModule) fibonacci(set *IndicatorSet) (models.Signal, bool) {
	if !set.HasFib {
		return models.Signal{}, false
	}
	price := set.Close[len(set.Close)-1]
	if price <= 0 {
		return models.Signal{}, false
	}
	rsi, ok := set.RSI.Last()
	if !ok {
		return models.Signal{}, false
	}

	levels := []struct {
		name  string
		value float64
	}{
		{"38.2%", set.Fib.Level382},
		{"50.0%", set.Fib.Level500},
		{"61.8%", set.Fib.Level618},
	}
	for _, lv := range levels {
		if math.Abs(price-lv.value)/price > fibProximity {
			continue
		}
		atr, _ := set.ATR.Last()
		base := m.signal(set, "", models.DirectionWatch, 0.6, "")
		switch {
		case rsi < 40:
			base.Strategy = StrategyFibSupport
			base.Direction = models.DirectionBuy
			base.StopLoss = price - 1.5*atr
			base.Target = set.Fib.Level100
			base.Rationale = fmt.Sprintf("holding %s retracement with RSI %.1f", lv.name, rsi)
			return base, true
		case rsi > 60 && rsi < 100:
			base.Strategy = StrategyFibResistance
			base.Direction = models.DirectionSell
			base.StopLoss = price + 1.5*atr
			base.Target = set.Fib.Level0
			base.Rationale = fmt.Sprintf("rejected at %s retracement with RSI %.1f", lv.name, rsi)
			return base, true
		}
	}
	return models.Signal{}, false
}

func (m *GoldModule) momentum(set *IndicatorSet) (models.Signal, bool) {
	mom, ok := set.Momentum20.Last()
	if !ok {
		return models.Signal{}, false
	}
	price := set.Close[len(set.Close)-1]
	atr, _ := set.ATR.Last()
	switch {
	case mom > 0.05:
		sig := m.signal(set, StrategyMomentumStrong, models.DirectionBuy, 0.7,
			fmt.Sprintf("20-day momentum %.1f%%", mom*100))
		sig.StopLoss = price - 2*atr
		sig.Target = price + 3*atr
		return sig, true
	case mom < -0.05:
		sig := m.signal(set, StrategyMomentumWeak, models.DirectionSell, 0.7,
			fmt.Sprintf("20-day momentum %.1f%%", mom*100))
		sig.StopLoss = price + 2*atr
		sig.Target = price - 3*atr
		return sig, true
	}
	return models.Signal{}, false
}

// safeHaven fires when realized volatility is expanding while price holds
// above its 50-day average, the pattern of hedge demand during risk-off.
func (m *GoldModule) safeHaven(set *IndicatorSet) (models.Signal, bool) {
	vol, ok := set.Volatility.Last()
	if !ok {
		return models.Signal{}, false
	}
	prior, ok := set.Volatility.Prev(20)
	if !ok || vol <= 1.25*prior || prior <= 0 {
		return models.Signal{}, false
	}
	price := set.Close[len(set.Close)-1]
	sma50, ok := set.SMA50.Last()
	if !ok || price <= sma50 {
		return models.Signal{}, false
	}
	atr, _ := set.ATR.Last()
	sig := m.signal(set, StrategySafeHaven, models.DirectionBuy, 0.65,
		fmt.Sprintf("hedge demand: volatility up %.0f%% over 20 days, price above 50-day average", (vol/prior-1)*100))
	sig.StopLoss = price - 2*atr
	sig.Target = price + 2.5*atr
	return sig, true
}

// inflationHedge reads long-window drift: price above the 200-day average
// with positive 20-day momentum is a sustained hedge bid, the mirror image a
// hedge unwind.
func (m *GoldModule) inflationHedge(set *IndicatorSet) (models.Signal, bool) {
	sma200, ok := set.SMA200.Last()
	if !ok {
		return models.Signal{}, false
	}
	mom, ok := set.Momentum20.Last()
	if !ok {
		return models.Signal{}, false
	}
	price := set.Close[len(set.Close)-1]
	atr, _ := set.ATR.Last()
	switch {
	case price > sma200 && mom > 0:
		sig := m.signal(set, StrategyInflationHedge, models.DirectionBuy, 0.6,
			"sustained hedge bid: price above 200-day average with positive momentum")
		sig.StopLoss = price - 2*atr
		sig.Target = price + 2.5*atr
		return sig, true
	case price < sma200 && mom < -0.05:
		sig := m.signal(set, StrategyInflationHedge, models.DirectionSell, 0.6,
			"hedge unwind: price below 200-day average with falling momentum")
		sig.StopLoss = price + 2*atr
		sig.Target = price - 2.5*atr
		return sig, true
	}
	return models.Signal{}, false
}

func (m *GoldModule) signal(set *IndicatorSet, name string, dir models.Direction, conf float64, rationale string) models.Signal {
	atr, _ := set.ATR.Last()
	return models.Signal{
		Instrument: set.Symbol,
		AssetClass: m.Class(),
		Strategy:   name,
		Direction:  dir,
		Strength:   2,
		Confidence: conf,
		Price:      set.Close[len(set.Close)-1],
		Rationale:  rationale,
		Timestamp:  m.params.now(),
		ATRValue:   atr,
	}
}
