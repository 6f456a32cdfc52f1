package strategy

import (
	"fmt"
	"math"

	"TechScreen/internal/domain/models"
)

// StrategyVoting names the multi-indicator voting strategy.
const StrategyVoting = "seven_indicator_voting"

// votesRequired is the directional threshold: at least this many of the
// seven indicator votes on one side, and strictly more than the other side.
const votesRequired = 3

// votes tallies the seven indicator checks for one instrument.
type votes struct {
	buy     int
	sell    int
	neutral int
}

func (v votes) total() int { return v.buy + v.sell + v.neutral }

// castVotes runs the seven checks against the latest bar. An indicator whose
// latest value is undefined always votes neutral.
func castVotes(set *IndicatorSet) votes {
	var v votes
	price := set.Close[len(set.Close)-1]
	var prevPrice float64
	if len(set.Close) > 1 {
		prevPrice = set.Close[len(set.Close)-2]
	}

	// 1. SMA trend alignment.
	if sma20, ok := set.SMA20.Last(); ok {
		if sma50, ok2 := set.SMA50.Last(); ok2 {
			switch {
			case price > sma20 && sma20 > sma50:
				v.buy++
			case price < sma20 && sma20 < sma50:
				v.sell++
			default:
				v.neutral++
			}
		} else {
			v.neutral++
		}
	} else {
		v.neutral++
	}

	// 2. EMA crossover.
	if e12, ok := set.EMA12.Last(); ok {
		if e26, ok2 := set.EMA26.Last(); ok2 {
			switch {
			case e12 > e26 && price > e12:
				v.buy++
			case e12 < e26 && price < e12:
				v.sell++
			default:
				v.neutral++
			}
		} else {
			v.neutral++
		}
	} else {
		v.neutral++
	}

	// 3. RSI extremes. An RSI pinned at the zero-loss policy value of 100
	// carries no reversal information, so it votes neutral.
	if rsi, ok := set.RSI.Last(); ok {
		switch {
		case rsi < 30:
			v.buy++
		case rsi > 70 && rsi < 100:
			v.sell++
		default:
			v.neutral++
		}
	} else {
		v.neutral++
	}

	// 4. MACD line vs signal, gated on the zero line.
	if line, ok := set.MACDLine.Last(); ok {
		if sig, ok2 := set.MACDSignal.Last(); ok2 {
			switch {
			case line > sig && line > 0:
				v.buy++
			case line < sig && line < 0:
				v.sell++
			default:
				v.neutral++
			}
		} else {
			v.neutral++
		}
	} else {
		v.neutral++
	}

	// 5. Bollinger band touches.
	if upper, ok := set.BBUpper.Last(); ok {
		lower, _ := set.BBLower.Last()
		switch {
		case price < lower:
			v.buy++
		case price > upper:
			v.sell++
		default:
			v.neutral++
		}
	} else {
		v.neutral++
	}

	// 6. Range expansion: a move beyond 1.5x ATR votes with its direction.
	if atr, ok := set.ATR.Last(); ok && len(set.Close) > 1 {
		change := price - prevPrice
		switch {
		case math.Abs(change) > 1.5*atr && change > 0:
			v.buy++
		case math.Abs(change) > 1.5*atr && change < 0:
			v.sell++
		default:
			v.neutral++
		}
	} else {
		v.neutral++
	}

	// 7. Volume confirmation: a spike votes with the day's direction.
	if volSMA, ok := set.VolumeSMA.Last(); ok && volSMA > 0 {
		vol := set.Volume[len(set.Volume)-1]
		switch {
		case vol > 1.5*volSMA && price > prevPrice:
			v.buy++
		case vol > 1.5*volSMA && price < prevPrice:
			v.sell++
		default:
			v.neutral++
		}
	} else {
		v.neutral++
	}

	return v
}

// votingSignal evaluates the seven-indicator vote for one instrument. The
// outcome is directional only when one side reaches votesRequired and beats
// the other side outright; equal tallies resolve to WATCH. The returned
// signal always carries the raw tally so downstream fallback logic can rank
// below-threshold instruments.
func votingSignal(set *IndicatorSet, class models.AssetClass, p Params) models.Signal {
	v := castVotes(set)
	price := set.Close[len(set.Close)-1]
	atr, _ := set.ATR.Last()

	sig := models.Signal{
		Instrument: set.Symbol,
		AssetClass: class,
		Strategy:   StrategyVoting,
		Direction:  models.DirectionWatch,
		Strength:   maxInt(v.buy, v.sell),
		Confidence: 0.3,
		Price:      price,
		Rationale:  fmt.Sprintf("indicator votes: %d buy / %d sell / %d neutral", v.buy, v.sell, v.neutral),
		Timestamp:  p.now(),
		VoteBuy:    v.buy,
		VoteSell:   v.sell,
		ATRValue:   atr,
	}

	switch {
	case v.buy >= votesRequired && v.buy > v.sell:
		sig.Direction = models.DirectionBuy
		sig.Confidence = math.Min(float64(v.buy)/float64(v.total()), 1.0)
		sig.StopLoss = price - 2*atr
		sig.Target = price + 3*atr
	case v.sell >= votesRequired && v.sell > v.buy:
		sig.Direction = models.DirectionSell
		sig.Confidence = math.Min(float64(v.sell)/float64(v.total()), 1.0)
		sig.StopLoss = price + 2*atr
		sig.Target = price - 3*atr
	}
	return sig
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
