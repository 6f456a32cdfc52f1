// Package selection reconciles the raw candidate stream from a strategy
// module into a bounded, deterministic instrument->signal mapping. Fusion
// picks one survivor per instrument, ranking orders survivors, and the
// position bounds decide how many make the final cut.
package selection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/strategy"
)

// ForcedConfidence is the fixed confidence stamped on forced-entry fallback
// signals. It sits strictly below every confidence a strategy module can
// emit for a directional signal, so forced entries always rank last.
const ForcedConfidence = 0.3

// Policy bounds how many instruments one asset class may select.
type Policy struct {
	MinPositions int
	MaxPositions int
}

// priority tiers for fusion. A specialized asset-class read outranks the
// voting system, which outranks generic single-strategy technicals.
const (
	tierGeneric = iota + 1
	tierVoting
	tierSpecialized
)

func tier(name string) int {
	switch {
	case strings.HasPrefix(name, "yield_curve"),
		strings.HasPrefix(name, "credit_spread"),
		name == strategy.StrategySafeHaven,
		name == strategy.StrategyInflationHedge:
		return tierSpecialized
	case name == strategy.StrategyVoting:
		return tierVoting
	default:
		return tierGeneric
	}
}

// beats reports whether a should replace b as the survivor for one
// instrument. Directional beats WATCH, then tier, confidence, strength and
// finally strategy name keep the choice deterministic.
func beats(a, b models.Signal) bool {
	if a.Direction.Directional() != b.Direction.Directional() {
		return a.Direction.Directional()
	}
	if ta, tb := tier(a.Strategy), tier(b.Strategy); ta != tb {
		return ta > tb
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Strength != b.Strength {
		return a.Strength > b.Strength
	}
	return a.Strategy < b.Strategy
}

// Fuse reduces candidates to at most one signal per instrument. The vote
// tally metadata from a losing voting candidate is carried onto the survivor
// so forced-entry ranking still sees it.
func Fuse(candidates []models.Signal) map[string]models.Signal {
	out := make(map[string]models.Signal, len(candidates))
	votes := make(map[string]models.Signal)
	for _, c := range candidates {
		if c.Strategy == strategy.StrategyVoting {
			votes[c.Instrument] = c
		}
		cur, seen := out[c.Instrument]
		if !seen || beats(c, cur) {
			out[c.Instrument] = c
		}
	}
	for sym, s := range out {
		if v, ok := votes[sym]; ok && s.Strategy != v.Strategy {
			s.VoteBuy = v.VoteBuy
			s.VoteSell = v.VoteSell
			out[sym] = s
		}
	}
	return out
}

// Rank orders signals by confidence descending with an instrument tie-break.
func Rank(signals []models.Signal) []models.Signal {
	out := make([]models.Signal, len(signals))
	copy(out, signals)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Instrument < out[j].Instrument
	})
	return out
}

// Select fuses candidates and applies the position bounds. Directional
// survivors fill the selection up to MaxPositions; if fewer directional
// signals exist than min(MinPositions, universe size), remaining instruments
// are forced in from their vote tallies at ForcedConfidence.
func (p Policy) Select(class models.AssetClass, candidates []models.Signal, now time.Time) models.SelectionResult {
	fused := Fuse(candidates)

	var directional, watch []models.Signal
	for _, s := range fused {
		if s.Direction.Directional() {
			directional = append(directional, s)
		} else {
			watch = append(watch, s)
		}
	}

	selected := Rank(directional)
	if p.MaxPositions > 0 && len(selected) > p.MaxPositions {
		selected = selected[:p.MaxPositions]
	}

	floor := p.MinPositions
	if len(fused) < floor {
		floor = len(fused)
	}
	if len(selected) < floor {
		selected = append(selected, forcedEntries(watch, floor-len(selected), now)...)
	}

	result := models.SelectionResult{
		AssetClass:  class,
		Signals:     make(map[string]models.Signal, len(selected)),
		GeneratedAt: now,
	}
	for _, s := range selected {
		result.Signals[s.Instrument] = s
	}
	return result
}

// forcedEntries converts up to n WATCH survivors into low-confidence
// fallback positions, ranked by raw vote tally with a symbol tie-break.
func forcedEntries(watch []models.Signal, n int, now time.Time) []models.Signal {
	if n <= 0 || len(watch) == 0 {
		return nil
	}
	pool := make([]models.Signal, len(watch))
	copy(pool, watch)
	sort.Slice(pool, func(i, j int) bool {
		di := maxInt(pool[i].VoteBuy, pool[i].VoteSell)
		dj := maxInt(pool[j].VoteBuy, pool[j].VoteSell)
		if di != dj {
			return di > dj
		}
		if ti, tj := pool[i].VoteBuy+pool[i].VoteSell, pool[j].VoteBuy+pool[j].VoteSell; ti != tj {
			return ti > tj
		}
		return pool[i].Instrument < pool[j].Instrument
	})
	if len(pool) > n {
		pool = pool[:n]
	}

	out := make([]models.Signal, 0, len(pool))
	for _, w := range pool {
		dir := models.DirectionBuy
		if w.VoteSell > w.VoteBuy {
			dir = models.DirectionSell
		}
		sig := models.Signal{
			Instrument: w.Instrument,
			AssetClass: w.AssetClass,
			Strategy:   models.StrategyForcedEntry,
			Direction:  dir,
			Strength:   1,
			Confidence: ForcedConfidence,
			Price:      w.Price,
			Rationale: fmt.Sprintf("forced entry to satisfy minimum positions, not a validated opportunity (votes: %d buy / %d sell)",
				w.VoteBuy, w.VoteSell),
			Timestamp: now,
			VoteBuy:   w.VoteBuy,
			VoteSell:  w.VoteSell,
			ATRValue:  w.ATRValue,
		}
		if w.ATRValue > 0 {
			if dir == models.DirectionBuy {
				sig.StopLoss = w.Price - 1.5*w.ATRValue
				sig.Target = w.Price + 2*w.ATRValue
			} else {
				sig.StopLoss = w.Price + 1.5*w.ATRValue
				sig.Target = w.Price - 2*w.ATRValue
			}
		}
		out = append(out, sig)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
