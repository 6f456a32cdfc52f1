package selection

import (
	"testing"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/strategy"
)

var testNow = time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)

func candidate(sym, strat string, dir models.Direction, conf float64) models.Signal {
	return models.Signal{
		Instrument: sym,
		AssetClass: models.ClassEquities,
		Strategy:   strat,
		Direction:  dir,
		Strength:   2,
		Confidence: conf,
		Price:      100,
		Timestamp:  testNow,
	}
}

func watchCandidate(sym string, buy, sell int) models.Signal {
	s := candidate(sym, strategy.StrategyVoting, models.DirectionWatch, 0.3)
	s.VoteBuy = buy
	s.VoteSell = sell
	s.ATRValue = 2
	return s
}

func TestFuseDirectionalBeatsWatch(t *testing.T) {
	fused := Fuse([]models.Signal{
		watchCandidate("SPY", 1, 1),
		candidate("SPY", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.8),
	})
	got, ok := fused["SPY"]
	if !ok {
		t.Fatalf("instrument lost in fusion")
	}
	if got.Direction != models.DirectionBuy || got.Confidence != 0.8 {
		t.Fatalf("fusion picked %s at %v, want BUY at 0.8", got.Direction, got.Confidence)
	}
}

func TestFuseSpecializedBeatsVoting(t *testing.T) {
	fused := Fuse([]models.Signal{
		candidate("TLT", strategy.StrategyVoting, models.DirectionBuy, 0.9),
		candidate("TLT", strategy.StrategyYieldCurveFlattening, models.DirectionBuy, 0.8),
	})
	if got := fused["TLT"]; got.Strategy != strategy.StrategyYieldCurveFlattening {
		t.Fatalf("specialized read should win fusion, got %s", got.Strategy)
	}
}

func TestFuseVotingBeatsGeneric(t *testing.T) {
	fused := Fuse([]models.Signal{
		candidate("SPY", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.95),
		candidate("SPY", strategy.StrategyVoting, models.DirectionBuy, 0.57),
	})
	if got := fused["SPY"]; got.Strategy != strategy.StrategyVoting {
		t.Fatalf("directional voting should outrank a generic technical, got %s", got.Strategy)
	}
}

func TestFuseDeterministicOnEqualCandidates(t *testing.T) {
	a := candidate("SPY", strategy.StrategyMeanReversion, models.DirectionBuy, 0.7)
	b := candidate("SPY", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.7)
	first := Fuse([]models.Signal{a, b})["SPY"]
	second := Fuse([]models.Signal{b, a})["SPY"]
	if first.Strategy != second.Strategy {
		t.Fatalf("fusion depends on candidate order: %s vs %s", first.Strategy, second.Strategy)
	}
}

func TestFuseCarriesVoteTallyOntoSurvivor(t *testing.T) {
	fused := Fuse([]models.Signal{
		watchCandidate("SPY", 2, 1),
		candidate("SPY", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.8),
	})
	got := fused["SPY"]
	if got.VoteBuy != 2 || got.VoteSell != 1 {
		t.Fatalf("survivor lost the vote tally: %d/%d", got.VoteBuy, got.VoteSell)
	}
}

func TestSelectBoundsToMaxPositions(t *testing.T) {
	p := Policy{MinPositions: 1, MaxPositions: 2}
	res := p.Select(models.ClassEquities, []models.Signal{
		candidate("AAA", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.6),
		candidate("BBB", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.9),
		candidate("CCC", strategy.StrategyMomentumBreakout, models.DirectionSell, 0.8),
		candidate("DDD", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.7),
	}, testNow)
	if len(res.Signals) != 2 {
		t.Fatalf("selected %d, want max 2", len(res.Signals))
	}
	if _, ok := res.Signals["BBB"]; !ok {
		t.Fatalf("highest-confidence signal missing")
	}
	if _, ok := res.Signals["CCC"]; !ok {
		t.Fatalf("second-ranked signal missing")
	}
}

func TestSelectConfidenceTieBreaksOnSymbol(t *testing.T) {
	p := Policy{MinPositions: 1, MaxPositions: 1}
	res := p.Select(models.ClassEquities, []models.Signal{
		candidate("ZZZ", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.8),
		candidate("AAA", strategy.StrategyMeanReversion, models.DirectionSell, 0.8),
	}, testNow)
	if _, ok := res.Signals["AAA"]; !ok {
		t.Fatalf("equal confidence must tie-break on symbol, got %v", res.Signals)
	}
}

func TestForcedEntryFillsMinimum(t *testing.T) {
	p := Policy{MinPositions: 3, MaxPositions: 8}
	res := p.Select(models.ClassEquities, []models.Signal{
		watchCandidate("AAA", 0, 0),
		watchCandidate("BBB", 2, 0),
		watchCandidate("CCC", 0, 1),
		watchCandidate("DDD", 1, 0),
		watchCandidate("EEE", 0, 0),
	}, testNow)
	if len(res.Signals) != 3 {
		t.Fatalf("selected %d, want exactly MinPositions=3", len(res.Signals))
	}
	for sym, s := range res.Signals {
		if !s.Forced() {
			t.Fatalf("%s not tagged forced entry: %s", sym, s.Strategy)
		}
		if s.Confidence != ForcedConfidence {
			t.Fatalf("%s forced confidence = %v, want %v", sym, s.Confidence, ForcedConfidence)
		}
		if !s.Direction.Directional() {
			t.Fatalf("%s forced entry should be directional", sym)
		}
	}
	// ranked by raw tally: BBB (2), CCC then DDD (1 each, CCC... DDD? both
	// dominant tally 1, total 1, symbol order CCC first), so AAA/EEE stay out
	for _, sym := range []string{"BBB", "CCC", "DDD"} {
		if _, ok := res.Signals[sym]; !ok {
			t.Fatalf("expected %s among forced entries, got %v", sym, res.Signals)
		}
	}
	if res.Signals["CCC"].Direction != models.DirectionSell {
		t.Fatalf("forced direction should follow the dominant vote side")
	}
}

func TestForcedEntryBoundedByUniverse(t *testing.T) {
	p := Policy{MinPositions: 5, MaxPositions: 8}
	res := p.Select(models.ClassEquities, []models.Signal{
		watchCandidate("AAA", 0, 0),
		watchCandidate("BBB", 0, 0),
	}, testNow)
	if len(res.Signals) != 2 {
		t.Fatalf("selection cannot exceed the universe: got %d, want 2", len(res.Signals))
	}
}

func TestNoForcedEntryWhenMinimumMet(t *testing.T) {
	p := Policy{MinPositions: 1, MaxPositions: 8}
	res := p.Select(models.ClassEquities, []models.Signal{
		candidate("AAA", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.8),
		watchCandidate("BBB", 1, 0),
	}, testNow)
	if len(res.Signals) != 1 {
		t.Fatalf("got %d signals, want just the directional one", len(res.Signals))
	}
	if res.Signals["AAA"].Forced() {
		t.Fatalf("directional signal must not be rewritten as forced")
	}
}

func TestForcedConfidenceBelowEveryDirectional(t *testing.T) {
	// lowest directional confidence a module can emit is 3 of 7 votes
	if ForcedConfidence >= 3.0/7.0 {
		t.Fatalf("forced confidence %v must sit below the voting floor %v", ForcedConfidence, 3.0/7.0)
	}
}

func TestSelectEmptyUniverse(t *testing.T) {
	p := Policy{MinPositions: 2, MaxPositions: 8}
	res := p.Select(models.ClassEquities, nil, testNow)
	if len(res.Signals) != 0 {
		t.Fatalf("empty universe should select nothing, got %d", len(res.Signals))
	}
}

func TestSelectIdempotent(t *testing.T) {
	p := Policy{MinPositions: 3, MaxPositions: 8}
	first := p.Select(models.ClassEquities, []models.Signal{
		candidate("AAA", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.8),
		watchCandidate("BBB", 2, 0),
		watchCandidate("CCC", 0, 1),
		watchCandidate("DDD", 0, 0),
	}, testNow)

	rerun := make([]models.Signal, 0, len(first.Signals))
	for _, s := range first.Signals {
		rerun = append(rerun, s)
	}
	second := p.Select(models.ClassEquities, rerun, testNow)
	if len(second.Signals) != len(first.Signals) {
		t.Fatalf("rerun changed selection size: %d vs %d", len(second.Signals), len(first.Signals))
	}
	for sym, a := range first.Signals {
		b, ok := second.Signals[sym]
		if !ok {
			t.Fatalf("rerun dropped %s", sym)
		}
		if a.Strategy != b.Strategy || a.Direction != b.Direction || a.Confidence != b.Confidence {
			t.Fatalf("rerun changed %s: %+v vs %+v", sym, a, b)
		}
	}
}

func TestRankOrdering(t *testing.T) {
	ranked := Rank([]models.Signal{
		candidate("BBB", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.5),
		candidate("AAA", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.9),
		candidate("CCC", strategy.StrategyMomentumBreakout, models.DirectionBuy, 0.9),
	})
	want := []string{"AAA", "CCC", "BBB"}
	for i, sym := range want {
		if ranked[i].Instrument != sym {
			t.Fatalf("rank[%d] = %s, want %s", i, ranked[i].Instrument, sym)
		}
	}
}
