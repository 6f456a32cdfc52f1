package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/selection"
	metricsvc "TechScreen/internal/service/metrics"
	"TechScreen/internal/strategy"
	"TechScreen/pkg/logger"
)

var testNow = time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)

type fakeSource struct {
	histories map[string]models.History
	failing   map[string]error
}

func (f *fakeSource) DailyBars(_ context.Context, symbol string, _ int) (models.History, error) {
	if err, ok := f.failing[symbol]; ok {
		return models.History{}, err
	}
	h, ok := f.histories[symbol]
	if !ok {
		return models.History{}, fmt.Errorf("%s: %w", symbol, repository.ErrDataUnavailable)
	}
	return h, nil
}

func bars(sym string, closes []float64) models.History {
	out := models.History{Symbol: sym, Bars: make([]models.PriceBar, len(closes))}
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out.Bars[i] = models.PriceBar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1e6,
		}
	}
	return out
}

func rising(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func flat(n int, v float64) []float64 {
	return rising(n, v, 0)
}

func newTestOrchestrator(universe []string, source repository.BarSource, policy selection.Policy) *Orchestrator {
	cfg := OrchestratorConfig{
		Class:        models.ClassEquities,
		Universe:     universe,
		LookbackDays: 90,
		Policy:       policy,
		Params:       strategy.Params{Now: func() time.Time { return testNow }},
	}
	return NewOrchestrator(cfg, source, metricsvc.Nop{}, logger.Nop())
}

func TestOrchestratorSuccess(t *testing.T) {
	source := &fakeSource{histories: map[string]models.History{
		"SPY": bars("SPY", rising(80, 100, 1)),
		"QQQ": bars("QQQ", rising(80, 300, 2)),
	}}
	o := newTestOrchestrator([]string{"SPY", "QQQ"}, source, selection.Policy{MinPositions: 1, MaxPositions: 8})

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if o.Phase() != PhaseSuccess {
		t.Fatalf("phase = %s, want success", o.Phase())
	}
	if o.Status() != models.StatusSuccess {
		t.Fatalf("status = %s", o.Status())
	}
	if len(res.Signals) == 0 {
		t.Fatalf("expected signals on trending data")
	}
	for sym, s := range res.Signals {
		if !s.Direction.Directional() {
			t.Fatalf("%s selected as %s on a strong trend", sym, s.Direction)
		}
	}
	if res.GeneratedAt != testNow {
		t.Fatalf("result timestamp = %v, want fixed clock", res.GeneratedAt)
	}
}

func TestOrchestratorEmptyUniverse(t *testing.T) {
	o := newTestOrchestrator(nil, &fakeSource{}, selection.Policy{MinPositions: 1, MaxPositions: 8})
	_, err := o.Run(context.Background())
	if !errors.Is(err, repository.ErrEmptyUniverse) {
		t.Fatalf("expected ErrEmptyUniverse, got %v", err)
	}
	if o.Phase() != PhaseError || o.Status() != models.StatusError {
		t.Fatalf("phase = %s, want error", o.Phase())
	}
	if o.Err() == nil {
		t.Fatalf("terminal error not retained")
	}
}

func TestOrchestratorAllFetchesFail(t *testing.T) {
	source := &fakeSource{failing: map[string]error{
		"SPY": errors.New("http 500"),
		"QQQ": errors.New("http 500"),
	}}
	o := newTestOrchestrator([]string{"SPY", "QQQ"}, source, selection.Policy{MinPositions: 1, MaxPositions: 8})
	_, err := o.Run(context.Background())
	if !errors.Is(err, repository.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if o.Phase() != PhaseError {
		t.Fatalf("phase = %s, want error", o.Phase())
	}
}

func TestOrchestratorSkipsFailingInstrument(t *testing.T) {
	source := &fakeSource{
		histories: map[string]models.History{"SPY": bars("SPY", rising(80, 100, 1))},
		failing:   map[string]error{"QQQ": errors.New("http 500")},
	}
	o := newTestOrchestrator([]string{"SPY", "QQQ"}, source, selection.Policy{MinPositions: 1, MaxPositions: 8})
	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("one failing fetch must not poison the run: %v", err)
	}
	if _, ok := res.Signals["SPY"]; !ok {
		t.Fatalf("surviving instrument missing from selection")
	}
	if _, ok := res.Signals["QQQ"]; ok {
		t.Fatalf("failed instrument must not be selected")
	}
}

func TestOrchestratorInsufficientHistoryNoSignals(t *testing.T) {
	source := &fakeSource{histories: map[string]models.History{
		"SPY": bars("SPY", rising(10, 100, 1)),
	}}
	o := newTestOrchestrator([]string{"SPY"}, source, selection.Policy{MinPositions: 1, MaxPositions: 8})
	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("short history is a domain absence, not an error: %v", err)
	}
	if o.Phase() != PhaseNoSignals || o.Status() != models.StatusNoSignals {
		t.Fatalf("phase = %s, want no_signals", o.Phase())
	}
	if len(res.Signals) != 0 {
		t.Fatalf("expected empty selection")
	}
}

func TestOrchestratorForcedEntryFillsMinimum(t *testing.T) {
	histories := make(map[string]models.History)
	universe := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	for _, sym := range universe {
		histories[sym] = bars(sym, flat(60, 100))
	}
	o := newTestOrchestrator(universe, &fakeSource{histories: histories}, selection.Policy{MinPositions: 3, MaxPositions: 8})

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Signals) != 3 {
		t.Fatalf("selected %d, want MinPositions=3", len(res.Signals))
	}
	for sym, s := range res.Signals {
		if !s.Forced() {
			t.Fatalf("%s should be a forced entry, got strategy %s", sym, s.Strategy)
		}
		if s.Confidence != selection.ForcedConfidence {
			t.Fatalf("%s confidence = %v", sym, s.Confidence)
		}
	}
	if o.Phase() != PhaseSuccess {
		t.Fatalf("phase = %s, want success", o.Phase())
	}
}

func TestOrchestratorRetainsFusedTable(t *testing.T) {
	source := &fakeSource{histories: map[string]models.History{
		"SPY": bars("SPY", flat(60, 100)),
	}}
	o := newTestOrchestrator([]string{"SPY"}, source, selection.Policy{MinPositions: 0, MaxPositions: 8})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	table := o.Signals()
	s, ok := table["SPY"]
	if !ok {
		t.Fatalf("fused table missing instrument")
	}
	if s.Direction != models.DirectionWatch {
		t.Fatalf("flat instrument should be WATCH in the fused table, got %s", s.Direction)
	}
}

func TestOrchestratorRerunResetsState(t *testing.T) {
	good := &fakeSource{histories: map[string]models.History{
		"SPY": bars("SPY", rising(80, 100, 1)),
	}}
	o := newTestOrchestrator([]string{"SPY"}, good, selection.Policy{MinPositions: 1, MaxPositions: 8})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if o.Phase() != PhaseSuccess {
		t.Fatalf("first run phase = %s", o.Phase())
	}

	// same orchestrator, now the feed dies
	o.source = &fakeSource{failing: map[string]error{"SPY": errors.New("down")}}
	if _, err := o.Run(context.Background()); err == nil {
		t.Fatalf("expected failure on dead feed")
	}
	if o.Phase() != PhaseError {
		t.Fatalf("phase after failed rerun = %s, want error", o.Phase())
	}
	if len(o.Result().Signals) != 0 {
		t.Fatalf("stale selection survived a failed rerun")
	}
}

func TestOrchestratorContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &fakeSource{histories: map[string]models.History{
		"SPY": bars("SPY", rising(80, 100, 1)),
	}}
	o := newTestOrchestrator([]string{"SPY"}, source, selection.Policy{MinPositions: 1, MaxPositions: 8})
	if _, err := o.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if o.Phase() != PhaseError {
		t.Fatalf("phase = %s, want error", o.Phase())
	}
}
