package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/selection"
	metricsvc "TechScreen/internal/service/metrics"
	"TechScreen/internal/strategy"
	"TechScreen/pkg/logger"
)

type captureSink struct {
	mu      sync.Mutex
	saved   []models.SelectionResult
	reports []models.SelectionResult
}

func (c *captureSink) SaveSignals(_ context.Context, res models.SelectionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, res)
	return nil
}

func (c *captureSink) WriteReport(_ context.Context, res models.SelectionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, res)
	return nil
}

func newTestManager(sink *captureSink) *Manager {
	trending := map[models.AssetClass][]string{
		models.ClassEquities:    {"SPY", "QQQ"},
		models.ClassBonds:       {"TLT", "SHY"},
		models.ClassCommodities: {"USO", "DBC"},
		models.ClassGolds:       {"GLD"},
	}
	var orchs []*Orchestrator
	for class, universe := range trending {
		histories := make(map[string]models.History, len(universe))
		for i, sym := range universe {
			histories[sym] = bars(sym, rising(80, 100+float64(i)*50, 1))
		}
		orchs = append(orchs, NewOrchestrator(OrchestratorConfig{
			Class:        class,
			Universe:     universe,
			LookbackDays: 90,
			Policy:       selection.Policy{MinPositions: 1, MaxPositions: 8},
			Params:       strategy.Params{Now: func() time.Time { return testNow }},
		}, &fakeSource{histories: histories}, metricsvc.Nop{}, logger.Nop()))
	}
	if sink == nil {
		return NewManager(orchs, nil, nil, logger.Nop())
	}
	return NewManager(orchs, sink, sink, logger.Nop())
}

func TestManagerRunAllEveryClass(t *testing.T) {
	m := newTestManager(nil)
	results := m.RunAll(context.Background())
	if len(results) != len(models.AllAssetClasses()) {
		t.Fatalf("got %d class results, want %d", len(results), len(models.AllAssetClasses()))
	}
	for class, status := range m.Statuses() {
		if status != models.StatusSuccess {
			t.Fatalf("%s status = %s, want success", class, status)
		}
	}
}

func TestManagerSummaryCounts(t *testing.T) {
	m := newTestManager(nil)
	m.RunAll(context.Background())
	summary := m.Summary()
	if summary.TotalSignals == 0 {
		t.Fatalf("summary has no signals")
	}
	if summary.TotalSignals != summary.BuySignals+summary.SellSignals+summary.WatchSignals {
		t.Fatalf("direction counts do not add up: %+v", summary)
	}
	var fromBreakdown int
	for _, b := range summary.Breakdown {
		fromBreakdown += b.Count
	}
	if fromBreakdown != summary.TotalSignals {
		t.Fatalf("breakdown total %d != %d", fromBreakdown, summary.TotalSignals)
	}
	if len(summary.StrongestSignals) == 0 || len(summary.StrongestSignals) > topSignalCount {
		t.Fatalf("strongest signals count = %d", len(summary.StrongestSignals))
	}
	for i := 1; i < len(summary.StrongestSignals); i++ {
		if summary.StrongestSignals[i].Confidence > summary.StrongestSignals[i-1].Confidence {
			t.Fatalf("strongest signals not sorted by confidence")
		}
	}
}

func TestManagerTopBounded(t *testing.T) {
	m := newTestManager(nil)
	m.RunAll(context.Background())
	top := m.Top(2)
	if len(top) != 2 {
		t.Fatalf("top(2) returned %d", len(top))
	}
	if top[1].Confidence > top[0].Confidence {
		t.Fatalf("top list not ranked")
	}
}

func TestManagerValidateCleanRun(t *testing.T) {
	m := newTestManager(nil)
	m.RunAll(context.Background())
	report := m.Validate()
	if report.Checked == 0 {
		t.Fatalf("validation checked nothing")
	}
	if !report.OK() {
		t.Fatalf("unexpected validation issues: %+v", report.Issues)
	}
}

func TestManagerPersistsResults(t *testing.T) {
	sink := &captureSink{}
	m := newTestManager(sink)
	results := m.RunAll(context.Background())

	var nonEmpty int
	for _, res := range results {
		if len(res.Signals) > 0 {
			nonEmpty++
		}
	}
	if len(sink.saved) != nonEmpty {
		t.Fatalf("store received %d results, want %d", len(sink.saved), nonEmpty)
	}
	if len(sink.reports) != nonEmpty {
		t.Fatalf("report sink received %d results, want %d", len(sink.reports), nonEmpty)
	}
}

func TestManagerIsolatesClassFailure(t *testing.T) {
	m := newTestManager(nil)
	// break one class: empty universe fails during load
	broken, err := m.Orchestrator(models.ClassGolds)
	if err != nil {
		t.Fatalf("orchestrator lookup: %v", err)
	}
	broken.cfg.Universe = nil

	results := m.RunAll(context.Background())
	if _, ok := results[models.ClassGolds]; ok {
		t.Fatalf("failed class should not report a result")
	}
	statuses := m.Statuses()
	if statuses[models.ClassGolds] != models.StatusError {
		t.Fatalf("gold status = %s, want error", statuses[models.ClassGolds])
	}
	for _, class := range []models.AssetClass{models.ClassEquities, models.ClassBonds, models.ClassCommodities} {
		if statuses[class] != models.StatusSuccess {
			t.Fatalf("%s status = %s, want success", class, statuses[class])
		}
	}
}

func TestManagerUnknownClass(t *testing.T) {
	m := newTestManager(nil)
	if _, err := m.Orchestrator(models.AssetClass("crypto")); err == nil {
		t.Fatalf("expected error for unknown class")
	}
}
