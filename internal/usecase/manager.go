package usecase

import (
	"context"
	"fmt"
	"sync"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/selection"
	"TechScreen/pkg/logger"
)

// topSignalCount is how many signals the summary surfaces as strongest.
const topSignalCount = 5

// Manager owns one orchestrator per asset class, runs them concurrently and
// aggregates their selections. A class failing its run never blocks the
// others; its status stays queryable as error.
type Manager struct {
	orchestrators map[models.AssetClass]*Orchestrator
	store         repository.SignalStore
	report        repository.ReportSink
	log           *logger.Logger
}

// NewManager wires the per-class orchestrators. store and report are
// optional; nil disables persistence or report writing.
func NewManager(orchs []*Orchestrator, store repository.SignalStore, report repository.ReportSink, log *logger.Logger) *Manager {
	m := &Manager{
		orchestrators: make(map[models.AssetClass]*Orchestrator, len(orchs)),
		store:         store,
		report:        report,
		log:           log,
	}
	for _, o := range orchs {
		m.orchestrators[o.Class()] = o
	}
	return m
}

// RunAll executes every class's pipeline concurrently and returns the
// selections of the classes that finished. Per-class failures are logged and
// reflected in Statuses, not returned.
func (m *Manager) RunAll(ctx context.Context) map[models.AssetClass]models.SelectionResult {
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[models.AssetClass]models.SelectionResult, len(m.orchestrators))

	for class, orch := range m.orchestrators {
		wg.Add(1)
		go func(class models.AssetClass, orch *Orchestrator) {
			defer wg.Done()
			res, err := orch.Run(ctx)
			if err != nil {
				return
			}
			mu.Lock()
			results[class] = res
			mu.Unlock()
		}(class, orch)
	}
	wg.Wait()

	m.persist(ctx, results)
	return results
}

func (m *Manager) persist(ctx context.Context, results map[models.AssetClass]models.SelectionResult) {
	for _, class := range models.AllAssetClasses() {
		res, ok := results[class]
		if !ok || len(res.Signals) == 0 {
			continue
		}
		if m.store != nil {
			if err := m.store.SaveSignals(ctx, res); err != nil {
				m.log.Error("persisting signals failed",
					logger.String("asset_class", string(class)),
					logger.Error(err))
			}
		}
		if m.report != nil {
			if err := m.report.WriteReport(ctx, res); err != nil {
				m.log.Error("writing report failed",
					logger.String("asset_class", string(class)),
					logger.Error(err))
			}
		}
	}
}

// Orchestrator returns the orchestrator for one class.
func (m *Manager) Orchestrator(class models.AssetClass) (*Orchestrator, error) {
	o, ok := m.orchestrators[class]
	if !ok {
		return nil, fmt.Errorf("no orchestrator for asset class %q", class)
	}
	return o, nil
}

// Statuses reports each class's coarse analysis status.
func (m *Manager) Statuses() map[models.AssetClass]models.AnalysisStatus {
	out := make(map[models.AssetClass]models.AnalysisStatus, len(m.orchestrators))
	for class, o := range m.orchestrators {
		out[class] = o.Status()
	}
	return out
}

// Summary aggregates the retained selections into the portfolio view.
func (m *Manager) Summary() models.TradingSummary {
	summary := models.TradingSummary{
		Breakdown: make(map[models.AssetClass]models.ClassBreakdown, len(m.orchestrators)),
	}
	var all []models.Signal
	for class, o := range m.orchestrators {
		res := o.Result()
		breakdown := models.ClassBreakdown{Count: len(res.Signals)}
		for _, s := range res.Signals {
			switch s.Direction {
			case models.DirectionBuy:
				breakdown.Buy++
			case models.DirectionSell:
				breakdown.Sell++
			default:
				breakdown.Watch++
			}
			all = append(all, s)
		}
		summary.Breakdown[class] = breakdown
		summary.TotalSignals += breakdown.Count
		summary.BuySignals += breakdown.Buy
		summary.SellSignals += breakdown.Sell
		summary.WatchSignals += breakdown.Watch
	}
	ranked := selection.Rank(all)
	if len(ranked) > topSignalCount {
		ranked = ranked[:topSignalCount]
	}
	summary.StrongestSignals = ranked
	return summary
}

// Top returns the n highest-confidence signals across every class.
func (m *Manager) Top(n int) []models.Signal {
	var all []models.Signal
	for _, o := range m.orchestrators {
		for _, s := range o.Result().Signals {
			all = append(all, s)
		}
	}
	ranked := selection.Rank(all)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Validate checks every retained signal for the mandatory fields.
func (m *Manager) Validate() models.ValidationReport {
	var report models.ValidationReport
	for class, o := range m.orchestrators {
		for sym, s := range o.Result().Signals {
			report.Checked++
			issue := func(problem string) {
				report.Issues = append(report.Issues, models.ValidationIssue{
					AssetClass: class,
					Instrument: sym,
					Problem:    problem,
				})
			}
			if s.Instrument == "" {
				issue("missing instrument")
			}
			if !s.Direction.Valid() {
				issue("invalid direction")
			}
			if s.Confidence <= 0 || s.Confidence > 1 {
				issue("confidence out of range")
			}
			if s.Price <= 0 {
				issue("missing price")
			}
			if s.Timestamp.IsZero() {
				issue("missing timestamp")
			}
		}
	}
	return report
}
