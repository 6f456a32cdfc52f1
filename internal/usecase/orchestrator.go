package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/selection"
	"TechScreen/internal/strategy"
	"TechScreen/pkg/logger"
)

// Phase is the orchestrator's position in its analysis pipeline. Transitions
// only move forward; PhaseError is reachable from anywhere.
type Phase string

const (
	PhaseNotRun             Phase = "not_run"
	PhaseDataLoaded         Phase = "data_loaded"
	PhaseIndicatorsComputed Phase = "indicators_computed"
	PhaseSignalsGenerated   Phase = "signals_generated"
	PhaseSelected           Phase = "selected"
	PhaseSuccess            Phase = "success"
	PhaseNoSignals          Phase = "no_signals"
	PhaseError              Phase = "error"
)

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseNoSignals || p == PhaseError
}

// OrchestratorConfig fixes one asset class's universe and bounds.
type OrchestratorConfig struct {
	Class        models.AssetClass
	Universe     []string
	LookbackDays int
	Policy       selection.Policy
	Params       strategy.Params
}

// Orchestrator runs the full pipeline for one asset class: load bars,
// compute indicators, generate candidates, select. A fresh run resets all
// prior state; accessors are safe to call concurrently with Run.
type Orchestrator struct {
	cfg     OrchestratorConfig
	module  strategy.Module
	source  repository.BarSource
	metrics repository.Metrics
	log     *logger.Logger

	mu         sync.RWMutex
	phase      Phase
	excluded   []string
	candidates []models.Signal
	fused      map[string]models.Signal
	result     models.SelectionResult
	runErr     error
}

func NewOrchestrator(cfg OrchestratorConfig, source repository.BarSource, metrics repository.Metrics, log *logger.Logger) *Orchestrator {
	if cfg.Params.Now == nil {
		cfg.Params.Now = time.Now
	}
	return &Orchestrator{
		cfg:     cfg,
		module:  strategy.ForClass(cfg.Class, cfg.Params),
		source:  source,
		metrics: metrics,
		log:     log,
		phase:   PhaseNotRun,
	}
}

// Run executes the pipeline once. The returned result is also retained for
// the query accessors. Domain-empty outcomes (no data survives, nothing
// selected) terminate as PhaseNoSignals without an error.
func (o *Orchestrator) Run(ctx context.Context) (result models.SelectionResult, err error) {
	// A panicking strategy takes down its own class only, never a sibling.
	defer func() {
		if r := recover(); r != nil {
			result, err = o.fail(fmt.Errorf("panic during %s analysis: %v", o.cfg.Class, r))
		}
	}()

	o.reset()

	histories, err := o.loadData(ctx)
	if err != nil {
		return o.fail(err)
	}
	o.setPhase(PhaseDataLoaded)

	sets := o.computeIndicators(histories)
	if len(sets) == 0 {
		o.log.Warn("no instrument survived indicator warm-up",
			logger.String("asset_class", string(o.cfg.Class)))
		return o.finish(models.SelectionResult{AssetClass: o.cfg.Class, GeneratedAt: o.cfg.Params.Now()})
	}
	o.setPhase(PhaseIndicatorsComputed)

	candidates := o.generateSignals(sets)
	o.setPhase(PhaseSignalsGenerated)

	result = o.selectSignals(candidates)
	o.setPhase(PhaseSelected)

	return o.finish(result)
}

func (o *Orchestrator) loadData(ctx context.Context) (map[string]models.History, error) {
	defer o.timePhase("load_data")()

	if len(o.cfg.Universe) == 0 {
		return nil, fmt.Errorf("%s: %w", o.cfg.Class, repository.ErrEmptyUniverse)
	}

	histories := make(map[string]models.History, len(o.cfg.Universe))
	for _, symbol := range o.cfg.Universe {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := o.source.DailyBars(ctx, symbol, o.cfg.LookbackDays)
		if err != nil {
			o.metrics.RecordFetchError(o.cfg.Class)
			o.metrics.RecordInstrumentSkipped(o.cfg.Class, "fetch_error")
			o.log.Warn("skipping instrument, fetch failed",
				logger.String("asset_class", string(o.cfg.Class)),
				logger.String("symbol", symbol),
				logger.Error(err))
			continue
		}
		histories[symbol] = h
	}
	if len(histories) == 0 {
		return nil, fmt.Errorf("%s: %w", o.cfg.Class, repository.ErrDataUnavailable)
	}
	return histories, nil
}

func (o *Orchestrator) computeIndicators(histories map[string]models.History) map[string]*strategy.IndicatorSet {
	defer o.timePhase("compute_indicators")()

	sets, excluded := strategy.ComputeAll(histories)
	for _, symbol := range excluded {
		o.metrics.RecordInstrumentSkipped(o.cfg.Class, "insufficient_history")
		o.log.Debug("excluding instrument, not enough history",
			logger.String("asset_class", string(o.cfg.Class)),
			logger.String("symbol", symbol))
	}
	o.mu.Lock()
	o.excluded = excluded
	o.mu.Unlock()
	return sets
}

func (o *Orchestrator) generateSignals(sets map[string]*strategy.IndicatorSet) []models.Signal {
	defer o.timePhase("generate_signals")()

	candidates := o.module.Candidates(sets)
	o.mu.Lock()
	o.candidates = candidates
	o.fused = selection.Fuse(candidates)
	o.mu.Unlock()
	return candidates
}

func (o *Orchestrator) selectSignals(candidates []models.Signal) models.SelectionResult {
	defer o.timePhase("select_signals")()
	return o.cfg.Policy.Select(o.cfg.Class, candidates, o.cfg.Params.Now())
}

func (o *Orchestrator) finish(result models.SelectionResult) (models.SelectionResult, error) {
	phase := PhaseSuccess
	if len(result.Signals) == 0 {
		phase = PhaseNoSignals
	}
	for _, s := range result.Signals {
		o.metrics.RecordSignal(s.AssetClass, s.Strategy, s.Direction)
		o.metrics.RecordLastPrice(s.Instrument, s.Price)
	}

	o.mu.Lock()
	o.result = result
	o.phase = phase
	o.mu.Unlock()

	o.log.Info("analysis complete",
		logger.String("asset_class", string(o.cfg.Class)),
		logger.String("status", string(phase)),
		logger.Int("signals", len(result.Signals)))
	return result, nil
}

func (o *Orchestrator) fail(err error) (models.SelectionResult, error) {
	o.mu.Lock()
	o.phase = PhaseError
	o.runErr = err
	o.mu.Unlock()

	o.log.Error("analysis failed",
		logger.String("asset_class", string(o.cfg.Class)),
		logger.Error(err))
	return models.SelectionResult{AssetClass: o.cfg.Class}, err
}

func (o *Orchestrator) reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phase = PhaseNotRun
	o.excluded = nil
	o.candidates = nil
	o.fused = nil
	o.result = models.SelectionResult{}
	o.runErr = nil
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func (o *Orchestrator) timePhase(phase string) func() {
	start := time.Now()
	return func() {
		o.metrics.RecordPhaseDuration(o.cfg.Class, phase, time.Since(start))
	}
}

// Class returns the asset class this orchestrator screens.
func (o *Orchestrator) Class() models.AssetClass { return o.cfg.Class }

// Phase returns the current pipeline phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.phase
}

// Status maps the phase onto the coarse analysis status.
func (o *Orchestrator) Status() models.AnalysisStatus {
	switch o.Phase() {
	case PhaseSuccess:
		return models.StatusSuccess
	case PhaseNoSignals:
		return models.StatusNoSignals
	case PhaseError:
		return models.StatusError
	default:
		return models.StatusNotRun
	}
}

// Err returns the terminal error, if the last run failed.
func (o *Orchestrator) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.runErr
}

// Result returns the last selection.
func (o *Orchestrator) Result() models.SelectionResult {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := models.SelectionResult{
		AssetClass:  o.result.AssetClass,
		Signals:     make(map[string]models.Signal, len(o.result.Signals)),
		GeneratedAt: o.result.GeneratedAt,
	}
	for sym, s := range o.result.Signals {
		out.Signals[sym] = s
	}
	return out
}

// Signals returns the full fused table for the class, WATCH entries
// included, keyed by instrument.
func (o *Orchestrator) Signals() map[string]models.Signal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]models.Signal, len(o.fused))
	for sym, s := range o.fused {
		out[sym] = s
	}
	return out
}

// Excluded lists instruments dropped for insufficient history in the last run.
func (o *Orchestrator) Excluded() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, len(o.excluded))
	copy(out, o.excluded)
	return out
}
