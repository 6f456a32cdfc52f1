package models

import (
	"sort"
	"time"
)

// Direction is the recommendation carried by a signal.
type Direction string

const (
	DirectionBuy   Direction = "BUY"
	DirectionSell  Direction = "SELL"
	DirectionWatch Direction = "WATCH"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell || d == DirectionWatch
}

// Directional reports whether d implies an executable position.
func (d Direction) Directional() bool {
	return d == DirectionBuy || d == DirectionSell
}

// StrategyForcedEntry tags fallback selections made only to satisfy the
// minimum position count. Never emitted by a strategy module directly.
const StrategyForcedEntry = "forced_entry"

// Signal is one recommendation for one instrument. WATCH signals carry no
// executable stop/target obligation; StopLoss and Target stay zero for them.
type Signal struct {
	Instrument string     `json:"instrument"`
	AssetClass AssetClass `json:"asset_class"`
	Strategy   string     `json:"strategy"`
	Direction  Direction  `json:"direction"`
	Strength   int        `json:"strength"`
	Confidence float64    `json:"confidence"`
	Price      float64    `json:"price"`
	StopLoss   float64    `json:"stop_loss,omitempty"`
	Target     float64    `json:"target,omitempty"`
	Rationale  string     `json:"rationale"`
	Timestamp  time.Time  `json:"timestamp"`

	// Fusion and fallback metadata populated by the voting strategy. The
	// raw tally lets selection rank below-threshold instruments for forced
	// entry; neither field is part of the reportable payload.
	VoteBuy  int     `json:"-"`
	VoteSell int     `json:"-"`
	ATRValue float64 `json:"-"`
}

// Forced reports whether the signal is a forced-entry fallback.
func (s Signal) Forced() bool { return s.Strategy == StrategyForcedEntry }

// SelectionResult is the bounded instrument->signal mapping that survives an
// orchestration pass. At most one signal per instrument; the fusion that
// enforces this lives in the selection package and is deterministic.
type SelectionResult struct {
	AssetClass  AssetClass
	Signals     map[string]Signal
	GeneratedAt time.Time
}

// Ordered returns the signals ranked by confidence descending with a stable
// symbol tie-break, the same order selection used when bounding.
func (r SelectionResult) Ordered() []Signal {
	out := make([]Signal, 0, len(r.Signals))
	for _, s := range r.Signals {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Instrument < out[j].Instrument
	})
	return out
}

// AnalysisStatus records the outcome of one asset-class orchestration.
type AnalysisStatus string

const (
	StatusNotRun    AnalysisStatus = "not_run"
	StatusSuccess   AnalysisStatus = "success"
	StatusNoSignals AnalysisStatus = "no_signals"
	StatusError     AnalysisStatus = "error"
)

// ClassBreakdown counts signals by direction for one asset class.
type ClassBreakdown struct {
	Count int `json:"count"`
	Buy   int `json:"buy"`
	Sell  int `json:"sell"`
	Watch int `json:"watch"`
}

// TradingSummary aggregates every class's selection for the dashboard.
type TradingSummary struct {
	TotalSignals     int                           `json:"total_signals"`
	BuySignals       int                           `json:"buy_signals"`
	SellSignals      int                           `json:"sell_signals"`
	WatchSignals     int                           `json:"watch_signals"`
	Breakdown        map[AssetClass]ClassBreakdown `json:"asset_class_breakdown"`
	StrongestSignals []Signal                      `json:"strongest_signals"`
}

// ValidationIssue flags a signal missing a mandatory field.
type ValidationIssue struct {
	AssetClass AssetClass `json:"asset_class"`
	Instrument string     `json:"instrument"`
	Problem    string     `json:"problem"`
}

// ValidationReport confirms every selected signal exposes direction,
// confidence and instrument identity.
type ValidationReport struct {
	Checked int               `json:"checked"`
	Issues  []ValidationIssue `json:"issues,omitempty"`
}

// OK reports whether validation found no issues.
func (v ValidationReport) OK() bool { return len(v.Issues) == 0 }
