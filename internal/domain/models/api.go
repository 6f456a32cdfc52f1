package models

import "time"

// ClassSignalsRequest selects one asset class's retained signal table.
type ClassSignalsRequest struct {
	Class string `param:"class" validate:"required,oneof=equities bonds commodities golds"`
}

// TopSignalsRequest bounds the cross-class confidence ranking.
type TopSignalsRequest struct {
	N int `query:"n" default:"5" validate:"gte=1,lte=100"`
}

// HistoryRequest pages through persisted signals for one asset class.
type HistoryRequest struct {
	Class string `param:"class" validate:"required,oneof=equities bonds commodities golds"`
	Limit int    `query:"limit" default:"20" validate:"gte=1,lte=500"`
}

// ClassSignalsResponse is the per-class query payload. It carries the full
// retained table, so WATCH entries the selection did not promote are visible
// alongside the chosen positions.
type ClassSignalsResponse struct {
	AssetClass  AssetClass     `json:"asset_class"`
	Status      AnalysisStatus `json:"status"`
	Phase       string         `json:"phase"`
	GeneratedAt time.Time      `json:"generated_at,omitempty"`
	Signals     []Signal       `json:"signals"`
	Excluded    []string       `json:"excluded,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// RunResponse summarizes one triggered screening run.
type RunResponse struct {
	Statuses map[AssetClass]AnalysisStatus `json:"statuses"`
	Summary  TradingSummary                `json:"summary"`
}
