package repository

import (
	"context"
	"errors"
	"time"

	"TechScreen/internal/domain/models"
)

// Domain absences. These are not failures of the engine; callers map them to
// skip-and-log or status NoSignals.
var (
	ErrInsufficientHistory = errors.New("insufficient price history")
	ErrEmptyUniverse       = errors.New("instrument universe is empty")
	ErrDataUnavailable     = errors.New("price data unavailable")
)

// BarSource retrieves daily price history for one instrument. Implementations
// own their rate limiting; a per-symbol failure returns ErrDataUnavailable
// (possibly wrapped) and must not poison the batch.
type BarSource interface {
	DailyBars(ctx context.Context, symbol string, lookbackDays int) (models.History, error)
}

// UniverseProvider yields the instrument list for an asset class, falling
// back to built-in defaults when no screened list exists.
type UniverseProvider interface {
	Universe(class models.AssetClass) ([]string, error)
}

// SignalStore persists selected signals for later querying.
type SignalStore interface {
	SaveSignals(ctx context.Context, result models.SelectionResult) error
}

// SignalHistory reads persisted signals back, newest first.
type SignalHistory interface {
	RecentSignals(ctx context.Context, class models.AssetClass, limit int) ([]models.Signal, error)
}

// ReportSink receives the per-class selection artifact (CSV file, message
// topic, or both).
type ReportSink interface {
	WriteReport(ctx context.Context, result models.SelectionResult) error
}

// Metrics abstracts the engine's instrumentation.
type Metrics interface {
	RecordSignal(class models.AssetClass, strategy string, direction models.Direction)
	RecordInstrumentSkipped(class models.AssetClass, reason string)
	RecordFetchError(class models.AssetClass)
	RecordPhaseDuration(class models.AssetClass, phase string, d time.Duration)
	RecordLastPrice(symbol string, price float64)
}
