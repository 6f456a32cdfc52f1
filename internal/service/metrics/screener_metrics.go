// Package metrics adapts the Prometheus recorder to the domain Metrics
// interface so the orchestration layer never imports the metrics backend.
package metrics

import (
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/pkg/metrics"
)

type Adapter struct {
	rec *metrics.Recorder
}

func NewAdapter(rec *metrics.Recorder) *Adapter {
	return &Adapter{rec: rec}
}

func (a *Adapter) RecordSignal(class models.AssetClass, strategy string, direction models.Direction) {
	a.rec.RecordSignal(string(class), strategy, string(direction))
}

func (a *Adapter) RecordInstrumentSkipped(class models.AssetClass, reason string) {
	a.rec.RecordInstrumentSkipped(string(class), reason)
}

func (a *Adapter) RecordFetchError(class models.AssetClass) {
	a.rec.RecordFetchError(string(class))
}

func (a *Adapter) RecordPhaseDuration(class models.AssetClass, phase string, d time.Duration) {
	a.rec.RecordPhaseDuration(string(class), phase, d.Seconds())
}

func (a *Adapter) RecordLastPrice(symbol string, price float64) {
	a.rec.RecordLastPrice(symbol, price)
}

// Nop discards all measurements; used in tests and when metrics are disabled.
type Nop struct{}

func (Nop) RecordSignal(models.AssetClass, string, models.Direction)     {}
func (Nop) RecordInstrumentSkipped(models.AssetClass, string)            {}
func (Nop) RecordFetchError(models.AssetClass)                           {}
func (Nop) RecordPhaseDuration(models.AssetClass, string, time.Duration) {}
func (Nop) RecordLastPrice(string, float64)                              {}
