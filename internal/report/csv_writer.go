// Package report renders selection results as timestamped CSV artifacts,
// one file per asset class and run.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/pkg/logger"
)

var header = []string{
	"generated_at", "asset_class", "instrument", "strategy", "direction",
	"strength", "confidence", "price", "stop_loss", "target", "rationale",
}

// CSVWriter implements repository.ReportSink on the local filesystem.
type CSVWriter struct {
	dir string
	log *logger.Logger
}

func NewCSVWriter(dir string, log *logger.Logger) *CSVWriter {
	return &CSVWriter{dir: dir, log: log}
}

// WriteReport writes <class>_signals_<timestamp>.csv. Signals appear in
// selection rank order.
func (w *CSVWriter) WriteReport(_ context.Context, result models.SelectionResult) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}
	name := fmt.Sprintf("%s_signals_%s.csv", result.AssetClass, result.GeneratedAt.UTC().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, sig := range result.Ordered() {
		row := []string{
			result.GeneratedAt.UTC().Format(time.RFC3339),
			string(sig.AssetClass),
			sig.Instrument,
			sig.Strategy,
			string(sig.Direction),
			strconv.Itoa(sig.Strength),
			strconv.FormatFloat(sig.Confidence, 'f', 4, 64),
			strconv.FormatFloat(sig.Price, 'f', 4, 64),
			strconv.FormatFloat(sig.StopLoss, 'f', 4, 64),
			strconv.FormatFloat(sig.Target, 'f', 4, 64),
			sig.Rationale,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", sig.Instrument, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	w.log.Info("report written",
		logger.String("asset_class", string(result.AssetClass)),
		logger.String("path", path),
		logger.Int("signals", len(result.Signals)))
	return nil
}

// Fanout forwards one selection to several sinks, collecting the first error
// after every sink has seen the result.
type Fanout []repository.ReportSink

func (f Fanout) WriteReport(ctx context.Context, result models.SelectionResult) error {
	var firstErr error
	for _, sink := range f {
		if err := sink.WriteReport(ctx, result); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ repository.ReportSink = (*CSVWriter)(nil)
	_ repository.ReportSink = (Fanout)(nil)
)
