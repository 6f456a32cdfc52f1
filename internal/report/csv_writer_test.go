package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/pkg/logger"
)

func TestCSVWriterWritesRankedRows(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, logger.Nop())

	now := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	result := models.SelectionResult{
		AssetClass: models.ClassEquities,
		Signals: map[string]models.Signal{
			"SPY": {Instrument: "SPY", AssetClass: models.ClassEquities, Strategy: "momentum_breakout",
				Direction: models.DirectionBuy, Strength: 3, Confidence: 0.75, Price: 512.10},
			"QQQ": {Instrument: "QQQ", AssetClass: models.ClassEquities, Strategy: "seven_indicator_voting",
				Direction: models.DirectionBuy, Strength: 4, Confidence: 0.57, Price: 448.00},
		},
		GeneratedAt: now,
	}
	if err := w.WriteReport(context.Background(), result); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := filepath.Join(dir, "equities_signals_20250602_210000.csv")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected report at %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][2] != "SPY" || rows[2][2] != "QQQ" {
		t.Fatalf("rows not in confidence order: %v / %v", rows[1], rows[2])
	}
	if rows[1][4] != "BUY" {
		t.Fatalf("direction column = %q", rows[1][4])
	}
}

type failSink struct{ calls int }

func (s *failSink) WriteReport(context.Context, models.SelectionResult) error {
	s.calls++
	return os.ErrPermission
}

type okSink struct{ calls int }

func (s *okSink) WriteReport(context.Context, models.SelectionResult) error {
	s.calls++
	return nil
}

func TestFanoutReachesEverySink(t *testing.T) {
	bad := &failSink{}
	good := &okSink{}
	f := Fanout{bad, good}
	err := f.WriteReport(context.Background(), models.SelectionResult{AssetClass: models.ClassBonds})
	if err == nil {
		t.Fatalf("expected first sink error to surface")
	}
	if bad.calls != 1 || good.calls != 1 {
		t.Fatalf("fanout skipped a sink: %d/%d", bad.calls, good.calls)
	}
}
