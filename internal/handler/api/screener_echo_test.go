package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/selection"
	metricsvc "TechScreen/internal/service/metrics"
	"TechScreen/internal/strategy"
	"TechScreen/internal/usecase"
	xlogger "TechScreen/pkg/logger"

	"github.com/labstack/echo/v4"
)

var testNow = time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)

type fakeSource struct {
	histories map[string]models.History
}

func (f *fakeSource) DailyBars(_ context.Context, symbol string, _ int) (models.History, error) {
	h, ok := f.histories[symbol]
	if !ok {
		return models.History{}, fmt.Errorf("%s: %w", symbol, repository.ErrDataUnavailable)
	}
	return h, nil
}

func bars(sym string, n int, start, step float64) models.History {
	out := models.History{Symbol: sym, Bars: make([]models.PriceBar, n)}
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out.Bars {
		c := start + float64(i)*step
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

type fakeHistory struct {
	signals []models.Signal
	err     error
}

func (f *fakeHistory) RecentSignals(_ context.Context, class models.AssetClass, limit int) ([]models.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Signal, 0, limit)
	for _, s := range f.signals {
		if s.AssetClass == class && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, history repository.SignalHistory) (*echo.Echo, *usecase.Manager) {
	t.Helper()
	source := &fakeSource{histories: map[string]models.History{
		"SPY": bars("SPY", 80, 100, 1),
		"QQQ": bars("QQQ", 80, 300, 2),
	}}
	orch := usecase.NewOrchestrator(usecase.OrchestratorConfig{
		Class:        models.ClassEquities,
		Universe:     []string{"SPY", "QQQ"},
		LookbackDays: 90,
		Policy:       selection.Policy{MinPositions: 1, MaxPositions: 8},
		Params:       strategy.Params{Now: func() time.Time { return testNow }},
	}, source, metricsvc.Nop{}, xlogger.Nop())
	mgr := usecase.NewManager([]*usecase.Orchestrator{orch}, nil, nil, xlogger.Nop())

	e := echo.New()
	NewScreenerEchoHandler(xlogger.Nop(), mgr, history).RegisterRoutes(e)
	return e, mgr
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, e *echo.Echo, method, target string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s: http %d", method, target, rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestClassSignalsEndpoint(t *testing.T) {
	e, mgr := newTestServer(t, nil)
	mgr.RunAll(context.Background())

	env := do(t, e, http.MethodGet, "/api/signals/equities")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var resp models.ClassSignalsResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.AssetClass != models.ClassEquities {
		t.Fatalf("asset class = %s", resp.AssetClass)
	}
	if resp.Status != models.StatusSuccess {
		t.Fatalf("analysis status = %s", resp.Status)
	}
	if len(resp.Signals) == 0 {
		t.Fatalf("expected signals for trending universe")
	}
}

func TestClassSignalsBeforeRun(t *testing.T) {
	e, _ := newTestServer(t, nil)

	env := do(t, e, http.MethodGet, "/api/signals/equities")
	var resp models.ClassSignalsResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Status != models.StatusNotRun {
		t.Fatalf("analysis status = %s, want not_run", resp.Status)
	}
	if len(resp.Signals) != 0 {
		t.Fatalf("expected empty table before a run, got %d", len(resp.Signals))
	}
}

func TestClassSignalsRejectsUnknownClass(t *testing.T) {
	e, _ := newTestServer(t, nil)

	env := do(t, e, http.MethodGet, "/api/signals/crypto")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestTopAppliesDefaultLimit(t *testing.T) {
	e, mgr := newTestServer(t, nil)
	mgr.RunAll(context.Background())

	env := do(t, e, http.MethodGet, "/api/top")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var signals []models.Signal
	if err := json.Unmarshal(env.Data, &signals); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(signals) > 5 {
		t.Fatalf("default limit not applied: %d signals", len(signals))
	}
}

func TestTopRejectsOutOfRangeLimit(t *testing.T) {
	e, _ := newTestServer(t, nil)

	env := do(t, e, http.MethodGet, "/api/top?n=500")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestRunEndpointExecutesScreening(t *testing.T) {
	e, _ := newTestServer(t, nil)

	env := do(t, e, http.MethodPost, "/api/run")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var resp models.RunResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Statuses[models.ClassEquities] != models.StatusSuccess {
		t.Fatalf("equities status = %s", resp.Statuses[models.ClassEquities])
	}
	if resp.Summary.TotalSignals == 0 {
		t.Fatalf("summary empty after run")
	}
}

func TestHistoryReturnsStoredSignals(t *testing.T) {
	history := &fakeHistory{signals: []models.Signal{
		{Instrument: "SPY", AssetClass: models.ClassEquities, Direction: models.DirectionBuy, Confidence: 0.8, Timestamp: testNow},
		{Instrument: "GLD", AssetClass: models.ClassGolds, Direction: models.DirectionBuy, Confidence: 0.7, Timestamp: testNow},
	}}
	e, _ := newTestServer(t, history)

	env := do(t, e, http.MethodGet, "/api/history/equities")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var signals []models.Signal
	if err := json.Unmarshal(env.Data, &signals); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(signals) != 1 || signals[0].Instrument != "SPY" {
		t.Fatalf("history = %+v, want the one stored equities signal", signals)
	}
}

func TestHistoryRespectsLimit(t *testing.T) {
	history := &fakeHistory{signals: []models.Signal{
		{Instrument: "SPY", AssetClass: models.ClassEquities, Timestamp: testNow},
		{Instrument: "QQQ", AssetClass: models.ClassEquities, Timestamp: testNow},
		{Instrument: "IWM", AssetClass: models.ClassEquities, Timestamp: testNow},
	}}
	e, _ := newTestServer(t, history)

	env := do(t, e, http.MethodGet, "/api/history/equities?limit=2")
	var signals []models.Signal
	if err := json.Unmarshal(env.Data, &signals); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	e, _ := newTestServer(t, nil)

	env := do(t, e, http.MethodGet, "/api/history/equities")
	if env.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", env.Status)
	}
}

func TestHistoryRejectsUnknownClass(t *testing.T) {
	e, _ := newTestServer(t, &fakeHistory{})

	env := do(t, e, http.MethodGet, "/api/history/crypto")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: http %d", rec.Code)
	}
}
