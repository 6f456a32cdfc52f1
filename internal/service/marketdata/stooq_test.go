package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TechScreen/internal/domain/repository"
	"TechScreen/internal/service/cache"
	"TechScreen/pkg/logger"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2025-05-28,100,102,99,101,1200000
2025-05-29,101,103,100,102,1100000
2025-05-30,102,104,101,103,1300000
`

func newTestClient(t *testing.T, handler http.HandlerFunc, barCache cache.BarCache) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{
		BaseURL:        srv.URL,
		SymbolSuffix:   ".us",
		RequestsPerSec: 1000,
		Burst:          1000,
	}, barCache, logger.Nop())
	return c, srv
}

func TestDailyBarsParsesCSV(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "spy.us" {
			t.Errorf("symbol query = %q, want spy.us", got)
		}
		if got := r.URL.Query().Get("i"); got != "d" {
			t.Errorf("interval query = %q, want d", got)
		}
		w.Write([]byte(sampleCSV))
	}, nil)

	h, err := c.DailyBars(context.Background(), "SPY", 90)
	if err != nil {
		t.Fatalf("DailyBars: %v", err)
	}
	if h.Symbol != "SPY" || h.Len() != 3 {
		t.Fatalf("got %s with %d bars", h.Symbol, h.Len())
	}
	last := h.Bars[2]
	if last.Close != 103 || last.Volume != 1300000 {
		t.Fatalf("last bar = %+v", last)
	}
	if !last.Date.Equal(time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("last bar date = %v", last.Date)
	}
}

func TestDailyBarsServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}, nil)
	_, err := c.DailyBars(context.Background(), "SPY", 90)
	if !errors.Is(err, repository.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestDailyBarsEmptyBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n"))
	}, nil)
	_, err := c.DailyBars(context.Background(), "SPY", 90)
	if !errors.Is(err, repository.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable on header-only body, got %v", err)
	}
}

func TestDailyBarsRejectsOutOfOrderRows(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n" +
			"2025-05-30,1,1,1,1,1\n" +
			"2025-05-29,1,1,1,1,1\n"))
	}, nil)
	if _, err := c.DailyBars(context.Background(), "SPY", 90); err == nil {
		t.Fatalf("expected error on non-chronological rows")
	}
}

func TestDailyBarsUsesCache(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(sampleCSV))
	}, cache.NewTTLCache())

	for i := 0; i < 3; i++ {
		if _, err := c.DailyBars(context.Background(), "SPY", 90); err != nil {
			t.Fatalf("DailyBars: %v", err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("server hit %d times, want 1 (cache)", got)
	}
}

func TestDailyBarsMissingVolume(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n2025-05-30,1,2,0.5,1.5,\n"))
	}, nil)
	h, err := c.DailyBars(context.Background(), "XAU", 90)
	if err != nil {
		t.Fatalf("DailyBars: %v", err)
	}
	if h.Bars[0].Volume != 0 {
		t.Fatalf("missing volume should parse as 0, got %v", h.Bars[0].Volume)
	}
}
