// Package marketdata fetches daily OHLCV history over HTTP. The default
// wire format is the Stooq CSV download endpoint; any server speaking the
// same format works, which is also how tests drive the client.
package marketdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/service/cache"
	"TechScreen/internal/service/ratelimit"
	"TechScreen/pkg/http"
	"TechScreen/pkg/logger"
)

const limiterKey = "marketdata"

type Config struct {
	BaseURL        string        // CSV download endpoint
	SymbolSuffix   string        // appended to symbols, e.g. ".us"
	Timeout        time.Duration
	CacheTTL       time.Duration
	RequestsPerSec float64
	Burst          float64
}

// Client implements repository.BarSource over the CSV endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *ratelimit.Limiter
	cache   cache.BarCache
	log     *logger.Logger
}

func New(cfg Config, barCache cache.BarCache, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://stooq.com/q/d/l/"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.RequestsPerSec == 0 {
		cfg.RequestsPerSec = 2
	}
	if cfg.Burst == 0 {
		cfg.Burst = 5
	}
	return &Client{
		cfg:     cfg,
		http:    http.NewClient(http.WithTimeout(cfg.Timeout)),
		limiter: ratelimit.New(),
		cache:   barCache,
		log:     log,
	}
}

// DailyBars fetches the last lookbackDays calendar days of daily bars.
func (c *Client) DailyBars(ctx context.Context, symbol string, lookbackDays int) (models.History, error) {
	key := fmt.Sprintf("bars:%s:%d", symbol, lookbackDays)
	if c.cache != nil {
		if h, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return h, nil
		} else if err != nil {
			c.log.Warn("bar cache read failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	if err := c.limiter.Wait(ctx, limiterKey, c.cfg.Burst, c.cfg.RequestsPerSec); err != nil {
		return models.History{}, err
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -lookbackDays)

	var body []byte
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.cfg.BaseURL,
		QueryParams: map[string][]string{
			"s":  {strings.ToLower(symbol) + c.cfg.SymbolSuffix},
			"i":  {"d"},
			"d1": {from.Format("20060102")},
			"d2": {to.Format("20060102")},
		},
	}, &body)
	if err != nil {
		return models.History{}, fmt.Errorf("%s: %v: %w", symbol, err, repository.ErrDataUnavailable)
	}

	h, err := parseCSV(symbol, body)
	if err != nil {
		return models.History{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, h, c.cfg.CacheTTL); err != nil {
			c.log.Warn("bar cache write failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}
	return h, nil
}

// parseCSV decodes the Date,Open,High,Low,Close,Volume download format.
// Rows must be chronological; malformed rows abort the parse rather than
// silently producing a gap.
func parseCSV(symbol string, body []byte) (models.History, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return models.History{}, fmt.Errorf("%s: empty response: %w", symbol, repository.ErrDataUnavailable)
	}
	if len(header) < 6 || !strings.EqualFold(header[0], "Date") {
		return models.History{}, fmt.Errorf("%s: unexpected response %q: %w", symbol, strings.Join(header, ","), repository.ErrDataUnavailable)
	}

	h := models.History{Symbol: symbol}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.History{}, fmt.Errorf("%s: read csv: %w", symbol, err)
		}
		if len(rec) < 6 {
			continue
		}
		bar, err := parseBar(rec)
		if err != nil {
			return models.History{}, fmt.Errorf("%s: %w", symbol, err)
		}
		if n := len(h.Bars); n > 0 && !bar.Date.After(h.Bars[n-1].Date) {
			return models.History{}, fmt.Errorf("%s: bars out of order at %s", symbol, bar.Date.Format("2006-01-02"))
		}
		h.Bars = append(h.Bars, bar)
	}
	if len(h.Bars) == 0 {
		return models.History{}, fmt.Errorf("%s: no bars returned: %w", symbol, repository.ErrDataUnavailable)
	}
	return h, nil
}

func parseBar(rec []string) (models.PriceBar, error) {
	date, err := time.Parse("2006-01-02", rec[0])
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("parse date %q: %w", rec[0], err)
	}
	vals := make([]float64, 4)
	for i, field := range rec[1:5] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return models.PriceBar{}, fmt.Errorf("parse %q on %s: %w", field, rec[0], err)
		}
		vals[i] = v
	}
	// volume may be absent for some instruments
	volume := 0.0
	if rec[5] != "" {
		volume, err = strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return models.PriceBar{}, fmt.Errorf("parse volume %q on %s: %w", rec[5], rec[0], err)
		}
	}
	return models.PriceBar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}, nil
}
