package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TechScreen/internal/domain/models"
	domrepo "TechScreen/internal/domain/repository"
	pkgch "TechScreen/pkg/clickhouse"
	applogger "TechScreen/pkg/logger"
)

// Schema holds the idempotent DDL for the signal history table.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS techscreen`,
	`CREATE TABLE IF NOT EXISTS techscreen.signals (
        generated_at DateTime64(3),
        asset_class  LowCardinality(String),
        instrument   LowCardinality(String),
        strategy     LowCardinality(String),
        direction    LowCardinality(String),
        strength     UInt8,
        confidence   Float64,
        price        Float64,
        stop_loss    Float64,
        target       Float64,
        rationale    String
    ) ENGINE = MergeTree()
      PARTITION BY toYYYYMM(generated_at)
      ORDER BY (asset_class, generated_at, instrument)`,
}

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSignalStore(ch *pkgch.Client, l *applogger.Logger) *CHSignalStore {
	return &CHSignalStore{db: ch.DB(), l: l}
}

// SaveSignals appends one row per selected signal. The batch is atomic.
func (s *CHSignalStore) SaveSignals(ctx context.Context, result models.SelectionResult) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin signal insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO techscreen.signals
            (generated_at, asset_class, instrument, strategy, direction,
             strength, confidence, price, stop_loss, target, rationale)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare signal insert: %w", err)
	}
	defer stmt.Close()

	for _, sig := range result.Ordered() {
		if _, err := stmt.ExecContext(ctx,
			result.GeneratedAt, string(sig.AssetClass), sig.Instrument, sig.Strategy,
			string(sig.Direction), uint8(sig.Strength), sig.Confidence,
			sig.Price, sig.StopLoss, sig.Target, sig.Rationale,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert signal %s: %w", sig.Instrument, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit signal insert: %w", err)
	}

	s.l.Debug("signals persisted",
		applogger.String("asset_class", string(result.AssetClass)),
		applogger.Int("rows", len(result.Signals)),
		applogger.Duration("duration_ms", time.Since(start)))
	return nil
}

// RecentSignals returns the latest stored signals for one asset class,
// newest first.
func (s *CHSignalStore) RecentSignals(ctx context.Context, class models.AssetClass, limit int) ([]models.Signal, error) {
	const q = `
        SELECT generated_at, asset_class, instrument, strategy, direction,
               strength, confidence, price, stop_loss, target, rationale
        FROM techscreen.signals
        WHERE asset_class = ?
        ORDER BY generated_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, string(class), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		var sig models.Signal
		var class, dir string
		var strength uint8
		if err := rows.Scan(&sig.Timestamp, &class, &sig.Instrument, &sig.Strategy, &dir,
			&strength, &sig.Confidence, &sig.Price, &sig.StopLoss, &sig.Target, &sig.Rationale); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.AssetClass = models.AssetClass(class)
		sig.Direction = models.Direction(dir)
		sig.Strength = int(strength)
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var (
	_ domrepo.SignalStore   = (*CHSignalStore)(nil)
	_ domrepo.SignalHistory = (*CHSignalStore)(nil)
)
