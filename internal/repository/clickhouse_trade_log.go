package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TradePilot/internal/domain/models"
	"TradePilot/internal/domain/repository"
)

// ClickHouseTradeLog implements TradeLog on ClickHouse. Trades are
// append-only audit rows; the in-memory ledger is the source of truth and
// this log is written after the ledger has committed.
type ClickHouseTradeLog struct {
	db    *sql.DB
	table string
}

// NewClickHouseTradeLog creates a ClickHouse-backed trade log.
func NewClickHouseTradeLog(db *sql.DB, table string) repository.TradeLog {
	return &ClickHouseTradeLog{db: db, table: table}
}

func (s *ClickHouseTradeLog) Init(ctx context.Context) error {
	if db, _, ok := strings.Cut(s.table, "."); ok {
		if _, err := s.db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+db); err != nil {
			return fmt.Errorf("init trade log database: %w", err)
		}
	}
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id String,
		portfolio_id String,
		symbol String,
		type String,
		quantity Float64,
		price Float64,
		gross_value Float64,
		commission Float64,
		realized_pnl Float64,
		balance_before Float64,
		balance_after Float64,
		signal_source String,
		signal_confidence Float64,
		ts DateTime64(3)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (portfolio_id, ts)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init trade log schema: %w", err)
	}
	return nil
}

func (s *ClickHouseTradeLog) Append(ctx context.Context, rec *models.TradeRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(id, portfolio_id, symbol, type, quantity, price, gross_value, commission,
		 realized_pnl, balance_before, balance_after, signal_source, signal_confidence, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		rec.ID,
		rec.PortfolioID,
		rec.Symbol,
		string(rec.Type),
		rec.Quantity,
		rec.Price,
		rec.GrossValue,
		rec.Commission,
		rec.RealizedPnL,
		rec.BalanceBefore,
		rec.BalanceAfter,
		rec.SignalSource,
		rec.SignalConfidence,
		rec.Timestamp,
	)
	return err
}

func (s *ClickHouseTradeLog) History(ctx context.Context, portfolioID string, limit int) ([]*models.TradeRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf(`SELECT id, portfolio_id, symbol, type, quantity, price, gross_value,
		commission, realized_pnl, balance_before, balance_after, signal_source, signal_confidence, ts
		FROM %s WHERE portfolio_id = ? ORDER BY ts DESC LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, portfolioID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.TradeRecord
	for rows.Next() {
		var r models.TradeRecord
		var typ string
		var ts time.Time
		if err := rows.Scan(
			&r.ID, &r.PortfolioID, &r.Symbol, &typ, &r.Quantity, &r.Price, &r.GrossValue,
			&r.Commission, &r.RealizedPnL, &r.BalanceBefore, &r.BalanceAfter,
			&r.SignalSource, &r.SignalConfidence, &ts,
		); err != nil {
			return nil, err
		}
		r.Type = models.TradeType(typ)
		r.Timestamp = ts
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}

func (s *ClickHouseTradeLog) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTradeLog) Close() error {
	return nil // pool managed by pkg/clickhouse
}
