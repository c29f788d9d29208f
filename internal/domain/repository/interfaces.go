package repository

import (
	"context"

	"TradePilot/internal/domain/models"
)

// TradeLog is the durable, append-only sink for executed trades.
type TradeLog interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Append(ctx context.Context, rec *models.TradeRecord) error
	History(ctx context.Context, portfolioID string, limit int) ([]*models.TradeRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher emits trade and fusion events for downstream alerting.
type Publisher interface {
	PublishTrade(ctx context.Context, rec *models.TradeRecord) error
	PublishFusion(ctx context.Context, symbol string, res *models.FusionResult) error
	Close() error
}

// PriceFeed exposes the last known market price per symbol.
type PriceFeed interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Run(ctx context.Context) error
	LastPrice(symbol string) (float64, bool)
	Close() error
	IsConnected() bool
}

// Metrics records operational measurements.
type Metrics interface {
	RecordFusion(symbol string, recommendation string)
	RecordTrade(portfolioID, tradeType string)
	RecordRejection(reason string)
	RecordBalance(portfolioID string, balance float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
