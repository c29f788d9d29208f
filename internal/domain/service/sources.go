package service

import (
	"context"

	"TradePilot/internal/domain/models"
)

// SignalSource is any collaborator that can produce an opinion about a
// symbol: technical analysis, model ensembles, Wyckoff classifier,
// sentiment. Implementations live at the edges (HTTP analyzers, the Kafka
// signal inbox); the fusion engine only ever sees the Signal contract.
type SignalSource interface {
	Name() string
	Analyze(ctx context.Context, symbol string) (models.Signal, error)
}
