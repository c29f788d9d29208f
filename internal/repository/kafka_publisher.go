package repository

import (
	"context"

	"TradePilot/internal/domain/models"
	"TradePilot/internal/domain/repository"
	pkgkafka "TradePilot/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Trades and fusion
// decisions go to separate topics, keyed so downstream consumers see
// per-portfolio and per-symbol ordering respectively.
type KafkaPublisher struct {
	producer     *pkgkafka.Producer
	tradesTopic  string
	fusionsTopic string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, tradesTopic, fusionsTopic string) repository.Publisher {
	return &KafkaPublisher{
		producer:     producer,
		tradesTopic:  tradesTopic,
		fusionsTopic: fusionsTopic,
	}
}

func (p *KafkaPublisher) PublishTrade(ctx context.Context, rec *models.TradeRecord) error {
	return p.producer.Publish(ctx, p.tradesTopic, []byte(rec.PortfolioID), rec)
}

func (p *KafkaPublisher) PublishFusion(ctx context.Context, symbol string, res *models.FusionResult) error {
	return p.producer.Publish(ctx, p.fusionsTopic, []byte(symbol), map[string]interface{}{
		"symbol": symbol,
		"fusion": res,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
