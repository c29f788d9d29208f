package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"TradePilot/internal/domain/models"
	drepo "TradePilot/internal/domain/repository"
	pkgkafka "TradePilot/pkg/kafka"
)

// KafkaSignalsHandler consumes analyzer opinions published to the signals
// topic and feeds them into the inbox.
type KafkaSignalsHandler struct {
	topic   string
	inbox   *SignalInbox
	metrics drepo.Metrics
}

func NewKafkaSignalsHandler(topic string, inbox *SignalInbox, metrics drepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, inbox: inbox, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, source, recommendation, confidence, context?}
func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	// confidence is a pointer so an absent field defaults to 50 while an
	// explicit zero survives normalization as zero weight
	var m struct {
		Symbol         string                `json:"symbol"`
		Source         string                `json:"source"`
		Recommendation string                `json:"recommendation"`
		Confidence     *float64              `json:"confidence"`
		Context        *models.SignalContext `json:"context"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("signal_unmarshal")
		}
		return err
	}
	if m.Symbol == "" {
		if h.metrics != nil {
			h.metrics.RecordError("signal_no_symbol")
		}
		return fmt.Errorf("signal message without symbol")
	}

	conf := math.NaN()
	if m.Confidence != nil {
		conf = *m.Confidence
	}

	// malformed recommendation/confidence are normalized, not rejected
	h.inbox.Put(m.Symbol, models.Signal{
		Source:         models.Source(m.Source),
		Recommendation: models.Recommendation(m.Recommendation),
		Confidence:     conf,
		Context:        m.Context,
	})
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
