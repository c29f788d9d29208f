package usecase

import (
	"context"
	"testing"
	"time"

	"TradePilot/internal/domain/models"
	icache "TradePilot/internal/service/cache"
	"TradePilot/internal/services/fusion"
)

func TestFusionServiceCachesLatest(t *testing.T) {
	svc := NewFusionService(fusion.NewEngine(nil), icache.NewTTLCache(), time.Minute, nil, nil, nil)

	signals := []models.Signal{
		{Source: models.SourceTechnical, Recommendation: models.Buy, Confidence: 90},
		{Source: models.SourceWyckoff, Recommendation: models.StrongBuy, Confidence: 85},
	}
	res := svc.Fuse(context.Background(), "BTCUSDT", signals)
	if !res.FinalRecommendation.IsBuy() {
		t.Fatalf("expected buy consensus, got %s", res.FinalRecommendation)
	}

	cached, ok := svc.Latest("BTCUSDT")
	if !ok {
		t.Fatalf("expected cached result")
	}
	if cached.FinalRecommendation != res.FinalRecommendation || cached.FinalConfidence != res.FinalConfidence {
		t.Fatalf("cached result diverged: %+v vs %+v", cached, res)
	}
}

func TestFusionServiceLatestMissing(t *testing.T) {
	svc := NewFusionService(fusion.NewEngine(nil), icache.NewTTLCache(), time.Minute, nil, nil, nil)
	if _, ok := svc.Latest("ETHUSDT"); ok {
		t.Fatalf("expected no cached result for unseen symbol")
	}
}
