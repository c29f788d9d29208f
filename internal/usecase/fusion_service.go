package usecase

import (
	"context"
	"encoding/json"
	"time"

	"TradePilot/internal/domain/models"
	drepo "TradePilot/internal/domain/repository"
	icache "TradePilot/internal/service/cache"
	"TradePilot/internal/services/fusion"
	xlogger "TradePilot/pkg/logger"
)

// FusionService wraps the pure engine with the operational concerns around
// it: caching the latest result per symbol, publishing it for downstream
// alerting, and recording metrics. The engine itself stays side-effect
// free.
type FusionService struct {
	engine   *fusion.Engine
	cache    icache.BytesCache
	cacheTTL time.Duration
	pub      drepo.Publisher
	metrics  drepo.Metrics
	logger   *xlogger.Logger
}

func NewFusionService(engine *fusion.Engine, cache icache.BytesCache, cacheTTL time.Duration, pub drepo.Publisher, metrics drepo.Metrics, lg *xlogger.Logger) *FusionService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &FusionService{engine: engine, cache: cache, cacheTTL: cacheTTL, pub: pub, metrics: metrics, logger: lg}
}

// Fuse runs the engine and fans the result out to cache and publisher.
func (s *FusionService) Fuse(ctx context.Context, symbol string, signals []models.Signal) models.FusionResult {
	start := time.Now()
	res := s.engine.Fuse(signals)

	if s.metrics != nil {
		s.metrics.RecordFusion(symbol, string(res.FinalRecommendation))
		s.metrics.RecordLatency("fuse", time.Since(start).Seconds())
	}
	if s.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := s.cache.SetBytes(fusionCacheKey(symbol), b, s.cacheTTL); err != nil && s.logger != nil {
				s.logger.Warn("fusion cache set failed", xlogger.Error(err))
			}
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishFusion(ctx, symbol, &res); err != nil {
			if s.metrics != nil {
				s.metrics.RecordError("fusion_publish")
			}
			if s.logger != nil {
				s.logger.Warn("fusion publish failed", xlogger.Error(err), xlogger.String("symbol", symbol))
			}
		}
	}
	return res
}

// Latest returns the cached result for a symbol, if still fresh.
func (s *FusionService) Latest(symbol string) (models.FusionResult, bool) {
	if s.cache == nil {
		return models.FusionResult{}, false
	}
	b, ok, err := s.cache.GetBytes(fusionCacheKey(symbol))
	if err != nil || !ok {
		return models.FusionResult{}, false
	}
	var res models.FusionResult
	if err := json.Unmarshal(b, &res); err != nil {
		return models.FusionResult{}, false
	}
	return res, true
}

func fusionCacheKey(symbol string) string { return "fusion:" + symbol }
