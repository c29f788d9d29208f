package fusion

import (
	"math"
	"testing"

	"TradePilot/internal/domain/models"
)

func sig(src models.Source, rec models.Recommendation, conf float64) models.Signal {
	return models.Signal{Source: src, Recommendation: rec, Confidence: conf}
}

func TestFuseEmpty(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse(nil)
	if res.FinalRecommendation != models.Hold {
		t.Fatalf("expected HOLD, got %s", res.FinalRecommendation)
	}
	if res.AgreementLevel != models.NoSignals {
		t.Fatalf("expected NO_SIGNALS, got %s", res.AgreementLevel)
	}
	if res.FinalConfidence != 60.0 {
		t.Fatalf("expected confidence 60, got %v", res.FinalConfidence)
	}
}

func TestFuseAllHold(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse([]models.Signal{
		sig(models.SourceTechnical, models.Hold, 80),
		sig(models.SourceSimpleAI, models.Hold, 70),
	})
	if res.FinalRecommendation != models.Hold {
		t.Fatalf("expected HOLD, got %s", res.FinalRecommendation)
	}
	if res.FinalConfidence != 60.0 {
		t.Fatalf("expected confidence 60, got %v", res.FinalConfidence)
	}
	if res.AgreementLevel != models.MixedSignals {
		t.Fatalf("expected MIXED_SIGNALS for zero contributing, got %s", res.AgreementLevel)
	}
	if res.ContributingSignals != 0 {
		t.Fatalf("expected 0 contributing, got %d", res.ContributingSignals)
	}
}

func TestFuseUnanimousStrongConsensus(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse([]models.Signal{
		sig(models.SourceTechnical, models.Buy, 100),
		sig(models.SourceSimpleAI, models.Buy, 100),
		sig(models.SourceAdvancedAI, models.Buy, 100),
	})
	if res.FinalRecommendation != models.StrongBuy {
		t.Fatalf("ratio 1.0 should yield STRONG_BUY, got %s", res.FinalRecommendation)
	}
	if res.AgreementLevel != models.StrongConsensus {
		t.Fatalf("expected STRONG_CONSENSUS, got %s", res.AgreementLevel)
	}
	if res.FinalConfidence != 95.0 {
		t.Fatalf("confidence should hit the 95 ceiling, got %v", res.FinalConfidence)
	}
}

func TestFuseConfidenceCeiling(t *testing.T) {
	e := NewEngine(nil)
	cases := [][]models.Signal{
		{sig(models.SourceWyckoff, models.StrongSell, 100)},
		{sig(models.SourceTechnical, models.Buy, 55), sig(models.SourceSentiment, models.Sell, 45)},
		{sig(models.SourceAdvancedAI, models.WeakBuy, 90), sig(models.SourceSimpleAI, models.Hold, 90)},
	}
	for i, signals := range cases {
		res := e.Fuse(signals)
		if res.FinalConfidence < 0 || res.FinalConfidence > 95 {
			t.Fatalf("case %d: confidence %v out of [0,95]", i, res.FinalConfidence)
		}
	}
}

func TestFuseWeightDistributionSumsToOne(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse([]models.Signal{
		sig(models.SourceTechnical, models.Buy, 70),
		sig(models.SourceAdvancedAI, models.Sell, 85),
		sig(models.SourceWyckoff, models.Hold, 60),
		sig(models.SourceSentiment, models.Buy, 40),
	})
	var sum float64
	for _, w := range res.WeightDistribution {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weight distribution sums to %v, want 1.0", sum)
	}
}

func TestFuseHoldDilutesRatio(t *testing.T) {
	e := NewEngine(nil)
	// one buy alone is ratio 1.0; adding a heavy HOLD must shrink it
	solo := e.Fuse([]models.Signal{sig(models.SourceSimpleAI, models.Buy, 80)})
	diluted := e.Fuse([]models.Signal{
		sig(models.SourceSimpleAI, models.Buy, 80),
		sig(models.SourceWyckoff, models.Hold, 100),
	})
	if diluted.FinalConfidence >= solo.FinalConfidence {
		t.Fatalf("HOLD should dilute confidence: solo=%v diluted=%v",
			solo.FinalConfidence, diluted.FinalConfidence)
	}
}

func TestFuseTieBreaksToHold(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse([]models.Signal{
		sig(models.SourceSimpleAI, models.Buy, 80),
		sig(models.SourceSimpleAI, models.Sell, 80),
	})
	if res.FinalRecommendation != models.Hold {
		t.Fatalf("equal buy/sell ratio must hold, got %s", res.FinalRecommendation)
	}
}

func TestFuseDecisionTiers(t *testing.T) {
	e := NewEngine(nil)
	cases := []struct {
		name    string
		signals []models.Signal
		want    models.Recommendation
	}{
		{
			// single directional signal: ratio 1.0 > 0.75
			"strong buy", []models.Signal{sig(models.SourceTechnical, models.Buy, 90)}, models.StrongBuy,
		},
		{
			// buy 1.2 vs hold 0.8+... ratio = 1.2/(1.2+0.8) = 0.6 → BUY tier
			"clear buy",
			[]models.Signal{
				sig(models.SourceAdvancedAI, models.Buy, 100),
				sig(models.SourceTechnical, models.Hold, 100),
			},
			models.Buy,
		},
		{
			// buy 0.8 vs total 0.8+1.0 → ratio 0.444 → WEAK_BUY tier
			"weak buy",
			[]models.Signal{
				sig(models.SourceTechnical, models.Buy, 100),
				sig(models.SourceSimpleAI, models.Hold, 100),
			},
			models.WeakBuy,
		},
		{
			"strong sell", []models.Signal{sig(models.SourceWyckoff, models.Sell, 85)}, models.StrongSell,
		},
	}
	for _, tc := range cases {
		res := e.Fuse(tc.signals)
		if res.FinalRecommendation != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, res.FinalRecommendation, tc.want)
		}
	}
}

func TestFusePhaseContradictionEscalatesRisk(t *testing.T) {
	e := NewEngine(nil)
	wyckoffSell := models.Signal{
		Source:         models.SourceWyckoff,
		Recommendation: models.Sell,
		Confidence:     60,
		Context:        &models.SignalContext{Phase: models.PhaseDistribution},
	}
	base := e.Fuse([]models.Signal{
		sig(models.SourceTechnical, models.Buy, 70),
		sig(models.SourceAdvancedAI, models.Buy, 85),
		sig(models.SourceSentiment, models.Sell, 60),
	})
	res := e.Fuse([]models.Signal{
		sig(models.SourceTechnical, models.Buy, 70),
		sig(models.SourceAdvancedAI, models.Buy, 85),
		wyckoffSell,
	})
	if !res.FinalRecommendation.IsBuy() {
		t.Fatalf("phase contradiction must not flip the outcome, got %s", res.FinalRecommendation)
	}
	if rank(res.RiskLevel) <= rank(base.RiskLevel) && base.RiskLevel != models.RiskHigh {
		t.Fatalf("contradiction should escalate risk: base=%s got=%s", base.RiskLevel, res.RiskLevel)
	}
}

func TestFuseLowConfidenceSingleSignalIsHighRisk(t *testing.T) {
	e := NewEngine(nil)
	// ratio 0.8/1.8=0.44 → confidence ~57.8 (<60) with one contributor
	res := e.Fuse([]models.Signal{
		sig(models.SourceTechnical, models.Buy, 100),
		sig(models.SourceSimpleAI, models.Hold, 100),
	})
	if res.RiskLevel != models.RiskHigh {
		t.Fatalf("expected HIGH risk, got %s (confidence %v)", res.RiskLevel, res.FinalConfidence)
	}
}

func TestFuseCustomBaseWeights(t *testing.T) {
	e := NewEngine(map[models.Source]float64{models.SourceSentiment: 2.0})
	res := e.Fuse([]models.Signal{
		sig(models.SourceSentiment, models.Buy, 100),
		sig(models.SourceTechnical, models.Sell, 100),
	})
	// sentiment 2.0 vs technical 0.8: buy must dominate
	if !res.FinalRecommendation.IsBuy() {
		t.Fatalf("boosted sentiment should win, got %s", res.FinalRecommendation)
	}
}

func TestFuseNormalizesMalformedInput(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse([]models.Signal{
		{Source: models.SourceTechnical, Recommendation: "BULLISH", Confidence: 250},
		{Source: models.SourceSimpleAI, Recommendation: "GARBAGE", Confidence: -5},
	})
	// BULLISH → BUY clamped to 100; GARBAGE → HOLD
	if !res.FinalRecommendation.IsBuy() {
		t.Fatalf("expected buy after normalization, got %s", res.FinalRecommendation)
	}
	if res.ContributingSignals != 1 {
		t.Fatalf("expected 1 contributing signal, got %d", res.ContributingSignals)
	}
}

func TestFuseZeroConfidenceCarriesNoWeight(t *testing.T) {
	e := NewEngine(nil)
	res := e.Fuse([]models.Signal{
		{Source: models.SourceTechnical, Recommendation: models.Buy, Confidence: 0},
	})
	// zero confidence means zero effective weight: no directional ratio,
	// never a trade trigger
	if res.FinalRecommendation != models.Hold {
		t.Fatalf("expected HOLD from a zero-confidence signal, got %s", res.FinalRecommendation)
	}
	if res.FinalConfidence != 60 {
		t.Fatalf("expected hold confidence 60, got %v", res.FinalConfidence)
	}

	// the same signal with real confidence does trade
	strong := e.Fuse([]models.Signal{
		{Source: models.SourceTechnical, Recommendation: models.Buy, Confidence: 90},
	})
	if !strong.FinalRecommendation.IsBuy() {
		t.Fatalf("expected buy with real confidence, got %s", strong.FinalRecommendation)
	}
}

func rank(r models.RiskLevel) int {
	switch r {
	case models.RiskLow:
		return 0
	case models.RiskModerate:
		return 1
	default:
		return 2
	}
}
