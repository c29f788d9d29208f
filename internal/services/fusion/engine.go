package fusion

import (
	"fmt"
	"math"
	"strings"
	"time"

	"TradePilot/internal/domain/models"
)

// Decision thresholds on the weighted buy/sell ratios.
const (
	actThreshold    = 0.35
	strongThreshold = 0.75
	clearThreshold  = 0.55

	confidenceBoost   = 1.3
	confidenceCeiling = 95.0
	holdConfidence    = 60.0
)

// DefaultBaseWeights gives sources with historically higher discriminative
// power a higher ceiling; every source is still damped by its own
// confidence.
func DefaultBaseWeights() map[models.Source]float64 {
	return map[models.Source]float64{
		models.SourceTechnical:  0.8,
		models.SourceSimpleAI:   1.0,
		models.SourceAdvancedAI: 1.2,
		models.SourceWyckoff:    1.5,
		models.SourceSentiment:  0.6,
		models.SourceManual:     1.0,
	}
}

// Engine computes weighted consensus over independent signals. Pure and
// stateless: safe for concurrent use.
type Engine struct {
	baseWeights map[models.Source]float64
}

// NewEngine creates a fusion engine with the given base weights. Missing
// sources fall back to the defaults.
func NewEngine(baseWeights map[models.Source]float64) *Engine {
	w := DefaultBaseWeights()
	for src, bw := range baseWeights {
		if bw > 0 {
			w[src] = bw
		}
	}
	return &Engine{baseWeights: w}
}

// Fuse aggregates signals into one recommendation. Never fails: empty input
// degrades to HOLD with NO_SIGNALS, since "no actionable opinion" is a
// legitimate outcome.
func (e *Engine) Fuse(signals []models.Signal) models.FusionResult {
	res := models.FusionResult{
		FinalRecommendation: models.Hold,
		FinalConfidence:     holdConfidence,
		AgreementLevel:      models.NoSignals,
		RiskLevel:           models.RiskLow,
		WeightDistribution:  map[models.Source]float64{},
		Timestamp:           time.Now().UTC(),
	}
	if len(signals) == 0 {
		res.Reasoning = "no signals available"
		res.RiskLevel = riskFor(res.FinalConfidence, 0)
		return res
	}

	var (
		totalWeight  float64
		buyWeight    float64
		sellWeight   float64
		contributing int
		rawWeights   = map[models.Source]float64{}
	)

	for _, raw := range signals {
		s := models.NormalizeSignal(raw)
		w := (s.Confidence / 100) * e.baseWeight(s.Source)
		switch {
		case s.Recommendation.IsBuy():
			buyWeight += w
		case s.Recommendation.IsSell():
			sellWeight += w
		}
		// HOLD contributes to the denominator only: a HOLD is itself
		// information and dilutes the directional ratio.
		totalWeight += w
		rawWeights[s.Source] += w
		if s.Recommendation != models.Hold {
			contributing++
		}
	}

	res.ContributingSignals = contributing
	res.AgreementLevel = agreementFor(contributing)

	var buyRatio, sellRatio float64
	if totalWeight > 0 {
		buyRatio = buyWeight / totalWeight
		sellRatio = sellWeight / totalWeight
		for src, w := range rawWeights {
			res.WeightDistribution[src] = w / totalWeight
		}
	}

	switch {
	case buyRatio > sellRatio && buyRatio > actThreshold:
		res.FinalRecommendation = tier(buyRatio, models.StrongBuy, models.Buy, models.WeakBuy)
		res.FinalConfidence = math.Min(buyRatio*100*confidenceBoost, confidenceCeiling)
	case sellRatio > buyRatio && sellRatio > actThreshold:
		res.FinalRecommendation = tier(sellRatio, models.StrongSell, models.Sell, models.WeakSell)
		res.FinalConfidence = math.Min(sellRatio*100*confidenceBoost, confidenceCeiling)
	default:
		// ties break toward HOLD; 60 is "confidently undecided", distinct
		// from the no-data case
		res.FinalRecommendation = models.Hold
		res.FinalConfidence = holdConfidence
	}

	res.RiskLevel = riskFor(res.FinalConfidence, contributing)

	phase := wyckoffPhase(signals)
	if contradicts(phase, res.FinalRecommendation) {
		res.RiskLevel = escalate(res.RiskLevel)
	}

	res.Reasoning = reasoning(res, buyRatio, sellRatio, phase)
	return res
}

func (e *Engine) baseWeight(src models.Source) float64 {
	if w, ok := e.baseWeights[src]; ok {
		return w
	}
	return 1.0
}

func tier(ratio float64, strong, clear, weak models.Recommendation) models.Recommendation {
	switch {
	case ratio > strongThreshold:
		return strong
	case ratio > clearThreshold:
		return clear
	default:
		return weak
	}
}

func agreementFor(contributing int) models.AgreementLevel {
	switch {
	case contributing >= 3:
		return models.StrongConsensus
	case contributing == 2:
		return models.ModerateConsensus
	case contributing == 1:
		return models.SingleSignal
	default:
		return models.MixedSignals
	}
}

func riskFor(confidence float64, contributing int) models.RiskLevel {
	risk := models.RiskLow
	if confidence < 60 {
		risk = escalate(risk)
	}
	if contributing < 2 {
		risk = escalate(risk)
	}
	return risk
}

func escalate(r models.RiskLevel) models.RiskLevel {
	switch r {
	case models.RiskLow:
		return models.RiskModerate
	default:
		return models.RiskHigh
	}
}

// wyckoffPhase returns the phase context of the first Wyckoff signal that
// carries one.
func wyckoffPhase(signals []models.Signal) string {
	for _, s := range signals {
		if s.Source == models.SourceWyckoff && s.Context != nil && s.Context.Phase != "" {
			return strings.ToUpper(s.Context.Phase)
		}
	}
	return ""
}

// contradicts reports whether the phase context directly opposes the fused
// direction. A contradiction never flips the outcome, it only escalates
// risk.
func contradicts(phase string, rec models.Recommendation) bool {
	switch phase {
	case models.PhaseDistribution, models.PhaseMarkdown:
		return rec.IsBuy()
	case models.PhaseAccumulation, models.PhaseMarkup:
		return rec.IsSell()
	default:
		return false
	}
}

func reasoning(res models.FusionResult, buyRatio, sellRatio float64, phase string) string {
	var b strings.Builder
	switch {
	case res.FinalRecommendation.IsBuy():
		fmt.Fprintf(&b, "%s of %d signals favors %s (ratio %.2f)",
			res.AgreementLevel, res.ContributingSignals, res.FinalRecommendation, buyRatio)
	case res.FinalRecommendation.IsSell():
		fmt.Fprintf(&b, "%s of %d signals favors %s (ratio %.2f)",
			res.AgreementLevel, res.ContributingSignals, res.FinalRecommendation, sellRatio)
	default:
		fmt.Fprintf(&b, "%s: no directional ratio above %.2f, holding",
			res.AgreementLevel, actThreshold)
	}
	if phase != "" {
		if contradicts(phase, res.FinalRecommendation) {
			fmt.Fprintf(&b, "; phase=%s contradicts direction, risk raised", phase)
		} else {
			fmt.Fprintf(&b, "; phase=%s supports direction", phase)
		}
	}
	return b.String()
}
