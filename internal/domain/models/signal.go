package models

// Source identifies the analyzer that produced a signal.
type Source string

const (
	SourceTechnical  Source = "TECHNICAL"
	SourceSimpleAI   Source = "SIMPLE_AI"
	SourceAdvancedAI Source = "ADVANCED_AI"
	SourceWyckoff    Source = "WYCKOFF"
	SourceSentiment  Source = "SENTIMENT"
	SourceManual     Source = "MANUAL"
)

// Recommendation is the closed set of directional opinions a source can emit.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	WeakBuy    Recommendation = "WEAK_BUY"
	Hold       Recommendation = "HOLD"
	WeakSell   Recommendation = "WEAK_SELL"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// IsBuy reports whether r is any buy variant.
func (r Recommendation) IsBuy() bool {
	return r == StrongBuy || r == Buy || r == WeakBuy
}

// IsSell reports whether r is any sell variant.
func (r Recommendation) IsSell() bool {
	return r == StrongSell || r == Sell || r == WeakSell
}

// Wyckoff phase labels carried as signal context. Used only for the
// phase-vs-direction risk check, never interpreted beyond that.
const (
	PhaseAccumulation = "ACCUMULATION"
	PhaseMarkup       = "MARKUP"
	PhaseDistribution = "DISTRIBUTION"
	PhaseMarkdown     = "MARKDOWN"
)

// SignalContext carries optional free-form metadata from the producer.
type SignalContext struct {
	Phase     string `json:"phase,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Signal is one analyzer's opinion about a trading symbol. Immutable,
// produced externally, consumed through NormalizeSignal.
type Signal struct {
	Source         Source         `json:"source"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	Context        *SignalContext `json:"context,omitempty"`
}

// recommendationAliases maps the inconsistent labels upstream analyzers
// have historically emitted onto the closed enum.
var recommendationAliases = map[string]Recommendation{
	"STRONG_BUY":  StrongBuy,
	"BUY":         Buy,
	"WEAK_BUY":    WeakBuy,
	"HOLD":        Hold,
	"WEAK_SELL":   WeakSell,
	"SELL":        Sell,
	"STRONG_SELL": StrongSell,
	"BULLISH":     Buy,
	"BEARISH":     Sell,
	"NEUTRAL":     Hold,
}

// NormalizeRecommendation maps a raw label to the enum; unknown → HOLD.
func NormalizeRecommendation(raw string) Recommendation {
	if r, ok := recommendationAliases[raw]; ok {
		return r
	}
	return Hold
}

// ClampConfidence bounds c to [0,100]. NaN is treated as missing and
// defaults to 50.
func ClampConfidence(c float64) float64 {
	if c != c { // NaN
		return 50
	}
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// NormalizeSignal applies the boundary normalization every ingestion path
// must go through: confidence clamped, recommendation coerced to the enum.
func NormalizeSignal(s Signal) Signal {
	if s.Recommendation == "" {
		s.Recommendation = Hold
	} else {
		s.Recommendation = NormalizeRecommendation(string(s.Recommendation))
	}
	// explicit zero confidence stays zero and carries zero fusion weight.
	// Only an absent confidence (carried as NaN) defaults to 50.
	s.Confidence = ClampConfidence(s.Confidence)
	return s
}
