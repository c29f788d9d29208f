package models

import "math"

// Requests for trading HTTP endpoints. Defined in domain for consistency and reuse.

type CreatePortfolioRequest struct {
	Owner          string  `json:"owner" validate:"required"`
	Symbol         string  `json:"symbol" validate:"required"`
	InitialBalance float64 `json:"initial_balance" validate:"gt=0"`
	RiskLevel      string  `json:"risk_level" default:"MEDIUM" validate:"oneof=LOW MEDIUM HIGH"`
}

// SignalPayload is the wire form of a Signal before normalization.
// Confidence is a pointer so an absent field is distinguishable from an
// explicit zero.
type SignalPayload struct {
	Source         string         `json:"source" validate:"required,oneof=TECHNICAL SIMPLE_AI ADVANCED_AI WYCKOFF SENTIMENT MANUAL"`
	Recommendation string         `json:"recommendation" validate:"required"`
	Confidence     *float64       `json:"confidence" validate:"omitempty,gte=0,lte=100"`
	Context        *SignalContext `json:"context,omitempty"`
}

// ToSignal converts the payload through boundary normalization. A missing
// confidence becomes NaN, which normalization defaults to 50.
func (p SignalPayload) ToSignal() Signal {
	conf := math.NaN()
	if p.Confidence != nil {
		conf = *p.Confidence
	}
	return NormalizeSignal(Signal{
		Source:         Source(p.Source),
		Recommendation: Recommendation(p.Recommendation),
		Confidence:     conf,
		Context:        p.Context,
	})
}

type FuseRequest struct {
	Symbol  string          `json:"symbol" validate:"required"`
	Signals []SignalPayload `json:"signals" validate:"dive"`
}

type ExecuteRequest struct {
	Signals []SignalPayload `json:"signals" validate:"dive"`
	// Price is optional; when zero the live feed price for the portfolio
	// symbol is used.
	Price float64 `json:"price" validate:"gte=0"`
}

type ManualTradeRequest struct {
	Action string  `json:"action" validate:"required,oneof=BUY SELL"`
	Price  float64 `json:"price" validate:"gte=0"`
	// SizeFraction overrides confidence-derived sizing for BUY orders.
	SizeFraction float64 `json:"size_fraction" default:"0.2" validate:"gt=0,lte=0.95"`
}

type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
