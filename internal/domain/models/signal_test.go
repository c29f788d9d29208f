package models

import (
	"math"
	"testing"
)

func TestNormalizeRecommendationAliases(t *testing.T) {
	cases := map[string]Recommendation{
		"STRONG_BUY": StrongBuy,
		"BULLISH":    Buy,
		"BEARISH":    Sell,
		"NEUTRAL":    Hold,
		"GARBAGE":    Hold,
		"":           Hold,
	}
	for raw, want := range cases {
		if got := NormalizeRecommendation(raw); got != want {
			t.Fatalf("NormalizeRecommendation(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	if got := ClampConfidence(-5); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ClampConfidence(140); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := ClampConfidence(math.NaN()); got != 50 {
		t.Fatalf("expected NaN to default to 50, got %v", got)
	}
}

func TestNormalizeSignalConfidence(t *testing.T) {
	// explicit zero is a real opinion with zero weight, never the default
	s := NormalizeSignal(Signal{Source: SourceTechnical, Recommendation: Buy, Confidence: 0})
	if s.Confidence != 0 {
		t.Fatalf("expected explicit zero confidence to survive, got %v", s.Confidence)
	}

	// absent confidence is carried as NaN and defaults to 50
	m := NormalizeSignal(Signal{Source: SourceTechnical, Recommendation: Buy, Confidence: math.NaN()})
	if m.Confidence != 50 {
		t.Fatalf("expected missing confidence to default to 50, got %v", m.Confidence)
	}
}

func TestSignalPayloadConfidenceMissingVsZero(t *testing.T) {
	missing := SignalPayload{Source: "TECHNICAL", Recommendation: "BUY"}.ToSignal()
	if missing.Confidence != 50 {
		t.Fatalf("expected omitted payload confidence to default to 50, got %v", missing.Confidence)
	}

	zero := 0.0
	explicit := SignalPayload{Source: "TECHNICAL", Recommendation: "BUY", Confidence: &zero}.ToSignal()
	if explicit.Confidence != 0 {
		t.Fatalf("expected explicit zero payload confidence to stay 0, got %v", explicit.Confidence)
	}
}

func TestRecommendationDirection(t *testing.T) {
	for _, r := range []Recommendation{StrongBuy, Buy, WeakBuy} {
		if !r.IsBuy() || r.IsSell() {
			t.Fatalf("%s should be a buy", r)
		}
	}
	for _, r := range []Recommendation{StrongSell, Sell, WeakSell} {
		if !r.IsSell() || r.IsBuy() {
			t.Fatalf("%s should be a sell", r)
		}
	}
	if Hold.IsBuy() || Hold.IsSell() {
		t.Fatalf("HOLD is directionless")
	}
}
