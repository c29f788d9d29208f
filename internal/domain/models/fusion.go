package models

import "time"

// AgreementLevel describes how many independent opinions back a decision.
type AgreementLevel string

const (
	NoSignals         AgreementLevel = "NO_SIGNALS"
	SingleSignal      AgreementLevel = "SINGLE_SIGNAL"
	MixedSignals      AgreementLevel = "MIXED_SIGNALS"
	ModerateConsensus AgreementLevel = "MODERATE_CONSENSUS"
	StrongConsensus   AgreementLevel = "STRONG_CONSENSUS"
)

// RiskLevel grades a fused decision.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// FusionResult is the weighted consensus of a set of signals. Ephemeral:
// only the trade that results from acting on it is persisted.
type FusionResult struct {
	FinalRecommendation Recommendation     `json:"final_recommendation"`
	FinalConfidence     float64            `json:"final_confidence"`
	AgreementLevel      AgreementLevel     `json:"agreement_level"`
	RiskLevel           RiskLevel          `json:"risk_level"`
	ContributingSignals int                `json:"contributing_signals"`
	WeightDistribution  map[Source]float64 `json:"weight_distribution"`
	Reasoning           string             `json:"reasoning"`
	Timestamp           time.Time          `json:"timestamp"`
}
