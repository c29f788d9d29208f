package models

import "time"

// PortfolioRisk governs base position sizing for a portfolio.
type PortfolioRisk string

const (
	PortfolioRiskLow    PortfolioRisk = "LOW"
	PortfolioRiskMedium PortfolioRisk = "MEDIUM"
	PortfolioRiskHigh   PortfolioRisk = "HIGH"
)

// Portfolio is the authoritative ledger record of one simulated account.
// Mutated exclusively by the execution engine; never deleted while trades
// reference it, only deactivated.
type Portfolio struct {
	ID               string        `json:"id"`
	Owner            string        `json:"owner"`
	Symbol           string        `json:"symbol"`
	InitialBalance   float64       `json:"initial_balance"`
	CurrentBalance   float64       `json:"current_balance"`
	PositionQuantity float64       `json:"position_quantity"`
	TotalTrades      int           `json:"total_trades"`
	SuccessfulTrades int           `json:"successful_trades"`
	RealizedPnL      float64       `json:"realized_pnl"`
	RiskLevel        PortfolioRisk `json:"risk_level"`
	IsActive         bool          `json:"is_active"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TradeType distinguishes the two ledger mutations.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// TradeRecord is the immutable, append-only audit row for one executed
// trade. GrossValue = Quantity × Price at BUY time (the amount debited);
// commission is charged on gross value on both sides.
type TradeRecord struct {
	ID               string    `json:"id"`
	PortfolioID      string    `json:"portfolio_id"`
	Symbol           string    `json:"symbol"`
	Type             TradeType `json:"type"`
	Quantity         float64   `json:"quantity"`
	Price            float64   `json:"price"`
	GrossValue       float64   `json:"gross_value"`
	Commission       float64   `json:"commission"`
	RealizedPnL      float64   `json:"realized_pnl"`
	BalanceBefore    float64   `json:"balance_before"`
	BalanceAfter     float64   `json:"balance_after"`
	SignalSource     string    `json:"signal_source"`
	SignalConfidence float64   `json:"signal_confidence"`
	Timestamp        time.Time `json:"timestamp"`
}

// OutcomeStatus is the top-level classification of an execution attempt.
type OutcomeStatus string

const (
	OutcomeExecuted OutcomeStatus = "EXECUTED"
	OutcomeHeld     OutcomeStatus = "HELD"
	OutcomeRejected OutcomeStatus = "REJECTED"
)

// RejectReason is the typed failure taxonomy of the execution engine.
// Rejections are reportable outcomes, not errors: the orchestrator must be
// able to tell "the engine decided to wait" from "it wanted to act but
// could not".
type RejectReason string

const (
	RejectInsufficientFunds RejectReason = "INSUFFICIENT_FUNDS"
	RejectNoPosition        RejectReason = "NO_POSITION"
	RejectBelowMinimumTrade RejectReason = "BELOW_MINIMUM_TRADE"
	RejectPortfolioInactive RejectReason = "PORTFOLIO_INACTIVE"
	RejectNoPositionToSell  RejectReason = "NO_POSITION_TO_SELL"
)

// TradeOutcome is what one Execute call produces: a record when a trade
// went through, otherwise a held/rejected status with the reason.
type TradeOutcome struct {
	Status   OutcomeStatus      `json:"status"`
	Reason   RejectReason       `json:"reason,omitempty"`
	Detail   string             `json:"detail,omitempty"`
	Record   *TradeRecord       `json:"record,omitempty"`
	Snapshot *PortfolioSnapshot `json:"snapshot,omitempty"`
}

// PortfolioSnapshot is the read-only view served to dashboards. Position
// value is derived from the last known price at read time, never stored.
type PortfolioSnapshot struct {
	PortfolioID      string        `json:"portfolio_id"`
	Owner            string        `json:"owner"`
	Symbol           string        `json:"symbol"`
	InitialBalance   float64       `json:"initial_balance"`
	CurrentBalance   float64       `json:"current_balance"`
	PositionQuantity float64       `json:"position_quantity"`
	PositionValue    float64       `json:"position_value"`
	TotalValue       float64       `json:"total_value"`
	TotalTrades      int           `json:"total_trades"`
	SuccessfulTrades int           `json:"successful_trades"`
	WinRate          float64       `json:"win_rate"`
	RealizedPnL      float64       `json:"realized_pnl"`
	RiskLevel        PortfolioRisk `json:"risk_level"`
	IsActive         bool          `json:"is_active"`
	LastPrice        float64       `json:"last_price"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
