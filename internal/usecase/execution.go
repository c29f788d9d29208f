package usecase

import (
	"context"
	"fmt"
	"time"

	"TradePilot/internal/domain/models"
	drepo "TradePilot/internal/domain/repository"
	xlogger "TradePilot/pkg/logger"
)

// ExecutionConfig carries the sizing policy. Injected, never global.
type ExecutionConfig struct {
	MinTradeAmount float64
	// MinSizeFraction/MaxSizeFraction clamp confidence-derived sizing.
	MinSizeFraction float64
	MaxSizeFraction float64
	// Sizing maps portfolio risk level to the base balance fraction.
	Sizing map[models.PortfolioRisk]float64
}

// DefaultExecutionConfig mirrors the simulator's historical policy.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		MinTradeAmount:  10.0,
		MinSizeFraction: 0.05,
		MaxSizeFraction: 0.95,
		Sizing: map[models.PortfolioRisk]float64{
			models.PortfolioRiskLow:    0.10,
			models.PortfolioRiskMedium: 0.20,
			models.PortfolioRiskHigh:   0.30,
		},
	}
}

// ExecutionEngine turns a fused decision into a ledger mutation. It is the
// only component allowed to call the ledger's applyBuy/applySell, and it
// holds the per-portfolio lock for the whole call.
type ExecutionEngine struct {
	ledger  *Ledger
	cfg     ExecutionConfig
	log     drepo.TradeLog
	pub     drepo.Publisher
	metrics drepo.Metrics
	logger  *xlogger.Logger
}

// NewExecutionEngine wires the engine. TradeLog and Publisher may be nil
// (pure in-memory simulation).
func NewExecutionEngine(ledger *Ledger, cfg ExecutionConfig, log drepo.TradeLog, pub drepo.Publisher, metrics drepo.Metrics, lg *xlogger.Logger) *ExecutionEngine {
	if cfg.Sizing == nil {
		cfg = DefaultExecutionConfig()
	}
	return &ExecutionEngine{ledger: ledger, cfg: cfg, log: log, pub: pub, metrics: metrics, logger: lg}
}

// Execute applies a fused decision to one portfolio at the given price.
// Failures come back as typed outcomes so the orchestrator can log, alert
// and continue; the error return is reserved for unknown portfolios and
// invalid prices.
func (e *ExecutionEngine) Execute(ctx context.Context, portfolioID string, res models.FusionResult, price float64) (models.TradeOutcome, error) {
	if price <= 0 {
		return models.TradeOutcome{}, fmt.Errorf("invalid price %v", price)
	}
	st, err := e.ledger.state(portfolioID)
	if err != nil {
		return models.TradeOutcome{}, err
	}

	start := time.Now()
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.p.IsActive {
		return e.reject(st, price, models.RejectPortfolioInactive, "portfolio is deactivated"), nil
	}

	source := fmt.Sprintf("FUSION:%s", res.AgreementLevel)
	var outcome models.TradeOutcome
	switch {
	case res.FinalRecommendation.IsBuy():
		fraction := e.sizeFraction(st.p.RiskLevel, res.FinalConfidence)
		outcome = e.buyLocked(ctx, st, price, fraction, source, res.FinalConfidence)
	case res.FinalRecommendation.IsSell():
		if st.p.PositionQuantity <= 0 {
			// a valid, reportable outcome: the engine wanted to exit but
			// there is nothing to exit
			outcome = e.reject(st, price, models.RejectNoPositionToSell, "sell signal with no open position")
		} else {
			outcome = e.sellLocked(ctx, st, price, source, res.FinalConfidence)
		}
	default:
		outcome = models.TradeOutcome{
			Status:   models.OutcomeHeld,
			Detail:   res.Reasoning,
			Snapshot: e.snapshotPtr(st, price),
		}
	}

	if e.metrics != nil {
		e.metrics.RecordLatency("execute", time.Since(start).Seconds())
		e.metrics.RecordBalance(st.p.ID, st.p.CurrentBalance)
	}
	return outcome, nil
}

// ExecuteManual applies a caller-supplied order, bypassing the
// confidence-derived sizing but none of the balance/position invariants.
func (e *ExecutionEngine) ExecuteManual(ctx context.Context, portfolioID string, action models.TradeType, sizeFraction, price float64) (models.TradeOutcome, error) {
	if price <= 0 {
		return models.TradeOutcome{}, fmt.Errorf("invalid price %v", price)
	}
	if action == models.TradeBuy && (sizeFraction <= 0 || sizeFraction > e.cfg.MaxSizeFraction) {
		return models.TradeOutcome{}, fmt.Errorf("size fraction %v out of (0,%v]", sizeFraction, e.cfg.MaxSizeFraction)
	}
	st, err := e.ledger.state(portfolioID)
	if err != nil {
		return models.TradeOutcome{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.p.IsActive {
		return e.reject(st, price, models.RejectPortfolioInactive, "portfolio is deactivated"), nil
	}

	const manualConfidence = 100.0
	source := string(models.SourceManual)
	var outcome models.TradeOutcome
	switch action {
	case models.TradeBuy:
		outcome = e.buyLocked(ctx, st, price, sizeFraction, source, manualConfidence)
	case models.TradeSell:
		if st.p.PositionQuantity <= 0 {
			outcome = e.reject(st, price, models.RejectNoPositionToSell, "manual sell with no open position")
		} else {
			outcome = e.sellLocked(ctx, st, price, source, manualConfidence)
		}
	default:
		return models.TradeOutcome{}, fmt.Errorf("unsupported action %q", action)
	}

	if e.metrics != nil {
		e.metrics.RecordBalance(st.p.ID, st.p.CurrentBalance)
	}
	return outcome, nil
}

// sizeFraction computes base_size × confidence/100 clamped to the
// configured bounds.
func (e *ExecutionEngine) sizeFraction(risk models.PortfolioRisk, confidence float64) float64 {
	base, ok := e.cfg.Sizing[risk]
	if !ok {
		base = e.cfg.Sizing[models.PortfolioRiskMedium]
	}
	f := base * (confidence / 100)
	if f < e.cfg.MinSizeFraction {
		f = e.cfg.MinSizeFraction
	}
	if f > e.cfg.MaxSizeFraction {
		f = e.cfg.MaxSizeFraction
	}
	return f
}

func (e *ExecutionEngine) buyLocked(ctx context.Context, st *portfolioState, price, fraction float64, source string, confidence float64) models.TradeOutcome {
	amount := st.p.CurrentBalance * fraction
	if amount < e.cfg.MinTradeAmount {
		return e.reject(st, price, models.RejectBelowMinimumTrade,
			fmt.Sprintf("trade amount %.2f below minimum %.2f", amount, e.cfg.MinTradeAmount))
	}

	rec, err := e.ledger.applyBuy(st, amount, price, source, confidence)
	if err != nil {
		return e.rejectFromErr(st, price, err)
	}
	e.record(ctx, rec, models.TradeBuy)
	return models.TradeOutcome{Status: models.OutcomeExecuted, Record: rec, Snapshot: e.snapshotPtr(st, price)}
}

func (e *ExecutionEngine) sellLocked(ctx context.Context, st *portfolioState, price float64, source string, confidence float64) models.TradeOutcome {
	rec, err := e.ledger.applySell(st, price, source, confidence)
	if err != nil {
		return e.rejectFromErr(st, price, err)
	}
	e.record(ctx, rec, models.TradeSell)
	return models.TradeOutcome{Status: models.OutcomeExecuted, Record: rec, Snapshot: e.snapshotPtr(st, price)}
}

func (e *ExecutionEngine) rejectFromErr(st *portfolioState, price float64, err error) models.TradeOutcome {
	reason := models.RejectReason("")
	switch err {
	case ErrInsufficientFunds:
		reason = models.RejectInsufficientFunds
	case ErrNoPosition:
		reason = models.RejectNoPosition
	default:
		reason = models.RejectReason("INTERNAL")
	}
	return e.reject(st, price, reason, err.Error())
}

func (e *ExecutionEngine) reject(st *portfolioState, price float64, reason models.RejectReason, detail string) models.TradeOutcome {
	if e.metrics != nil {
		e.metrics.RecordRejection(string(reason))
	}
	return models.TradeOutcome{
		Status:   models.OutcomeRejected,
		Reason:   reason,
		Detail:   detail,
		Snapshot: e.snapshotPtr(st, price),
	}
}

func (e *ExecutionEngine) snapshotPtr(st *portfolioState, price float64) *models.PortfolioSnapshot {
	s := snapshotLocked(&st.p, price)
	return &s
}

// record persists and publishes the trade. The in-memory ledger mutation
// has already committed; audit sinks are best-effort and surfaced through
// logs and metrics.
func (e *ExecutionEngine) record(ctx context.Context, rec *models.TradeRecord, tt models.TradeType) {
	if e.metrics != nil {
		e.metrics.RecordTrade(rec.PortfolioID, string(tt))
	}
	if e.log != nil {
		if err := e.log.Append(ctx, rec); err != nil {
			if e.metrics != nil {
				e.metrics.RecordError("trade_log_append")
			}
			if e.logger != nil {
				e.logger.Error("trade log append failed", xlogger.Error(err), xlogger.String("portfolio", rec.PortfolioID))
			}
		}
	}
	if e.pub != nil {
		if err := e.pub.PublishTrade(ctx, rec); err != nil {
			if e.metrics != nil {
				e.metrics.RecordError("trade_publish")
			}
			if e.logger != nil {
				e.logger.Error("trade publish failed", xlogger.Error(err), xlogger.String("portfolio", rec.PortfolioID))
			}
		}
	}
}
