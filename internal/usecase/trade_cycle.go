package usecase

import (
	"context"
	"fmt"
	"time"

	"TradePilot/internal/domain/models"
	drepo "TradePilot/internal/domain/repository"
	xlogger "TradePilot/pkg/logger"
)

// CycleResult reports one auto-trade pass over a portfolio.
type CycleResult struct {
	PortfolioID  string              `json:"portfolio_id"`
	Symbol       string              `json:"symbol"`
	Price        float64             `json:"price"`
	Fusion       models.FusionResult `json:"fusion"`
	Outcome      models.TradeOutcome `json:"outcome"`
	SourceErrors map[string]string   `json:"source_errors,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// TradeCycle is the orchestrator: gather opinions, fuse, execute, report.
// It owns no portfolio state; the ledger serializes per-portfolio access.
type TradeCycle struct {
	gatherer *SignalGatherer
	fuser    *FusionService
	exec     *ExecutionEngine
	ledger   *Ledger
	feed     drepo.PriceFeed
	interval time.Duration
	logger   *xlogger.Logger
}

func NewTradeCycle(gatherer *SignalGatherer, fuser *FusionService, exec *ExecutionEngine, ledger *Ledger, feed drepo.PriceFeed, interval time.Duration, lg *xlogger.Logger) *TradeCycle {
	return &TradeCycle{
		gatherer: gatherer,
		fuser:    fuser,
		exec:     exec,
		ledger:   ledger,
		feed:     feed,
		interval: interval,
		logger:   lg,
	}
}

// RunOnce executes a single cycle for one portfolio. price == 0 means "use
// the live feed".
func (c *TradeCycle) RunOnce(ctx context.Context, portfolioID string, price float64) (*CycleResult, error) {
	p, err := c.ledger.Get(portfolioID)
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		last, ok := c.feed.LastPrice(p.Symbol)
		if !ok {
			return nil, fmt.Errorf("no price available for %s", p.Symbol)
		}
		price = last
	}

	signals, srcErrs := c.gatherer.Gather(ctx, p.Symbol)
	res := c.fuser.Fuse(ctx, p.Symbol, signals)

	outcome, err := c.exec.Execute(ctx, portfolioID, res, price)
	if err != nil {
		return nil, err
	}

	return &CycleResult{
		PortfolioID:  portfolioID,
		Symbol:       p.Symbol,
		Price:        price,
		Fusion:       res,
		Outcome:      outcome,
		SourceErrors: srcErrs,
		Timestamp:    time.Now().UTC(),
	}, nil
}

// Run loops over all active portfolios at the configured interval until
// the context is canceled. Disabled when interval <= 0.
func (c *TradeCycle) Run(ctx context.Context) {
	if c.interval <= 0 {
		return
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range c.ledger.List("") {
				if !p.IsActive {
					continue
				}
				cr, err := c.RunOnce(ctx, p.ID, 0)
				if err != nil {
					if c.logger != nil {
						c.logger.Warn("auto cycle failed",
							xlogger.String("portfolio", p.ID), xlogger.Error(err))
					}
					continue
				}
				if c.logger != nil {
					c.logger.Info("auto cycle",
						xlogger.String("portfolio", p.ID),
						xlogger.String("recommendation", string(cr.Fusion.FinalRecommendation)),
						xlogger.String("outcome", string(cr.Outcome.Status)))
				}
			}
		}
	}
}
