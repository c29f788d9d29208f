package usecase

import (
	"context"
	"sync"
	"testing"

	"TradePilot/internal/domain/models"
)

func newTestEngine(t *testing.T, balance float64, risk models.PortfolioRisk) (*ExecutionEngine, *Ledger, models.Portfolio) {
	t.Helper()
	l, p := newTestLedger(t, balance, risk)
	e := NewExecutionEngine(l, DefaultExecutionConfig(), nil, nil, nil, nil)
	return e, l, p
}

func fused(rec models.Recommendation, confidence float64) models.FusionResult {
	return models.FusionResult{
		FinalRecommendation: rec,
		FinalConfidence:     confidence,
		AgreementLevel:      models.SingleSignal,
	}
}

func TestExecuteBuySizing(t *testing.T) {
	// Portfolio{balance=1000, risk=MEDIUM}, BUY at confidence 80:
	// fraction = 0.20×0.80 = 0.16 → amount 160
	e, l, p := newTestEngine(t, 1000, models.PortfolioRiskMedium)

	out, err := e.Execute(context.Background(), p.ID, fused(models.Buy, 80), 100)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Status != models.OutcomeExecuted {
		t.Fatalf("expected executed, got %s (%s)", out.Status, out.Detail)
	}
	if !approx(out.Record.GrossValue, 160) {
		t.Fatalf("trade amount %v, want 160", out.Record.GrossValue)
	}
	got, _ := l.Get(p.ID)
	if !approx(got.CurrentBalance, 840) {
		t.Fatalf("balance %v, want 840", got.CurrentBalance)
	}
	wantQty := (160 - 160*commission) / 100
	if !approx(got.PositionQuantity, wantQty) {
		t.Fatalf("position %v, want %v", got.PositionQuantity, wantQty)
	}
}

func TestExecuteSizeFractionClamped(t *testing.T) {
	e, _, _ := newTestEngine(t, 1000, models.PortfolioRiskLow)
	// LOW base 0.10 × 0.10 confidence = 0.01, clamps up to 0.05
	if f := e.sizeFraction(models.PortfolioRiskLow, 10); !approx(f, 0.05) {
		t.Fatalf("fraction %v, want floor 0.05", f)
	}
	if f := e.sizeFraction(models.PortfolioRiskHigh, 100); !approx(f, 0.30) {
		t.Fatalf("fraction %v, want 0.30", f)
	}
}

func TestExecuteBelowMinimumTrade(t *testing.T) {
	e, l, p := newTestEngine(t, 50, models.PortfolioRiskLow)

	out, err := e.Execute(context.Background(), p.ID, fused(models.WeakBuy, 40), 100)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Status != models.OutcomeRejected || out.Reason != models.RejectBelowMinimumTrade {
		t.Fatalf("expected BELOW_MINIMUM_TRADE rejection, got %+v", out)
	}
	got, _ := l.Get(p.ID)
	if got.CurrentBalance != 50 || got.TotalTrades != 0 {
		t.Fatalf("rejected trade mutated state: %+v", got)
	}
}

func TestExecuteHold(t *testing.T) {
	e, l, p := newTestEngine(t, 1000, models.PortfolioRiskMedium)

	out, err := e.Execute(context.Background(), p.ID, fused(models.Hold, 60), 100)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Status != models.OutcomeHeld {
		t.Fatalf("expected held, got %s", out.Status)
	}
	if out.Record != nil {
		t.Fatalf("hold produced a trade record")
	}
	got, _ := l.Get(p.ID)
	if got.TotalTrades != 0 {
		t.Fatalf("hold counted as a trade")
	}
}

func TestExecuteSellWithoutPositionIsReportable(t *testing.T) {
	e, _, p := newTestEngine(t, 1000, models.PortfolioRiskMedium)

	out, err := e.Execute(context.Background(), p.ID, fused(models.Sell, 90), 100)
	if err != nil {
		t.Fatalf("sell without position must not error: %v", err)
	}
	if out.Status != models.OutcomeRejected || out.Reason != models.RejectNoPositionToSell {
		t.Fatalf("expected NO_POSITION_TO_SELL outcome, got %+v", out)
	}
}

func TestExecuteSellLiquidatesEntirePosition(t *testing.T) {
	e, l, p := newTestEngine(t, 1000, models.PortfolioRiskHigh)
	ctx := context.Background()

	if _, err := e.Execute(ctx, p.ID, fused(models.StrongBuy, 100), 50); err != nil {
		t.Fatalf("buy: %v", err)
	}
	out, err := e.Execute(ctx, p.ID, fused(models.Sell, 70), 60)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if out.Status != models.OutcomeExecuted || out.Record.Type != models.TradeSell {
		t.Fatalf("expected executed sell, got %+v", out)
	}
	got, _ := l.Get(p.ID)
	if got.PositionQuantity != 0 {
		t.Fatalf("sell left a partial position: %v", got.PositionQuantity)
	}
	if out.Record.RealizedPnL <= 0 {
		t.Fatalf("price went 50→60, expected profit, got %v", out.Record.RealizedPnL)
	}
}

func TestExecuteInactivePortfolio(t *testing.T) {
	e, l, p := newTestEngine(t, 1000, models.PortfolioRiskMedium)
	if err := l.SetActive(p.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	out, err := e.Execute(context.Background(), p.ID, fused(models.StrongBuy, 100), 100)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Status != models.OutcomeRejected || out.Reason != models.RejectPortfolioInactive {
		t.Fatalf("expected PORTFOLIO_INACTIVE rejection, got %+v", out)
	}
}

func TestExecuteUnknownPortfolio(t *testing.T) {
	e, _, _ := newTestEngine(t, 1000, models.PortfolioRiskMedium)
	if _, err := e.Execute(context.Background(), "missing", fused(models.Buy, 80), 100); err != ErrPortfolioNotFound {
		t.Fatalf("expected ErrPortfolioNotFound, got %v", err)
	}
}

func TestExecuteManualOverridesSizing(t *testing.T) {
	e, l, p := newTestEngine(t, 1000, models.PortfolioRiskLow)

	out, err := e.ExecuteManual(context.Background(), p.ID, models.TradeBuy, 0.5, 100)
	if err != nil {
		t.Fatalf("manual buy: %v", err)
	}
	if out.Status != models.OutcomeExecuted {
		t.Fatalf("expected executed, got %+v", out)
	}
	if !approx(out.Record.GrossValue, 500) {
		t.Fatalf("manual size ignored: gross %v, want 500", out.Record.GrossValue)
	}
	if out.Record.SignalSource != string(models.SourceManual) {
		t.Fatalf("signal source %q", out.Record.SignalSource)
	}
	got, _ := l.Get(p.ID)
	if !approx(got.CurrentBalance, 500) {
		t.Fatalf("balance %v, want 500", got.CurrentBalance)
	}
}

func TestExecuteManualRejectsBadFraction(t *testing.T) {
	e, _, p := newTestEngine(t, 1000, models.PortfolioRiskMedium)
	if _, err := e.ExecuteManual(context.Background(), p.ID, models.TradeBuy, 0.99, 100); err == nil {
		t.Fatalf("fraction above max must be rejected")
	}
	if _, err := e.ExecuteManual(context.Background(), p.ID, models.TradeBuy, 0, 100); err == nil {
		t.Fatalf("zero fraction must be rejected")
	}
}

func TestExecuteConcurrentCyclesStayConsistent(t *testing.T) {
	e, l, p := newTestEngine(t, 10000, models.PortfolioRiskMedium)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = e.Execute(ctx, p.ID, fused(models.Buy, 80), 100)
			} else {
				_, _ = e.Execute(ctx, p.ID, fused(models.Sell, 80), 100)
			}
		}(i)
	}
	wg.Wait()

	got, _ := l.Get(p.ID)
	if got.CurrentBalance < 0 {
		t.Fatalf("balance went negative: %v", got.CurrentBalance)
	}
	if got.PositionQuantity < 0 {
		t.Fatalf("position went negative: %v", got.PositionQuantity)
	}
	// total value can only shrink by commissions at constant price
	total := got.CurrentBalance + got.PositionQuantity*100
	if total > 10000+1e-6 {
		t.Fatalf("value created from nothing: %v", total)
	}
}
