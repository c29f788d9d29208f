package usecase

import (
	"math"
	"testing"

	"TradePilot/internal/domain/models"
)

const commission = 0.001

func newTestLedger(t *testing.T, balance float64, risk models.PortfolioRisk) (*Ledger, models.Portfolio) {
	t.Helper()
	l := NewLedger(commission)
	p, err := l.CreatePortfolio("tester", "BTCUSDT", balance, risk)
	if err != nil {
		t.Fatalf("create portfolio: %v", err)
	}
	return l, p
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCreatePortfolioDefaults(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	if p.CurrentBalance != p.InitialBalance {
		t.Fatalf("fresh portfolio balance %v != initial %v", p.CurrentBalance, p.InitialBalance)
	}
	if p.PositionQuantity != 0 {
		t.Fatalf("fresh portfolio has position %v", p.PositionQuantity)
	}
	if !p.IsActive {
		t.Fatalf("fresh portfolio should be active")
	}
	if _, err := l.CreatePortfolio("tester", "BTCUSDT", -5, models.PortfolioRiskLow); err == nil {
		t.Fatalf("negative initial balance must be rejected")
	}
}

func TestApplyBuyDebitsAndOpensPosition(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	rec, err := l.applyBuy(st, 200, 50, "TEST", 80)
	st.mu.Unlock()
	if err != nil {
		t.Fatalf("applyBuy: %v", err)
	}

	wantCommission := 200 * commission
	wantQty := (200 - wantCommission) / 50
	if !approx(rec.Commission, wantCommission) {
		t.Fatalf("commission %v, want %v", rec.Commission, wantCommission)
	}
	if !approx(rec.Quantity, wantQty) {
		t.Fatalf("quantity %v, want %v", rec.Quantity, wantQty)
	}
	got, _ := l.Get(p.ID)
	if !approx(got.CurrentBalance, 800) {
		t.Fatalf("balance %v, want 800", got.CurrentBalance)
	}
	if !approx(got.PositionQuantity, wantQty) {
		t.Fatalf("position %v, want %v", got.PositionQuantity, wantQty)
	}
	if rec.BalanceBefore != 1000 || !approx(rec.BalanceAfter, 800) {
		t.Fatalf("balance before/after %v/%v", rec.BalanceBefore, rec.BalanceAfter)
	}
}

func TestApplyBuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	l, p := newTestLedger(t, 100, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	_, err := l.applyBuy(st, 500, 50, "TEST", 80)
	st.mu.Unlock()
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	got, _ := l.Get(p.ID)
	if got.CurrentBalance != 100 || got.PositionQuantity != 0 || got.TotalTrades != 0 {
		t.Fatalf("failed buy mutated state: %+v", got)
	}
}

func TestApplySellWithoutPosition(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	_, err := l.applySell(st, 50, "TEST", 80)
	st.mu.Unlock()
	if err != ErrNoPosition {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
	got, _ := l.Get(p.ID)
	if got.CurrentBalance != 1000 {
		t.Fatalf("failed sell mutated balance: %v", got.CurrentBalance)
	}
}

func TestRoundTripCostsExactlyBothCommissions(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)
	price := 25000.0

	st.mu.Lock()
	buyRec, err := l.applyBuy(st, 1000, price, "TEST", 90)
	if err != nil {
		st.mu.Unlock()
		t.Fatalf("applyBuy: %v", err)
	}
	sellRec, err := l.applySell(st, price, "TEST", 90)
	st.mu.Unlock()
	if err != nil {
		t.Fatalf("applySell: %v", err)
	}

	got, _ := l.Get(p.ID)
	wantBalance := 1000 - buyRec.Commission - sellRec.Commission
	if !approx(got.CurrentBalance, wantBalance) {
		t.Fatalf("round-trip balance %v, want %v", got.CurrentBalance, wantBalance)
	}
	if got.PositionQuantity != 0 {
		t.Fatalf("position not closed: %v", got.PositionQuantity)
	}
	wantPnL := -(buyRec.Commission + sellRec.Commission)
	if !approx(sellRec.RealizedPnL, wantPnL) {
		t.Fatalf("realized pnl %v, want %v", sellRec.RealizedPnL, wantPnL)
	}
	if got.SuccessfulTrades != 0 {
		t.Fatalf("losing round trip counted as successful")
	}
}

func TestAverageCostBasisAcrossLots(t *testing.T) {
	l, p := newTestLedger(t, 10000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	if _, err := l.applyBuy(st, 1000, 100, "TEST", 90); err != nil {
		st.mu.Unlock()
		t.Fatalf("buy 1: %v", err)
	}
	if _, err := l.applyBuy(st, 1000, 200, "TEST", 90); err != nil {
		st.mu.Unlock()
		t.Fatalf("buy 2: %v", err)
	}
	avg := avgCostBasisLocked(st)
	st.mu.Unlock()

	// qty1 = 999/100, qty2 = 999/200; avg = 2000 / (qty1+qty2)
	qty1 := (1000 - 1000*commission) / 100.0
	qty2 := (1000 - 1000*commission) / 200.0
	want := 2000 / (qty1 + qty2)
	if !approx(avg, want) {
		t.Fatalf("avg cost basis %v, want %v", avg, want)
	}
}

func TestBasisResetsAfterFullClose(t *testing.T) {
	l, p := newTestLedger(t, 10000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	if _, err := l.applyBuy(st, 1000, 100, "TEST", 90); err != nil {
		st.mu.Unlock()
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.applySell(st, 150, "TEST", 90); err != nil {
		st.mu.Unlock()
		t.Fatalf("sell: %v", err)
	}
	if avg := avgCostBasisLocked(st); avg != 0 {
		st.mu.Unlock()
		t.Fatalf("basis not reset after close: %v", avg)
	}
	// new lot after reopen must not blend with the closed one
	if _, err := l.applyBuy(st, 500, 250, "TEST", 90); err != nil {
		st.mu.Unlock()
		t.Fatalf("reopen: %v", err)
	}
	avg := avgCostBasisLocked(st)
	st.mu.Unlock()
	want := 500 / ((500 - 500*commission) / 250.0)
	if !approx(avg, want) {
		t.Fatalf("reopened basis %v, want %v", avg, want)
	}
}

func TestProfitableSellCountsAsSuccessful(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	if _, err := l.applyBuy(st, 500, 100, "TEST", 90); err != nil {
		st.mu.Unlock()
		t.Fatalf("buy: %v", err)
	}
	rec, err := l.applySell(st, 200, "TEST", 90)
	st.mu.Unlock()
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if rec.RealizedPnL <= 0 {
		t.Fatalf("expected profit, got %v", rec.RealizedPnL)
	}
	got, _ := l.Get(p.ID)
	if got.SuccessfulTrades != 1 || got.TotalTrades != 2 {
		t.Fatalf("counters: successful=%d total=%d", got.SuccessfulTrades, got.TotalTrades)
	}
	snap, _ := l.Snapshot(p.ID, 200)
	if !approx(snap.WinRate, 0.5) {
		t.Fatalf("win rate %v, want 0.5", snap.WinRate)
	}
}

func TestSnapshotDerivesPositionValue(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	st, _ := l.state(p.ID)

	st.mu.Lock()
	rec, err := l.applyBuy(st, 400, 20, "TEST", 75)
	st.mu.Unlock()
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	snap, err := l.Snapshot(p.ID, 25)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !approx(snap.PositionValue, rec.Quantity*25) {
		t.Fatalf("position value %v, want %v", snap.PositionValue, rec.Quantity*25)
	}
	if !approx(snap.TotalValue, snap.CurrentBalance+snap.PositionValue) {
		t.Fatalf("total value mismatch: %+v", snap)
	}
}

func TestSetActive(t *testing.T) {
	l, p := newTestLedger(t, 1000, models.PortfolioRiskMedium)
	if err := l.SetActive(p.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, _ := l.Get(p.ID)
	if got.IsActive {
		t.Fatalf("portfolio still active after deactivate")
	}
	if err := l.SetActive("missing", false); err != ErrPortfolioNotFound {
		t.Fatalf("expected ErrPortfolioNotFound, got %v", err)
	}
}
