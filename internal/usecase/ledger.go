package usecase

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"TradePilot/internal/domain/models"

	"github.com/google/uuid"
)

// Typed ledger failures. Surfaced by the execution engine as reject
// outcomes, never as panics.
var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoPosition        = errors.New("no position to sell")
)

// lot is one BUY applied since the position was last fully closed. Average
// cost basis is recomputed from open lots on demand, never cached.
type lot struct {
	quantity   float64
	grossValue float64
}

// portfolioState pairs the portfolio record with its serialization lock.
// The lock is held for the duration of one Execute call; cross-portfolio
// operations proceed in parallel.
type portfolioState struct {
	mu       sync.Mutex
	p        models.Portfolio
	openLots []lot
}

// Ledger owns the mutable state of all simulated portfolios. The two
// balance-affecting mutators (applyBuy, applySell) are package-private:
// only the execution engine reaches them.
type Ledger struct {
	mu             sync.RWMutex
	portfolios     map[string]*portfolioState
	commissionRate float64
}

// NewLedger creates an empty ledger with the given commission rate.
func NewLedger(commissionRate float64) *Ledger {
	return &Ledger{
		portfolios:     make(map[string]*portfolioState),
		commissionRate: commissionRate,
	}
}

// CommissionRate returns the configured commission rate.
func (l *Ledger) CommissionRate() float64 { return l.commissionRate }

// CreatePortfolio registers a new portfolio with balance = initial and an
// empty position.
func (l *Ledger) CreatePortfolio(owner, symbol string, initialBalance float64, risk models.PortfolioRisk) (models.Portfolio, error) {
	if initialBalance <= 0 {
		return models.Portfolio{}, fmt.Errorf("initial balance must be positive, got %v", initialBalance)
	}
	switch risk {
	case models.PortfolioRiskLow, models.PortfolioRiskMedium, models.PortfolioRiskHigh:
	default:
		risk = models.PortfolioRiskMedium
	}
	now := time.Now().UTC()
	p := models.Portfolio{
		ID:             uuid.NewString(),
		Owner:          owner,
		Symbol:         symbol,
		InitialBalance: initialBalance,
		CurrentBalance: initialBalance,
		RiskLevel:      risk,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	l.mu.Lock()
	l.portfolios[p.ID] = &portfolioState{p: p}
	l.mu.Unlock()
	return p, nil
}

// Get returns a copy of the portfolio record.
func (l *Ledger) Get(id string) (models.Portfolio, error) {
	st, err := l.state(id)
	if err != nil {
		return models.Portfolio{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.p, nil
}

// List returns copies of all portfolios, optionally filtered by owner.
func (l *Ledger) List(owner string) []models.Portfolio {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Portfolio, 0, len(l.portfolios))
	for _, st := range l.portfolios {
		st.mu.Lock()
		p := st.p
		st.mu.Unlock()
		if owner == "" || p.Owner == owner {
			out = append(out, p)
		}
	}
	return out
}

// SetActive soft-deletes or revives a portfolio. Trades keep referencing
// it either way.
func (l *Ledger) SetActive(id string, active bool) error {
	st, err := l.state(id)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.p.IsActive = active
	st.p.UpdatedAt = time.Now().UTC()
	st.mu.Unlock()
	return nil
}

// Snapshot builds the read-only dashboard view; position value is derived
// from lastPrice at read time.
func (l *Ledger) Snapshot(id string, lastPrice float64) (models.PortfolioSnapshot, error) {
	st, err := l.state(id)
	if err != nil {
		return models.PortfolioSnapshot{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return snapshotLocked(&st.p, lastPrice), nil
}

func snapshotLocked(p *models.Portfolio, lastPrice float64) models.PortfolioSnapshot {
	posValue := p.PositionQuantity * lastPrice
	winRate := 0.0
	if p.TotalTrades > 0 {
		winRate = float64(p.SuccessfulTrades) / float64(p.TotalTrades)
	}
	return models.PortfolioSnapshot{
		PortfolioID:      p.ID,
		Owner:            p.Owner,
		Symbol:           p.Symbol,
		InitialBalance:   p.InitialBalance,
		CurrentBalance:   p.CurrentBalance,
		PositionQuantity: p.PositionQuantity,
		PositionValue:    posValue,
		TotalValue:       p.CurrentBalance + posValue,
		TotalTrades:      p.TotalTrades,
		SuccessfulTrades: p.SuccessfulTrades,
		WinRate:          winRate,
		RealizedPnL:      p.RealizedPnL,
		RiskLevel:        p.RiskLevel,
		IsActive:         p.IsActive,
		LastPrice:        lastPrice,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (l *Ledger) state(id string) (*portfolioState, error) {
	l.mu.RLock()
	st, ok := l.portfolios[id]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrPortfolioNotFound
	}
	return st, nil
}

// avgCostBasisLocked computes the volume-weighted average purchase price of
// the open position. Caller holds st.mu.
func avgCostBasisLocked(st *portfolioState) float64 {
	var totalQty, totalGross float64
	for _, lo := range st.openLots {
		totalQty += lo.quantity
		totalGross += lo.grossValue
	}
	if totalQty <= 0 {
		return 0
	}
	return totalGross / totalQty
}

// applyBuy debits gross from the balance and adds the net quantity to the
// position. All-or-nothing: state is only touched after validation.
// Caller holds st.mu.
func (l *Ledger) applyBuy(st *portfolioState, gross, price float64, sigSource string, sigConfidence float64) (*models.TradeRecord, error) {
	if price <= 0 {
		return nil, fmt.Errorf("invalid price %v", price)
	}
	if gross > st.p.CurrentBalance {
		return nil, ErrInsufficientFunds
	}

	commission := gross * l.commissionRate
	netQuantity := (gross - commission) / price
	balanceBefore := st.p.CurrentBalance

	st.p.CurrentBalance -= gross
	st.p.PositionQuantity += netQuantity
	st.p.TotalTrades++
	st.p.UpdatedAt = time.Now().UTC()
	st.openLots = append(st.openLots, lot{quantity: netQuantity, grossValue: gross})

	return &models.TradeRecord{
		ID:               uuid.NewString(),
		PortfolioID:      st.p.ID,
		Symbol:           st.p.Symbol,
		Type:             models.TradeBuy,
		Quantity:         netQuantity,
		Price:            price,
		GrossValue:       gross,
		Commission:       commission,
		BalanceBefore:    balanceBefore,
		BalanceAfter:     st.p.CurrentBalance,
		SignalSource:     sigSource,
		SignalConfidence: sigConfidence,
		Timestamp:        st.p.UpdatedAt,
	}, nil
}

// applySell liquidates the entire position at price and books realized
// P&L against the average cost basis. Caller holds st.mu.
func (l *Ledger) applySell(st *portfolioState, price float64, sigSource string, sigConfidence float64) (*models.TradeRecord, error) {
	if price <= 0 {
		return nil, fmt.Errorf("invalid price %v", price)
	}
	if st.p.PositionQuantity <= 0 {
		return nil, ErrNoPosition
	}

	quantity := st.p.PositionQuantity
	proceeds := quantity * price
	commission := proceeds * l.commissionRate
	netProceeds := proceeds - commission
	avgCost := avgCostBasisLocked(st)
	realized := (price-avgCost)*quantity - commission
	balanceBefore := st.p.CurrentBalance

	st.p.CurrentBalance += netProceeds
	st.p.PositionQuantity = 0
	st.p.RealizedPnL += realized
	st.p.TotalTrades++
	if realized > 0 {
		st.p.SuccessfulTrades++
	}
	st.p.UpdatedAt = time.Now().UTC()
	st.openLots = nil // position fully closed, basis resets

	return &models.TradeRecord{
		ID:               uuid.NewString(),
		PortfolioID:      st.p.ID,
		Symbol:           st.p.Symbol,
		Type:             models.TradeSell,
		Quantity:         quantity,
		Price:            price,
		GrossValue:       proceeds,
		Commission:       commission,
		RealizedPnL:      realized,
		BalanceBefore:    balanceBefore,
		BalanceAfter:     st.p.CurrentBalance,
		SignalSource:     sigSource,
		SignalConfidence: sigConfidence,
		Timestamp:        st.p.UpdatedAt,
	}, nil
}
