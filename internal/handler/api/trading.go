package api

import (
	"errors"

	"TradePilot/internal/domain/models"
	drepo "TradePilot/internal/domain/repository"
	"TradePilot/internal/usecase"
	xhttp "TradePilot/pkg/http"
	xlogger "TradePilot/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TradingHandler exposes the portfolio and fusion API over Echo.
type TradingHandler struct {
	logger *xlogger.Logger
	ledger *usecase.Ledger
	exec   *usecase.ExecutionEngine
	fuser  *usecase.FusionService
	cycle  *usecase.TradeCycle
	feed   drepo.PriceFeed
	log    drepo.TradeLog
}

func NewTradingHandler(
	logger *xlogger.Logger,
	ledger *usecase.Ledger,
	exec *usecase.ExecutionEngine,
	fuser *usecase.FusionService,
	cycle *usecase.TradeCycle,
	feed drepo.PriceFeed,
	log drepo.TradeLog,
) *TradingHandler {
	return &TradingHandler{
		logger: logger,
		ledger: ledger,
		exec:   exec,
		fuser:  fuser,
		cycle:  cycle,
		feed:   feed,
		log:    log,
	}
}

func (h *TradingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/portfolios", h.CreatePortfolio)
	g.GET("/portfolios", h.ListPortfolios)
	g.GET("/portfolios/:id", h.GetPortfolio)
	g.DELETE("/portfolios/:id", h.DeactivatePortfolio)
	g.GET("/portfolios/:id/history", h.History)
	g.POST("/portfolios/:id/execute", h.Execute)
	g.POST("/portfolios/:id/trade", h.ManualTrade)
	g.POST("/portfolios/:id/cycle", h.Cycle)
	g.POST("/fuse", h.Fuse)
	g.GET("/fuse/:symbol", h.LatestFusion)
}

func (h *TradingHandler) CreatePortfolio(c echo.Context) error {
	req := &models.CreatePortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.ledger.CreatePortfolio(req.Owner, req.Symbol, req.InitialBalance, models.PortfolioRisk(req.RiskLevel))
	if err != nil {
		h.logger.Error("create portfolio failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, p)
}

func (h *TradingHandler) ListPortfolios(c echo.Context) error {
	owner := c.QueryParam("owner")
	return xhttp.SuccessResponse(c, h.ledger.List(owner))
}

func (h *TradingHandler) GetPortfolio(c echo.Context) error {
	id := c.Param("id")
	p, err := h.ledger.Get(id)
	if err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("portfolio not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	price, _ := h.feed.LastPrice(p.Symbol)
	snap, err := h.ledger.Snapshot(id, price)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *TradingHandler) DeactivatePortfolio(c echo.Context) error {
	id := c.Param("id")
	if err := h.ledger.SetActive(id, false); err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("portfolio not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *TradingHandler) History(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.ledger.Get(id); err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("portfolio not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.log == nil {
		return xhttp.ListResponse(c, []*models.TradeRecord{}, 0)
	}
	recs, err := h.log.History(c.Request().Context(), id, req.Limit)
	if err != nil {
		h.logger.Error("trade history failed", xlogger.Error(err), xlogger.String("portfolio", id))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *TradingHandler) Fuse(c echo.Context) error {
	req := &models.FuseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals := make([]models.Signal, 0, len(req.Signals))
	for _, p := range req.Signals {
		signals = append(signals, p.ToSignal())
	}
	res := h.fuser.Fuse(c.Request().Context(), req.Symbol, signals)
	return xhttp.SuccessResponse(c, res)
}

func (h *TradingHandler) LatestFusion(c echo.Context) error {
	symbol := c.Param("symbol")
	res, ok := h.fuser.Latest(symbol)
	if !ok {
		return xhttp.NotFoundResponse(c, "no recent fusion for symbol")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *TradingHandler) Execute(c echo.Context) error {
	id := c.Param("id")
	req := &models.ExecuteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.ledger.Get(id)
	if err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("portfolio not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	price := req.Price
	if price <= 0 {
		last, ok := h.feed.LastPrice(p.Symbol)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no live price for symbol, pass price explicitly"))
		}
		price = last
	}

	signals := make([]models.Signal, 0, len(req.Signals))
	for _, sp := range req.Signals {
		signals = append(signals, sp.ToSignal())
	}
	res := h.fuser.Fuse(c.Request().Context(), p.Symbol, signals)

	outcome, err := h.exec.Execute(c.Request().Context(), id, res, price)
	if err != nil {
		h.logger.Error("execute failed", xlogger.Error(err), xlogger.String("portfolio", id))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, outcome)
}

func (h *TradingHandler) ManualTrade(c echo.Context) error {
	id := c.Param("id")
	req := &models.ManualTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.ledger.Get(id)
	if err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("portfolio not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	price := req.Price
	if price <= 0 {
		last, ok := h.feed.LastPrice(p.Symbol)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no live price for symbol, pass price explicitly"))
		}
		price = last
	}

	outcome, err := h.exec.ExecuteManual(c.Request().Context(), id, models.TradeType(req.Action), req.SizeFraction, price)
	if err != nil {
		h.logger.Error("manual trade failed", xlogger.Error(err), xlogger.String("portfolio", id))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, outcome)
}

func (h *TradingHandler) Cycle(c echo.Context) error {
	id := c.Param("id")
	cr, err := h.cycle.RunOnce(c.Request().Context(), id, 0)
	if err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("portfolio not found"))
		}
		h.logger.Error("cycle failed", xlogger.Error(err), xlogger.String("portfolio", id))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, cr)
}
