package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/service"
	"golang-paper-trader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SimulationHandler handles HTTP requests for the paper-trading simulation.
type SimulationHandler struct {
	orderService     service.OrderService
	portfolioService service.PortfolioService
	quoteService     service.QuoteService
	logger           *logger.Logger
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(
	orderService service.OrderService,
	portfolioService service.PortfolioService,
	quoteService service.QuoteService,
	logger *logger.Logger,
) *SimulationHandler {
	return &SimulationHandler{
		orderService:     orderService,
		portfolioService: portfolioService,
		quoteService:     quoteService,
		logger:           logger,
	}
}

// RegisterRoutes registers the simulation routes to the Echo group.
func (h *SimulationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/order", h.PlaceOrder)
	g.GET("/portfolio/:userId", h.GetPortfolio)
	g.GET("/price", h.GetPrice)
	g.GET("/quote", h.GetQuote)
}

// PlaceOrder godoc
// @Summary Place a simulated market order
// @Description Executes a BUY or SELL at the live price and returns the updated portfolio
// @Tags simulation
// @Accept  json
// @Produce  json
// @Param   order  body    dto.PlaceOrderRequest   true    "Order to place"
// @Success 200 {object} dto.PlaceOrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /simulation/order [post]
func (h *SimulationHandler) PlaceOrder(c echo.Context) error {
	var req dto.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: service.ErrInvalidOrder.Reason})
	}

	ctx := c.Request().Context()
	result, err := h.orderService.PlaceOrder(ctx, service.PlaceOrderParams{
		UserID:   req.UserID.Int(),
		Action:   req.Action,
		Symbol:   req.Symbol,
		Quantity: req.Quantity.Int(),
	})
	if err != nil {
		var rejection *service.Rejection
		if errors.As(err, &rejection) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: rejection.Reason})
		}
		h.logger.ErrorContext(ctx, "Failed to process order", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to process order"})
	}

	trade := result.Trade
	return c.JSON(http.StatusOK, dto.PlaceOrderResponse{
		Message:           dto.OrderMessage(trade.Action, trade.Symbol, trade.Quantity, trade.Price.InexactFloat64()),
		TradeRef:          trade.Ref,
		PortfolioResponse: dto.NewPortfolioResponse(result.Snapshot),
	})
}

// GetPortfolio godoc
// @Summary Get a user's simulated portfolio
// @Description Returns cash, realized P&L, fees, open positions and recent trades. Creates the account on first access.
// @Tags simulation
// @Produce  json
// @Param   userId  path    int true    "User ID"
// @Success 200 {object} dto.PortfolioResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /simulation/portfolio/{userId} [get]
func (h *SimulationHandler) GetPortfolio(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid userId"})
	}

	ctx := c.Request().Context()
	snapshot, err := h.portfolioService.GetSnapshot(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load portfolio", logger.ErrorField(err), logger.Field("user_id", userID))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load portfolio"})
	}

	return c.JSON(http.StatusOK, dto.NewPortfolioResponse(snapshot))
}

// GetPrice godoc
// @Summary Get the live price of a symbol
// @Description Lookup failures are reported in the error field with a 200 status
// @Tags simulation
// @Produce  json
// @Param   symbol  query    string true    "Ticker symbol"
// @Success 200 {object} dto.PriceResponse
// @Failure 400 {object} dto.PriceResponse
// @Router /simulation/price [get]
func (h *SimulationHandler) GetPrice(c echo.Context) error {
	quote := h.quoteService.GetQuote(c.Request().Context(), c.QueryParam("symbol"))
	resp := dto.PriceResponse{Price: quote.Price, Error: quote.Error}
	if quote.Error != nil && *quote.Error == service.QuoteErrInvalidSymbol {
		return c.JSON(http.StatusBadRequest, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetQuote godoc
// @Summary Get the full quote of a symbol
// @Tags simulation
// @Produce  json
// @Param   symbol  query    string true    "Ticker symbol"
// @Success 200 {object} dto.Quote
// @Failure 400 {object} dto.Quote
// @Router /simulation/quote [get]
func (h *SimulationHandler) GetQuote(c echo.Context) error {
	quote := h.quoteService.GetQuote(c.Request().Context(), c.QueryParam("symbol"))
	if quote.Error != nil && *quote.Error == service.QuoteErrInvalidSymbol {
		return c.JSON(http.StatusBadRequest, quote)
	}
	return c.JSON(http.StatusOK, quote)
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(message string) echo.HandlerFunc {
	resp := dto.HealthResponse{OK: true, Message: message}
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, resp)
	}
}

// ContextRequestID copies the X-Request-ID header set by the RequestID
// middleware into the request context so service logs carry it.
func ContextRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, id)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
