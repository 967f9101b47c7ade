// Package metrics provides Prometheus instrumentation for the simulation service.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersTotal counts orders by action and outcome ("executed" or the rejection reason).
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_orders_total",
		Help: "Total number of simulated orders by action and result",
	}, []string{"action", "result"})

	OrderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simulation_order_latency_seconds",
		Help:    "Order execution latency in seconds, quote fetch included",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	// TradedNotional accumulates executed notional per action. Symbols are
	// client supplied and stay out of the label set.
	TradedNotional = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_traded_notional_total",
		Help: "Cumulative traded notional",
	}, []string{"action"})

	QuoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_quote_requests_total",
		Help: "Quote lookups by result (ok, cached, invalid, failed, no_price)",
	}, []string{"result"})

	TradeEventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_trade_events_consumed_total",
		Help: "Trade stream messages handled by the consumer, by result",
	}, []string{"result"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simulation_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5, 10},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus scrape endpoint as an Echo handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware records request count and duration per route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
