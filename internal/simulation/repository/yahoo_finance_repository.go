package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// YahooFinanceRepository fetches live quotes from Yahoo Finance.
type YahooFinanceRepository interface {
	// GetQuote returns nil, nil when Yahoo knows nothing about the symbol.
	GetQuote(ctx context.Context, symbol string) (*dto.YahooQuoteResult, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	maxPerMinute := cfg.YahooFinance.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	timeout := cfg.YahooFinance.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestLimiter: requestLimiter,
	}
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, symbol string) (*dto.YahooQuoteResult, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", r.cfg.YahooFinance.BaseURL, url.QueryEscape(symbol))

	body, err := r.sendRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var response dto.YahooQuoteResponse
	if err := json.Unmarshal(body, &response); err != nil {
		r.log.ErrorContext(ctx, "Failed to decode Yahoo Finance quote", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if response.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo finance error %s: %s", response.QuoteResponse.Error.Code, response.QuoteResponse.Error.Description)
	}

	for i := range response.QuoteResponse.Result {
		if response.QuoteResponse.Result[i].Symbol == symbol {
			return &response.QuoteResponse.Result[i], nil
		}
	}
	if len(response.QuoteResponse.Result) > 0 {
		r.log.WarnContext(ctx, "Yahoo Finance returned no row for the requested symbol",
			logger.StringField("symbol", symbol),
			logger.StringField("returned_symbol", response.QuoteResponse.Result[0].Symbol))
	}

	return nil, nil
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, endpoint string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", endpoint),
		zap.Int("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance API", fields...)
		return nil, fmt.Errorf("yahoo finance returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from Yahoo Finance API", fields...)
		return nil, err
	}

	return body, nil
}
