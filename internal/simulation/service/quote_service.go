package service

import (
	"context"
	"time"

	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/metrics"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/ticker"
	"golang-paper-trader/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const (
	QuoteErrInvalidSymbol = "Invalid symbol"
	QuoteErrFetchFailed   = "Quote fetch failed"
	QuoteErrNoPrice       = "No regularMarketPrice"

	defaultCurrency     = "USD"
	defaultQuoteTimeout = 8 * time.Second
)

// QuoteService resolves user input to a live quote. Failures are reported in
// Quote.Error and never returned as Go errors.
type QuoteService interface {
	GetQuote(ctx context.Context, input string) dto.Quote
}

type quoteService struct {
	cfg            *config.Config
	log            *logger.Logger
	yahooRepo      repository.YahooFinanceRepository
	tradeEventRepo repository.TradeEventRepository
	inmemoryCache  *cache.Cache
	now            func() time.Time
}

func NewQuoteService(
	cfg *config.Config,
	log *logger.Logger,
	yahooRepo repository.YahooFinanceRepository,
	tradeEventRepo repository.TradeEventRepository,
) QuoteService {
	s := &quoteService{
		cfg:            cfg,
		log:            log,
		yahooRepo:      yahooRepo,
		tradeEventRepo: tradeEventRepo,
		now:            time.Now,
	}
	if ttl := cfg.YahooFinance.CacheTTL; ttl > 0 {
		s.inmemoryCache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *quoteService) GetQuote(ctx context.Context, input string) dto.Quote {
	symbol, ok := ticker.Parse(input)
	if !ok {
		metrics.QuoteRequestsTotal.WithLabelValues("invalid").Inc()
		return failedQuote(symbol, QuoteErrInvalidSymbol)
	}

	if s.inmemoryCache != nil {
		if cached, found := s.inmemoryCache.Get(symbol); found {
			metrics.QuoteRequestsTotal.WithLabelValues("cached").Inc()
			return cached.(dto.Quote)
		}
	}

	timeout := s.cfg.YahooFinance.Timeout
	if timeout <= 0 {
		timeout = defaultQuoteTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := s.yahooRepo.GetQuote(fetchCtx, symbol)
	if err != nil {
		s.log.WarnContext(ctx, "Quote fetch failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		metrics.QuoteRequestsTotal.WithLabelValues("failed").Inc()
		return failedQuote(symbol, QuoteErrFetchFailed)
	}
	if result == nil || result.RegularMarketPrice == nil {
		metrics.QuoteRequestsTotal.WithLabelValues("no_price").Inc()
		return failedQuote(symbol, QuoteErrNoPrice)
	}

	quote := dto.Quote{
		Symbol:    symbol,
		Price:     utils.ToPointer(*result.RegularMarketPrice),
		Currency:  result.Currency,
		PERatio:   result.TrailingPE,
		ForwardPE: result.ForwardPE,
		MarketCap: result.MarketCap,
	}
	if quote.Currency == "" {
		quote.Currency = defaultCurrency
	}

	if s.inmemoryCache != nil {
		s.inmemoryCache.SetDefault(symbol, quote)
	}
	metrics.QuoteRequestsTotal.WithLabelValues("ok").Inc()

	price, at := *quote.Price, s.now()
	utils.GoSafe(func() {
		redisCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.tradeEventRepo.SetLastPrice(redisCtx, symbol, price, at); err != nil {
			s.log.Warn("Failed to store last price", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
	})

	return quote
}

func failedQuote(symbol, reason string) dto.Quote {
	return dto.Quote{Symbol: symbol, Error: utils.ToPointer(reason)}
}
