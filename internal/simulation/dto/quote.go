package dto

// Quote is the normalized result of a quote lookup. Price is nil when no
// usable price could be obtained, in which case Error carries the reason.
type Quote struct {
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price"`
	Currency  string   `json:"currency,omitempty"`
	PERatio   *float64 `json:"peRatio"`
	ForwardPE *float64 `json:"forwardPE"`
	MarketCap *float64 `json:"marketCap"`
	Error     *string  `json:"error"`
}

// HasPrice reports whether the quote carries a positive price.
func (q Quote) HasPrice() bool {
	return q.Price != nil && *q.Price > 0
}

// PriceResponse is the body of GET /simulation/price.
type PriceResponse struct {
	Price *float64 `json:"price"`
	Error *string  `json:"error"`
}

// YahooQuoteResponse mirrors the v7 quote endpoint envelope.
type YahooQuoteResponse struct {
	QuoteResponse struct {
		Result []YahooQuoteResult `json:"result"`
		Error  *YahooError        `json:"error"`
	} `json:"quoteResponse"`
}

type YahooQuoteResult struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	Currency           string   `json:"currency"`
	TrailingPE         *float64 `json:"trailingPE"`
	ForwardPE          *float64 `json:"forwardPE"`
	MarketCap          *float64 `json:"marketCap"`
}

type YahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
