package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PlaceOrderRequest is the body of POST /simulation/order. userId and
// quantity accept either JSON numbers or numeric strings.
type PlaceOrderRequest struct {
	UserID   FlexInt `json:"userId" swaggertype:"integer" example:"1"`
	Action   string  `json:"action" example:"BUY"`
	Symbol   string  `json:"symbol" example:"AAPL"`
	Quantity FlexInt `json:"quantity" swaggertype:"integer" example:"10"`
}

// FlexInt is an integer decoded from a JSON number or a numeric string.
// Invalid leaves Value at zero and sets Valid to false instead of failing
// the whole body, so the caller can reject with its own message.
type FlexInt struct {
	Value int64
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	f.Value, f.Valid = 0, false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		f.Value, f.Valid = v, true
		return nil
	}

	// Accept 10.0 but not 10.5.
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v == float64(int64(v)) {
		f.Value, f.Valid = int64(v), true
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// Int returns the parsed value, or 0 when the input was not an integer.
func (f FlexInt) Int() int64 {
	if !f.Valid {
		return 0
	}
	return f.Value
}

// PlaceOrderResponse is the body returned after an executed order.
type PlaceOrderResponse struct {
	Message  string `json:"message"`
	TradeRef string `json:"trade_ref"`
	PortfolioResponse
}

// OrderMessage renders the confirmation line, e.g. "BUY AAPL x10 @ 100.00".
func OrderMessage(action, symbol string, quantity int64, price float64) string {
	return fmt.Sprintf("%s %s x%d @ %.2f", action, symbol, quantity, price)
}
