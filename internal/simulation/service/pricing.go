package service

import (
	"fmt"

	"golang-paper-trader/internal/simulation/config"

	"github.com/shopspring/decimal"
)

const (
	priceScale    = 6
	notionalScale = 4
	moneyScale    = 2
	avgCostScale  = 6
)

// Pricing holds the fee schedule and opening balance used by the ledger.
type Pricing struct {
	OpeningCash decimal.Decimal
	FeeRate     decimal.Decimal
	MinFee      decimal.Decimal
}

// DefaultPricing is 10,000.00 opening cash, 5 bps per trade, 0.50 minimum fee.
var DefaultPricing = Pricing{
	OpeningCash: decimal.RequireFromString("10000.00"),
	FeeRate:     decimal.RequireFromString("0.0005"),
	MinFee:      decimal.RequireFromString("0.50"),
}

// NewPricing parses the simulation section. Empty values fall back to DefaultPricing.
func NewPricing(cfg config.Simulation) (Pricing, error) {
	p := DefaultPricing
	for _, f := range []struct {
		name  string
		raw   string
		value *decimal.Decimal
	}{
		{"opening_cash", cfg.OpeningCash, &p.OpeningCash},
		{"fee_rate", cfg.FeeRate, &p.FeeRate},
		{"min_fee", cfg.MinFee, &p.MinFee},
	} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Pricing{}, fmt.Errorf("invalid simulation.%s %q: %w", f.name, f.raw, err)
		}
		if v.IsNegative() {
			return Pricing{}, fmt.Errorf("simulation.%s must not be negative", f.name)
		}
		*f.value = v
	}
	return p, nil
}

// Fee is max(MinFee, round(FeeRate * notional, 2)).
func (p Pricing) Fee(notional decimal.Decimal) decimal.Decimal {
	return decimal.Max(p.MinFee, p.FeeRate.Mul(notional).Round(moneyScale))
}

func roundPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(priceScale)
}

func notionalOf(price decimal.Decimal, quantity int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity)).Round(notionalScale)
}

// averageCostAfterBuy folds a buy (fee included) into the existing cost basis.
func averageCostAfterBuy(oldQty int64, oldAvg, notional, fee decimal.Decimal, buyQty int64) decimal.Decimal {
	basis := decimal.NewFromInt(oldQty).Mul(oldAvg).Add(notional).Add(fee)
	return basis.DivRound(decimal.NewFromInt(oldQty+buyQty), avgCostScale)
}

func realizedOnSell(price, avgCost decimal.Decimal, quantity int64, fee decimal.Decimal) decimal.Decimal {
	return price.Sub(avgCost).Mul(decimal.NewFromInt(quantity)).Sub(fee).Round(moneyScale)
}
