package policy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

// Band is an inclusive floor/ceiling pair for one symbol.
type Band struct {
	Floor   decimal.Decimal
	Ceiling decimal.Decimal
}

// PriceBandRule rejects orders priced outside their symbol's band.
// Symbols without a band pass.
type PriceBandRule struct {
	bands map[string]Band
}

func NewPriceBandRule(bands map[string]Band) *PriceBandRule {
	return &PriceBandRule{bands: bands}
}

func (r *PriceBandRule) Check(order *model.SubmitOrder) error {
	band, ok := r.bands[order.Symbol]
	if !ok {
		return nil
	}
	if order.Price.LessThan(band.Floor) || order.Price.GreaterThan(band.Ceiling) {
		return fmt.Errorf("price %s outside band [%s, %s] for %s",
			order.Price, band.Floor, band.Ceiling, order.Symbol)
	}
	return nil
}
