package policy

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

// tickBandYAML is the on-disk form; prices are decimal strings because
// yaml cannot decode scalars into decimal.Decimal directly.
type tickBandYAML struct {
	MaxPrice string `yaml:"max_price"` // "0" = no upper bound
	Step     string `yaml:"step"`
}

type tickBand struct {
	maxPrice decimal.Decimal
	step     decimal.Decimal
}

// TickSizeRule rejects orders whose price is not a multiple of the tick
// step configured for their symbol. Symbols without config pass.
type TickSizeRule struct {
	bands map[string][]tickBand
}

// NewTickSizeRuleFromFile loads per-symbol tick bands from a yaml file.
func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string][]tickBandYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	bands := make(map[string][]tickBand, len(raw))
	for symbol, entries := range raw {
		for _, e := range entries {
			maxPrice, err := decimal.NewFromString(e.MaxPrice)
			if err != nil {
				return nil, fmt.Errorf("tick config for %s: bad max_price %q: %w", symbol, e.MaxPrice, err)
			}
			step, err := decimal.NewFromString(e.Step)
			if err != nil {
				return nil, fmt.Errorf("tick config for %s: bad step %q: %w", symbol, e.Step, err)
			}
			if step.Sign() <= 0 {
				return nil, fmt.Errorf("tick config for %s: step must be positive", symbol)
			}
			bands[symbol] = append(bands[symbol], tickBand{maxPrice: maxPrice, step: step})
		}
	}

	return &TickSizeRule{bands: bands}, nil
}

func (r *TickSizeRule) Check(order *model.SubmitOrder) error {
	bands, ok := r.bands[order.Symbol]
	if !ok {
		return nil
	}

	for _, band := range bands {
		if band.maxPrice.IsZero() || order.Price.LessThanOrEqual(band.maxPrice) {
			if !order.Price.Mod(band.step).IsZero() {
				return fmt.Errorf("price %s violates tick size %s for %s",
					order.Price, band.step, order.Symbol)
			}
			return nil
		}
	}

	return nil
}
