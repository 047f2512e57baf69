// Package policy holds pre-trade checks applied by the engine before an
// order reaches the book or auction. The matching core itself carries no
// trading policy; rules are an optional hook the host composes.
package policy

import "github.com/voltgrid/tradecore/pkg/engine/model"

type Rule interface {
	Check(order *model.SubmitOrder) error
}
