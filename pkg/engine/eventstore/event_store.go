package eventstore

import "github.com/voltgrid/tradecore/pkg/engine/model"

// EventStore journals order lifecycle events and resolves client order
// ids back to engine order ids, which doubles as the duplicate-submission
// check.
type EventStore interface {
	Append(ev *model.OrderEvent)
	Events(orderID int64) []*model.OrderEvent
	OrderIDByClientID(clientOrderID string) (int64, bool)
	DeleteByOrderID(orderID int64)
}
