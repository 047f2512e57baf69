package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	EventAccepted OrderEventType = "Accepted"
	EventRejected OrderEventType = "Rejected"
	EventTraded   OrderEventType = "Traded"
	EventCanceled OrderEventType = "Canceled"
	EventCleared  OrderEventType = "Cleared"
)

// OrderEvent is one entry in an order's lifecycle journal.
type OrderEvent struct {
	EventID       string
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Type          OrderEventType
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	Reason        string
	Timestamp     time.Time
}

func NewOrderEvent(orderID int64, clientOrderID, symbol string, typ OrderEventType, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:       uuid.New().String(),
		OrderID:       orderID,
		ClientOrderID: clientOrderID,
		Symbol:        symbol,
		Type:          typ,
		Timestamp:     ts,
	}
}
