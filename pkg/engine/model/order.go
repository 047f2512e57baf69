package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Mechanism selects which matching mechanism an order participates in:
// the rolling continuous book or the periodic uniform-price auction.
type Mechanism string

const (
	MechanismContinuous Mechanism = "CONTINUOUS"
	MechanismAuction    Mechanism = "AUCTION"
)

type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusRejected        OrderStatus = "Rejected"
)

// SubmitOrder is a caller's intent to trade, with prices and quantities
// still in boundary decimal form.
type SubmitOrder struct {
	ClientOrderID string
	Account       string
	Symbol        string
	Side          OrderSide
	Mechanism     Mechanism
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	TransactTime  time.Time
}

// OrderAck reports acceptance of a submitted order and the engine id
// assigned to it.
type OrderAck struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Status        OrderStatus
}

// TradeReport is one fill from the continuous book, converted back to
// decimals for the caller. It is a preview: the settlement layer is the
// sole authority over whether value moves.
type TradeReport struct {
	Symbol      string
	BuyOrderID  int64
	SellOrderID int64
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	ExecutedAt  time.Time
}

// ClearingReport is the uniform-price outcome of one auction window.
type ClearingReport struct {
	Symbol    string
	Price     decimal.Decimal
	Volume    decimal.Decimal
	ClearedAt time.Time
}

// PriceLevel is one aggregated depth level in decimal form.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// DepthSnapshot mirrors book.DepthSnapshot at the API boundary. Each
// level reports its own quantity, not a cumulative sum.
type DepthSnapshot struct {
	Symbol string
	Bids   []PriceLevel
	Asks   []PriceLevel
}

// Quotes is a top-of-book read. Nil fields mean the corresponding side
// is empty.
type Quotes struct {
	Symbol   string
	BidPrice *decimal.Decimal
	AskPrice *decimal.Decimal
	MidPrice *decimal.Decimal
	Spread   *decimal.Decimal
}
