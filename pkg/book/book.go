// Package book implements a single-market continuous limit order book
// with strict price-time priority, partial fills and exact scaled-integer
// arithmetic. The book performs no locking and starts no goroutines: it
// runs to completion on the caller's goroutine and the embedding layer is
// responsible for serializing access.
package book

// DepthLevel is one aggregated price level of a depth snapshot.
type DepthLevel struct {
	Price    int64
	Quantity int64
}

// DepthSnapshot is an aggregated view of the book, bids best-first
// (price descending) and asks best-first (price ascending).
type DepthSnapshot struct {
	Bids []DepthLevel
	Asks []DepthLevel
}

// Book is a continuous order book for one market.
type Book struct {
	bids *sideLevels
	asks *sideLevels
	byID map[int64]*Order
}

// New creates an empty book.
func New() *Book {
	return &Book{
		bids: newSideLevels(func(a, b int64) bool { return a > b }),
		asks: newSideLevels(func(a, b int64) bool { return a < b }),
		byID: make(map[int64]*Order),
	}
}

// AddOrder rests a new limit order at its price level, behind any order
// already queued there. Non-positive price or quantity and duplicate ids
// are rejected as no-ops; the book is left untouched and stays usable.
func (b *Book) AddOrder(id int64, side Side, price, qty, sequence int64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if _, ok := b.byID[id]; ok {
		return ErrDuplicateOrder
	}

	o := &Order{
		ID:           id,
		Side:         side,
		Price:        price,
		OriginalQty:  qty,
		RemainingQty: qty,
		Sequence:     sequence,
	}
	if side == Buy {
		b.bids.push(o)
	} else {
		b.asks.push(o)
	}
	b.byID[id] = o
	return nil
}

// CancelOrder removes a resting order wherever it sits. It reports false
// when the id is unknown or the order already filled; a second cancel of
// the same id reports false.
func (b *Book) CancelOrder(id int64) bool {
	o, ok := b.byID[id]
	if !ok {
		return false
	}
	delete(b.byID, id)
	if o.Side == Buy {
		return b.bids.remove(o)
	}
	return b.asks.remove(o)
}

// MatchOrders crosses the book until the best bid is below the best ask
// or a side empties. Each fill trades min(bid, ask) remaining quantity at
// the maker's price: the earlier-sequenced order of the pair was resting
// when its counterparty crossed it, so its price governs. Fully filled
// orders leave the book immediately; a zero-remaining order never rests.
func (b *Book) MatchOrders() []Trade {
	var trades []Trade
	for {
		bid := b.bids.front()
		ask := b.asks.front()
		if bid == nil || ask == nil || bid.Price < ask.Price {
			break
		}

		qty := min(bid.RemainingQty, ask.RemainingQty)
		price := bid.Price
		if ask.Sequence < bid.Sequence {
			price = ask.Price
		}
		bid.RemainingQty -= qty
		ask.RemainingQty -= qty

		trades = append(trades, Trade{
			BuyOrderID:  bid.ID,
			SellOrderID: ask.ID,
			Price:       price,
			Quantity:    qty,
		})

		if bid.RemainingQty == 0 {
			b.bids.popFront()
			delete(b.byID, bid.ID)
		}
		if ask.RemainingQty == 0 {
			b.asks.popFront()
			delete(b.byID, ask.ID)
		}
	}
	return trades
}

// Depth aggregates up to levels distinct prices per side. Each entry
// carries that level's own resting quantity, not a cumulative sum through
// better levels; consumers needing cumulative depth sum the slice.
func (b *Book) Depth(levels int) DepthSnapshot {
	var snap DepthSnapshot
	if levels <= 0 {
		return snap
	}
	b.bids.eachLevel(levels, func(price, qty int64) {
		snap.Bids = append(snap.Bids, DepthLevel{Price: price, Quantity: qty})
	})
	b.asks.eachLevel(levels, func(price, qty int64) {
		snap.Asks = append(snap.Asks, DepthLevel{Price: price, Quantity: qty})
	})
	return snap
}

// BestBid returns the highest bid price; ok is false when no bids rest.
func (b *Book) BestBid() (int64, bool) {
	return b.bids.bestPrice()
}

// BestAsk returns the lowest ask price; ok is false when no asks rest.
func (b *Book) BestAsk() (int64, bool) {
	return b.asks.bestPrice()
}

// MidPrice returns the mean of the best bid and ask, rounded toward the
// bid; ok is false when either side is empty.
func (b *Book) MidPrice() (int64, bool) {
	bid, okB := b.bids.bestPrice()
	ask, okA := b.asks.bestPrice()
	if !okB || !okA {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread returns best ask minus best bid; ok is false when either side
// is empty. The spread is negative only while the book is crossed.
func (b *Book) Spread() (int64, bool) {
	bid, okB := b.bids.bestPrice()
	ask, okA := b.asks.bestPrice()
	if !okB || !okA {
		return 0, false
	}
	return ask - bid, true
}

// BidCount returns the number of resting buy orders.
func (b *Book) BidCount() int {
	return b.bids.count
}

// AskCount returns the number of resting sell orders.
func (b *Book) AskCount() int {
	return b.asks.count
}

// Lookup returns a copy of the resting order with the given id.
func (b *Book) Lookup(id int64) (Order, bool) {
	o, ok := b.byID[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Clear empties both sides.
func (b *Book) Clear() {
	b.bids.clear()
	b.asks.clear()
	b.byID = make(map[int64]*Order)
}
