// Package auction implements a uniform-price batch auction for periodic
// energy-block clearing. Orders accumulate for one window without any
// matching; a single clearing price is then computed so that every
// matched participant trades at the same price. Arithmetic follows the
// same fixed-point scaled-integer conventions as the continuous book,
// and like the book the auction does no locking of its own.
package auction

import (
	"errors"
	"sort"
)

var (
	ErrInvalidPrice  = errors.New("auction order price must be positive")
	ErrInvalidAmount = errors.New("auction order amount must be positive")
)

// Order is one accumulated intent in the current batch window.
type Order struct {
	ID     int64
	Price  int64
	Amount int64
	IsBid  bool
}

// Result is the uniform clearing outcome of one window. A zero Result
// means the window cannot clear (empty or one-sided batch).
type Result struct {
	Price  int64
	Volume int64
}

// Auction accumulates bids and asks for one clearing window.
type Auction struct {
	bids []Order
	asks []Order
}

// New creates an empty auction window.
func New() *Auction {
	return &Auction{}
}

// Add appends an intent to the batch. No ordering or matching happens at
// insertion time. Non-positive price or amount is rejected as a no-op.
func (a *Auction) Add(id, price, amount int64, isBid bool) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	o := Order{ID: id, Price: price, Amount: amount, IsBid: isBid}
	if isBid {
		a.bids = append(a.bids, o)
	} else {
		a.asks = append(a.asks, o)
	}
	return nil
}

// BidCount returns the number of accumulated bids.
func (a *Auction) BidCount() int {
	return len(a.bids)
}

// AskCount returns the number of accumulated asks.
func (a *Auction) AskCount() int {
	return len(a.asks)
}

// ClearingPrice evaluates the cumulative demand curve D(p) (bid amounts
// priced at or above p) and supply curve S(p) (ask amounts priced at or
// below p) over every distinct price in the batch, and returns the price
// maximizing executed volume min(D, S). Ties prefer the price with the
// smallest demand/supply imbalance |D-S|, then the lowest price. The
// computation mutates nothing, so repeated calls on an unchanged window
// return identical results. An empty or one-sided batch clears at (0, 0).
func (a *Auction) ClearingPrice() Result {
	if len(a.bids) == 0 || len(a.asks) == 0 {
		return Result{}
	}

	bidAt := make(map[int64]int64)
	askAt := make(map[int64]int64)
	for _, o := range a.bids {
		bidAt[o.Price] += o.Amount
	}
	for _, o := range a.asks {
		askAt[o.Price] += o.Amount
	}

	seen := make(map[int64]struct{}, len(bidAt)+len(askAt))
	prices := make([]int64, 0, len(bidAt)+len(askAt))
	for p := range bidAt {
		seen[p] = struct{}{}
		prices = append(prices, p)
	}
	for p := range askAt {
		if _, ok := seen[p]; !ok {
			prices = append(prices, p)
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	n := len(prices)
	demand := make([]int64, n)
	supply := make([]int64, n)
	var cum int64
	for i := n - 1; i >= 0; i-- {
		cum += bidAt[prices[i]]
		demand[i] = cum
	}
	cum = 0
	for i := 0; i < n; i++ {
		cum += askAt[prices[i]]
		supply[i] = cum
	}

	var best Result
	var bestImbalance int64
	for i, p := range prices {
		vol := min(demand[i], supply[i])
		if vol == 0 {
			continue
		}
		imbalance := demand[i] - supply[i]
		if imbalance < 0 {
			imbalance = -imbalance
		}
		// Ascending iteration means an equal-volume, equal-imbalance
		// candidate never displaces a lower price.
		if vol > best.Volume || (vol == best.Volume && imbalance < bestImbalance) {
			best = Result{Price: p, Volume: vol}
			bestImbalance = imbalance
		}
	}
	return best
}

// Clear discards all accumulated orders, starting a fresh batch window.
func (a *Auction) Clear() {
	a.bids = a.bids[:0]
	a.asks = a.asks[:0]
}
