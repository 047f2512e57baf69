package auction

import (
	"testing"

	"pgregory.net/rapid"
)

func TestClearingPriceCrossing(t *testing.T) {
	a := New()
	// Demand side.
	mustAdd(t, a, 1, 60, 10, true)
	mustAdd(t, a, 2, 58, 15, true)
	mustAdd(t, a, 3, 56, 20, true)
	// Supply side.
	mustAdd(t, a, 4, 40, 10, false)
	mustAdd(t, a, 5, 42, 15, false)
	mustAdd(t, a, 6, 44, 20, false)

	res := a.ClearingPrice()
	if res != bruteForce(a) {
		t.Fatalf("ClearingPrice %+v disagrees with brute force %+v", res, bruteForce(a))
	}
	// All 45 units of demand rest at or above 44, where all 45 units of
	// supply are available; 44 and 56 tie on volume and imbalance, and the
	// lower price wins.
	if res.Price != 44 || res.Volume != 45 {
		t.Fatalf("expected clearing (44, 45), got %+v", res)
	}
}

func TestClearingPriceEmptyAndOneSided(t *testing.T) {
	a := New()
	if res := a.ClearingPrice(); res != (Result{}) {
		t.Errorf("empty batch must clear at (0,0), got %+v", res)
	}

	mustAdd(t, a, 1, 50, 10, true)
	if res := a.ClearingPrice(); res != (Result{}) {
		t.Errorf("bid-only batch must clear at (0,0), got %+v", res)
	}

	a.Clear()
	mustAdd(t, a, 2, 50, 10, false)
	if res := a.ClearingPrice(); res != (Result{}) {
		t.Errorf("ask-only batch must clear at (0,0), got %+v", res)
	}
}

func TestClearingPriceNoOverlap(t *testing.T) {
	a := New()
	mustAdd(t, a, 1, 40, 10, true)
	mustAdd(t, a, 2, 50, 10, false)

	if res := a.ClearingPrice(); res != (Result{}) {
		t.Errorf("non-overlapping curves must clear at (0,0), got %+v", res)
	}
}

func TestClearingPriceIdempotent(t *testing.T) {
	a := New()
	mustAdd(t, a, 1, 55, 12, true)
	mustAdd(t, a, 2, 50, 9, false)

	first := a.ClearingPrice()
	second := a.ClearingPrice()
	if first != second {
		t.Errorf("repeated calls differ: %+v vs %+v", first, second)
	}
}

func TestClearingPriceTieBreak(t *testing.T) {
	// 44/56-style volume ties resolve by imbalance first: price 55 has
	// D=30 vs S=10 (imbalance 20) while price 100 balances exactly, so
	// the higher but balanced price wins.
	a := New()
	mustAdd(t, a, 1, 100, 10, true)
	mustAdd(t, a, 2, 60, 20, true)
	mustAdd(t, a, 3, 55, 10, false)
	mustAdd(t, a, 4, 110, 15, false)

	res := a.ClearingPrice()
	if res.Price != 100 || res.Volume != 10 {
		t.Fatalf("expected (100, 10) via imbalance tie-break, got %+v", res)
	}

	// Equal imbalance falls back to the lowest price.
	a.Clear()
	mustAdd(t, a, 1, 100, 15, true)
	mustAdd(t, a, 2, 90, 10, false)
	mustAdd(t, a, 3, 95, 5, false)

	res = a.ClearingPrice()
	if res.Price != 95 || res.Volume != 15 {
		t.Fatalf("expected (95, 15) via lowest-price tie-break, got %+v", res)
	}
}

func TestClearResetsWindow(t *testing.T) {
	a := New()
	mustAdd(t, a, 1, 60, 10, true)
	mustAdd(t, a, 2, 40, 10, false)

	if res := a.ClearingPrice(); res.Volume == 0 {
		t.Fatalf("expected a clearing before reset, got %+v", res)
	}

	a.Clear()
	if res := a.ClearingPrice(); res != (Result{}) {
		t.Errorf("cleared window must report (0,0), got %+v", res)
	}
	if a.BidCount() != 0 || a.AskCount() != 0 {
		t.Errorf("Clear left orders: bids=%d asks=%d", a.BidCount(), a.AskCount())
	}
}

func TestAddRejectsInvalidOrders(t *testing.T) {
	a := New()
	if err := a.Add(1, 0, 10, true); err != ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	if err := a.Add(1, 50, 0, true); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if a.BidCount() != 0 || a.AskCount() != 0 {
		t.Errorf("rejected orders must not accumulate")
	}
}

func TestProperty_ClearingMatchesBruteForce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := New()
		nBids := rapid.IntRange(0, 30).Draw(t, "nBids")
		nAsks := rapid.IntRange(0, 30).Draw(t, "nAsks")
		id := int64(0)
		for i := 0; i < nBids; i++ {
			id++
			mustAddRapid(t, a, id, rapid.Int64Range(1, 100).Draw(t, "bidPrice"),
				rapid.Int64Range(1, 50).Draw(t, "bidAmount"), true)
		}
		for i := 0; i < nAsks; i++ {
			id++
			mustAddRapid(t, a, id, rapid.Int64Range(1, 100).Draw(t, "askPrice"),
				rapid.Int64Range(1, 50).Draw(t, "askAmount"), false)
		}

		got := a.ClearingPrice()
		want := bruteForce(a)
		if got != want {
			t.Fatalf("ClearingPrice %+v != brute force %+v", got, want)
		}
	})
}

// bruteForce recomputes the clearing pair by evaluating both curves at
// every distinct price with direct summation and the documented
// tie-break rule.
func bruteForce(a *Auction) Result {
	if len(a.bids) == 0 || len(a.asks) == 0 {
		return Result{}
	}
	seen := make(map[int64]bool)
	var prices []int64
	for _, o := range append(append([]Order{}, a.bids...), a.asks...) {
		if !seen[o.Price] {
			seen[o.Price] = true
			prices = append(prices, o.Price)
		}
	}

	var best Result
	var bestImbalance int64
	for _, p := range prices {
		var demand, supply int64
		for _, o := range a.bids {
			if o.Price >= p {
				demand += o.Amount
			}
		}
		for _, o := range a.asks {
			if o.Price <= p {
				supply += o.Amount
			}
		}
		vol := min(demand, supply)
		if vol == 0 {
			continue
		}
		imbalance := demand - supply
		if imbalance < 0 {
			imbalance = -imbalance
		}
		better := vol > best.Volume ||
			(vol == best.Volume && imbalance < bestImbalance) ||
			(vol == best.Volume && imbalance == bestImbalance && p < best.Price)
		if better {
			best = Result{Price: p, Volume: vol}
			bestImbalance = imbalance
		}
	}
	return best
}

func mustAdd(t *testing.T, a *Auction, id, price, amount int64, isBid bool) {
	t.Helper()
	if err := a.Add(id, price, amount, isBid); err != nil {
		t.Fatalf("add order %d: %v", id, err)
	}
}

func mustAddRapid(t *rapid.T, a *Auction, id, price, amount int64, isBid bool) {
	if err := a.Add(id, price, amount, isBid); err != nil {
		t.Fatalf("add order %d: %v", id, err)
	}
}
