package book

import (
	"testing"
)

func TestCrossedPairMatches(t *testing.T) {
	b := New()
	if err := b.AddOrder(1, Buy, 100, 50, 1); err != nil {
		t.Fatalf("add buy: %v", err)
	}
	if err := b.AddOrder(2, Sell, 95, 30, 2); err != nil {
		t.Fatalf("add sell: %v", err)
	}

	trades := b.MatchOrders()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.BuyOrderID != 1 || tr.SellOrderID != 2 {
		t.Errorf("incorrect order ids in trade: %+v", tr)
	}
	// Order 1 arrived first, so it is the maker and sets the price.
	if tr.Price != 100 || tr.Quantity != 30 {
		t.Errorf("incorrect price/qty: %+v", tr)
	}

	if b.BidCount() != 1 {
		t.Errorf("expected 1 resting bid, got %d", b.BidCount())
	}
	if b.AskCount() != 0 {
		t.Errorf("expected 0 resting asks, got %d", b.AskCount())
	}
	rest, ok := b.Lookup(1)
	if !ok || rest.RemainingQty != 20 {
		t.Errorf("expected bid remaining 20, got %+v ok=%v", rest, ok)
	}
}

func TestMakerPriceWhenSellRestsFirst(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Sell, 95, 30, 1)
	_ = b.AddOrder(2, Buy, 100, 30, 2)

	trades := b.MatchOrders()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price != 95 {
		t.Errorf("expected maker price 95, got %d", trades[0].Price)
	}
}

func TestNoMatchWhenNotCrossed(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 98, 10, 1)
	_ = b.AddOrder(2, Sell, 100, 10, 2)

	if trades := b.MatchOrders(); len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if b.BidCount() != 1 || b.AskCount() != 1 {
		t.Errorf("both orders should still rest, got bids=%d asks=%d", b.BidCount(), b.AskCount())
	}
}

func TestFIFOAtSamePrice(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Sell, 100, 5, 1)
	_ = b.AddOrder(2, Sell, 100, 5, 2)
	_ = b.AddOrder(3, Buy, 100, 10, 3)

	trades := b.MatchOrders()
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].SellOrderID != 1 || trades[1].SellOrderID != 2 {
		t.Errorf("expected FIFO match order, got %+v", trades)
	}
}

func TestMultiLevelMatch(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Sell, 101, 5, 1)
	_ = b.AddOrder(2, Sell, 102, 5, 2)
	_ = b.AddOrder(3, Sell, 103, 5, 3)
	_ = b.AddOrder(4, Buy, 105, 15, 4)

	trades := b.MatchOrders()
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	// Sellers rested first at every level, so each fill takes the ask price,
	// walking up from the best ask.
	if trades[0].Price != 101 || trades[1].Price != 102 || trades[2].Price != 103 {
		t.Errorf("expected matching from best ask upward, got %+v", trades)
	}
	if b.BidCount() != 0 || b.AskCount() != 0 {
		t.Errorf("book should be empty, got bids=%d asks=%d", b.BidCount(), b.AskCount())
	}
}

func TestUncrossedAfterMatch(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 105, 10, 1)
	_ = b.AddOrder(2, Buy, 103, 10, 2)
	_ = b.AddOrder(3, Sell, 102, 15, 3)
	_ = b.AddOrder(4, Sell, 104, 15, 4)

	b.MatchOrders()

	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if okB && okA && bid >= ask {
		t.Fatalf("book still crossed after MatchOrders: bid=%d ask=%d", bid, ask)
	}
}

func TestVolumeConservation(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 100, 50, 1)
	_ = b.AddOrder(2, Buy, 99, 20, 2)
	_ = b.AddOrder(3, Sell, 98, 40, 3)
	_ = b.AddOrder(4, Sell, 100, 25, 4)

	before := restingQty(b)
	trades := b.MatchOrders()
	after := restingQty(b)

	var traded int64
	for _, tr := range trades {
		traded += tr.Quantity
	}
	if before.bids-after.bids != traded {
		t.Errorf("bid side reduction %d != traded %d", before.bids-after.bids, traded)
	}
	if before.asks-after.asks != traded {
		t.Errorf("ask side reduction %d != traded %d", before.asks-after.asks, traded)
	}
}

type sideQty struct {
	bids int64
	asks int64
}

func restingQty(b *Book) sideQty {
	var q sideQty
	snap := b.Depth(1 << 20)
	for _, lv := range snap.Bids {
		q.bids += lv.Quantity
	}
	for _, lv := range snap.Asks {
		q.asks += lv.Quantity
	}
	return q
}

func TestRejectInvalidOrders(t *testing.T) {
	b := New()
	if err := b.AddOrder(1, Buy, 0, 10, 1); err != ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	if err := b.AddOrder(1, Buy, -5, 10, 1); err != ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice for negative price, got %v", err)
	}
	if err := b.AddOrder(1, Buy, 100, 0, 1); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if b.BidCount() != 0 {
		t.Errorf("rejected orders must not rest, got %d bids", b.BidCount())
	}

	if err := b.AddOrder(1, Buy, 100, 10, 1); err != nil {
		t.Fatalf("valid add failed: %v", err)
	}
	if err := b.AddOrder(1, Sell, 200, 5, 2); err != ErrDuplicateOrder {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
	// The duplicate must not overwrite the original.
	o, ok := b.Lookup(1)
	if !ok || o.Side != Buy || o.Price != 100 {
		t.Errorf("original order was clobbered: %+v", o)
	}
	if b.AskCount() != 0 {
		t.Errorf("duplicate must not rest on the other side")
	}
}

func TestCancelOrder(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 100, 10, 1)
	_ = b.AddOrder(2, Buy, 100, 10, 2)

	if !b.CancelOrder(1) {
		t.Fatalf("expected cancel success")
	}
	if b.CancelOrder(1) {
		t.Fatalf("second cancel of same id must fail")
	}
	if b.CancelOrder(99) {
		t.Fatalf("cancel of unknown id must fail")
	}
	if b.BidCount() != 1 {
		t.Errorf("expected 1 resting bid after cancel, got %d", b.BidCount())
	}
	snap := b.Depth(10)
	if len(snap.Bids) != 1 || snap.Bids[0].Quantity != 10 {
		t.Errorf("depth still reflects canceled order: %+v", snap.Bids)
	}
}

func TestCancelAfterFullFill(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 100, 10, 1)
	_ = b.AddOrder(2, Sell, 100, 10, 2)
	b.MatchOrders()

	if b.CancelOrder(1) || b.CancelOrder(2) {
		t.Fatalf("cancel of fully filled order must fail")
	}
}

func TestDepthPerLevelQuantity(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 100, 10, 1)
	_ = b.AddOrder(2, Buy, 100, 5, 2)
	_ = b.AddOrder(3, Buy, 99, 7, 3)
	_ = b.AddOrder(4, Buy, 98, 3, 4)
	_ = b.AddOrder(5, Sell, 101, 8, 5)
	_ = b.AddOrder(6, Sell, 102, 4, 6)

	snap := b.Depth(2)
	if len(snap.Bids) != 2 {
		t.Fatalf("expected 2 bid levels, got %d", len(snap.Bids))
	}
	// Bids descend; each level reports its own quantity, not a running sum.
	if snap.Bids[0].Price != 100 || snap.Bids[0].Quantity != 15 {
		t.Errorf("bid level 0 wrong: %+v", snap.Bids[0])
	}
	if snap.Bids[1].Price != 99 || snap.Bids[1].Quantity != 7 {
		t.Errorf("bid level 1 wrong: %+v", snap.Bids[1])
	}
	if len(snap.Asks) != 2 {
		t.Fatalf("expected 2 ask levels, got %d", len(snap.Asks))
	}
	if snap.Asks[0].Price != 101 || snap.Asks[0].Quantity != 8 {
		t.Errorf("ask level 0 wrong: %+v", snap.Asks[0])
	}
	if snap.Asks[1].Price != 102 || snap.Asks[1].Quantity != 4 {
		t.Errorf("ask level 1 wrong: %+v", snap.Asks[1])
	}
}

func TestBestPricesOnEmptySides(t *testing.T) {
	b := New()
	if _, ok := b.BestBid(); ok {
		t.Errorf("BestBid must report not-ok on empty book")
	}
	if _, ok := b.BestAsk(); ok {
		t.Errorf("BestAsk must report not-ok on empty book")
	}
	if _, ok := b.MidPrice(); ok {
		t.Errorf("MidPrice must report not-ok on empty book")
	}
	if _, ok := b.Spread(); ok {
		t.Errorf("Spread must report not-ok on empty book")
	}

	_ = b.AddOrder(1, Buy, 100, 10, 1)
	if _, ok := b.MidPrice(); ok {
		t.Errorf("MidPrice must report not-ok with one empty side")
	}
	if bid, ok := b.BestBid(); !ok || bid != 100 {
		t.Errorf("BestBid = %d, %v; want 100, true", bid, ok)
	}
}

func TestMidAndSpread(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 100, 10, 1)
	_ = b.AddOrder(2, Sell, 105, 10, 2)

	if mid, ok := b.MidPrice(); !ok || mid != 102 {
		t.Errorf("MidPrice = %d, %v; want 102 (rounded toward bid)", mid, ok)
	}
	if spread, ok := b.Spread(); !ok || spread != 5 {
		t.Errorf("Spread = %d, %v; want 5", spread, ok)
	}
}

func TestClear(t *testing.T) {
	b := New()
	_ = b.AddOrder(1, Buy, 100, 10, 1)
	_ = b.AddOrder(2, Sell, 105, 10, 2)
	b.Clear()

	if b.BidCount() != 0 || b.AskCount() != 0 {
		t.Errorf("Clear left resting orders: bids=%d asks=%d", b.BidCount(), b.AskCount())
	}
	if _, ok := b.BestBid(); ok {
		t.Errorf("BestBid must report not-ok after Clear")
	}
	// Previously used ids are free again.
	if err := b.AddOrder(1, Buy, 100, 10, 1); err != nil {
		t.Errorf("add after Clear failed: %v", err)
	}
}

func TestHighVolumeAlternatingOrders(t *testing.T) {
	b := New()
	num := int64(10_000)
	for i := int64(0); i < num; i++ {
		side := Buy
		if i%2 == 0 {
			side = Sell
		}
		if err := b.AddOrder(i+1, side, 100, 10, i+1); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	trades := b.MatchOrders()
	if int64(len(trades)) != num/2 {
		t.Errorf("expected %d trades, got %d", num/2, len(trades))
	}
	if b.BidCount() != 0 || b.AskCount() != 0 {
		t.Errorf("book should be flat, got bids=%d asks=%d", b.BidCount(), b.AskCount())
	}
}

func BenchmarkMatchOrders(b *testing.B) {
	ob := New()
	var seq int64
	for i := 0; i < 10_000; i++ {
		seq++
		_ = ob.AddOrder(seq, Sell, 100+int64(i%5), 10, seq)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq++
		_ = ob.AddOrder(seq, Buy, 101, 10, seq)
		ob.MatchOrders()
	}
}

func BenchmarkAddOrder(b *testing.B) {
	ob := New()
	for i := 0; i < b.N; i++ {
		seq := int64(i + 1)
		_ = ob.AddOrder(seq, Buy, 100+int64(i%100), 10, seq)
	}
}
