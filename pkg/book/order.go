package book

// Side distinguishes the two halves of the book.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order is a resting limit order. Price and quantities are fixed-point
// scaled integers; Sequence breaks ties among orders at the same price
// (lower sequence = earlier arrival = higher priority).
type Order struct {
	ID           int64
	Side         Side
	Price        int64
	OriginalQty  int64
	RemainingQty int64
	Sequence     int64
}

// Trade is a single fill produced by MatchOrders. Trades are emitted to
// the caller and never stored; the authoritative settlement layer decides
// whether value actually moves.
type Trade struct {
	BuyOrderID  int64
	SellOrderID int64
	Price       int64
	Quantity    int64
}
