package engine

import (
	"sync"

	"github.com/voltgrid/tradecore/pkg/auction"
	"github.com/voltgrid/tradecore/pkg/book"
)

// market bundles the two matching mechanisms for one energy-block symbol
// together with the mutex that serializes them. The book and auction are
// deliberately lock-free; this is the layer that owns mutual exclusion.
type market struct {
	symbol  string
	book    *book.Book
	auction *auction.Auction
	seq     int64

	mu sync.Mutex
}

func newMarket(symbol string) *market {
	return &market{
		symbol:  symbol,
		book:    book.New(),
		auction: auction.New(),
	}
}

// nextSeq allocates the arrival sequence used for time-priority
// tie-breaking. Callers hold m.mu.
func (m *market) nextSeq() int64 {
	m.seq++
	return m.seq
}
