package book

import (
	"github.com/gammazero/deque"
	"github.com/google/btree"
)

// sideLevels holds one side of the book: a B-tree over the distinct
// prices plus a FIFO queue of orders per price. Queue order is time
// priority; the tree's less function decides which end is "best", so
// Min() returns the best price for either side.
type sideLevels struct {
	prices *btree.BTreeG[int64]
	queues map[int64]*deque.Deque[*Order]
	count  int
}

func newSideLevels(less func(a, b int64) bool) *sideLevels {
	const degree = 32
	return &sideLevels{
		prices: btree.NewG[int64](degree, less),
		queues: make(map[int64]*deque.Deque[*Order]),
	}
}

// push appends an order behind everything already resting at its price,
// creating the level if absent.
func (s *sideLevels) push(o *Order) {
	q := s.queues[o.Price]
	if q == nil {
		q = &deque.Deque[*Order]{}
		s.queues[o.Price] = q
		s.prices.ReplaceOrInsert(o.Price)
	}
	q.PushBack(o)
	s.count++
}

// bestPrice returns the top-of-book price for this side.
func (s *sideLevels) bestPrice() (int64, bool) {
	return s.prices.Min()
}

// front returns the highest-priority order without removing it, or nil
// when the side is empty.
func (s *sideLevels) front() *Order {
	price, ok := s.prices.Min()
	if !ok {
		return nil
	}
	return s.queues[price].Front()
}

// popFront removes the highest-priority order, dropping its price level
// when the queue empties.
func (s *sideLevels) popFront() {
	price, ok := s.prices.Min()
	if !ok {
		return
	}
	q := s.queues[price]
	q.PopFront()
	s.count--
	if q.Len() == 0 {
		delete(s.queues, price)
		s.prices.Delete(price)
	}
}

// remove deletes one specific resting order. Linear in its level's queue
// length; cancels are rare next to matches, and levels are short.
func (s *sideLevels) remove(o *Order) bool {
	q, ok := s.queues[o.Price]
	if !ok {
		return false
	}
	idx := q.Index(func(x *Order) bool { return x.ID == o.ID })
	if idx < 0 {
		return false
	}
	q.Remove(idx)
	s.count--
	if q.Len() == 0 {
		delete(s.queues, o.Price)
		s.prices.Delete(o.Price)
	}
	return true
}

// eachLevel visits up to n price levels in priority order, passing each
// level's price and its own total resting quantity.
func (s *sideLevels) eachLevel(n int, fn func(price, qty int64)) {
	visited := 0
	s.prices.Ascend(func(price int64) bool {
		if visited >= n {
			return false
		}
		var total int64
		q := s.queues[price]
		for i := 0; i < q.Len(); i++ {
			total += q.At(i).RemainingQty
		}
		fn(price, total)
		visited++
		return true
	})
}

func (s *sideLevels) clear() {
	s.prices.Clear(false)
	s.queues = make(map[int64]*deque.Deque[*Order])
	s.count = 0
}
