package eventstore

import (
	"sync"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

// InMemory is the process-local event store. Nothing here survives a
// restart; rehydration from the authoritative settlement side is the
// host's job.
type InMemory struct {
	mu         sync.RWMutex
	events     map[int64][]*model.OrderEvent
	byClientID map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		events:     make(map[int64][]*model.OrderEvent),
		byClientID: make(map[string]int64),
	}
}

func (s *InMemory) Append(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
	if ev.ClientOrderID != "" {
		s.byClientID[ev.ClientOrderID] = ev.OrderID
	}
}

func (s *InMemory) Events(orderID int64) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.events[orderID]
	out := make([]*model.OrderEvent, len(evs))
	copy(out, evs)
	return out
}

func (s *InMemory) OrderIDByClientID(clientOrderID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byClientID[clientOrderID]
	return id, ok
}

func (s *InMemory) DeleteByOrderID(orderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events[orderID] {
		if ev.ClientOrderID != "" {
			delete(s.byClientID, ev.ClientOrderID)
		}
	}
	delete(s.events, orderID)
}
