package eventstore

import (
	"testing"
	"time"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

func TestAppendAndLookup(t *testing.T) {
	s := NewInMemory()

	ev := model.NewOrderEvent(7, "cl-1", "MWH-H14", model.EventAccepted, time.Now())
	s.Append(ev)
	s.Append(model.NewOrderEvent(7, "", "MWH-H14", model.EventTraded, time.Now()))

	if evs := s.Events(7); len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	id, ok := s.OrderIDByClientID("cl-1")
	if !ok || id != 7 {
		t.Errorf("OrderIDByClientID = %d, %v; want 7, true", id, ok)
	}
}

func TestDeleteByOrderID(t *testing.T) {
	s := NewInMemory()
	s.Append(model.NewOrderEvent(7, "cl-1", "MWH-H14", model.EventAccepted, time.Now()))

	s.DeleteByOrderID(7)
	if evs := s.Events(7); len(evs) != 0 {
		t.Errorf("events survived delete: %d", len(evs))
	}
	if _, ok := s.OrderIDByClientID("cl-1"); ok {
		t.Errorf("client id mapping survived delete")
	}
}
