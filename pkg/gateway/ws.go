package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voltgrid/tradecore/pkg/engine/model"
	"github.com/voltgrid/tradecore/pkg/logging"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Order submission is authenticated upstream; the stream is public
	// market data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is the envelope pushed to websocket subscribers.
type streamMessage struct {
	Type     string                `json:"type"` // "trades" or "clearing"
	Symbol   string                `json:"symbol"`
	Trades   []*model.TradeReport  `json:"trades,omitempty"`
	Clearing *model.ClearingReport `json:"clearing,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	symbol string
	send   chan streamMessage
}

// Hub fans engine trade and clearing reports out to websocket
// subscribers, one goroutine pair per connection.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *logging.Logger
}

func newHub(log *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// serve upgrades the request and registers the connection for the
// symbol's updates.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, symbol string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn:   conn,
		symbol: symbol,
		send:   make(chan streamMessage, clientSendSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// readPump discards inbound frames; the stream is one-way. It exists to
// notice the close handshake and unregister the client.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer h.drop(c)
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *Hub) broadcastTrades(reports []*model.TradeReport) {
	if len(reports) == 0 {
		return
	}
	h.broadcast(streamMessage{
		Type:   "trades",
		Symbol: reports[0].Symbol,
		Trades: reports,
	})
}

func (h *Hub) broadcastClearing(report *model.ClearingReport) {
	h.broadcast(streamMessage{
		Type:     "clearing",
		Symbol:   report.Symbol,
		Clearing: report,
	})
}

// broadcast delivers to every subscriber of the message's symbol. Slow
// consumers with a full send buffer are dropped rather than allowed to
// backpressure matching.
func (h *Hub) broadcast(msg streamMessage) {
	h.mu.Lock()
	var stale []*client
	for c := range h.clients {
		if c.symbol != msg.Symbol {
			continue
		}
		select {
		case c.send <- msg:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stale {
		h.log.Warn(context.Background(), "dropping slow stream subscriber",
			zap.String("symbol", c.symbol))
		h.drop(c)
	}
}
