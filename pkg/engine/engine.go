// Package engine is the service layer over the matching core: it owns
// one market per energy-block symbol, serializes access to each, applies
// pre-trade policy hooks, journals order events and fans trade reports
// out to registered callbacks. Settlement stays external and
// authoritative; everything the engine emits is a preview.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/voltgrid/tradecore/pkg/book"
	"github.com/voltgrid/tradecore/pkg/engine/eventstore"
	"github.com/voltgrid/tradecore/pkg/engine/model"
	"github.com/voltgrid/tradecore/pkg/engine/policy"
	"github.com/voltgrid/tradecore/pkg/fixedpoint"
	"github.com/voltgrid/tradecore/pkg/logging"
)

// TradeCallback receives the fills of one matching run.
type TradeCallback func(reports []*model.TradeReport)

// ClearingCallback receives the outcome of one auction window.
type ClearingCallback func(report *model.ClearingReport)

type Config struct {
	Rules []policy.Rule
}

type Engine struct {
	markets sync.Map // symbol -> *market
	events  eventstore.EventStore
	rules   []policy.Rule
	log     *logging.Logger

	nextOrderID atomic.Int64

	cbMu        sync.Mutex
	tradeCbs    []TradeCallback
	clearingCbs []ClearingCallback
}

func New(cfg *Config, log *logging.Logger) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Engine{
		events: eventstore.NewInMemory(),
		rules:  cfg.Rules,
		log:    log,
	}
}

// RegisterTradeCallback adds a listener for continuous-book fills.
func (e *Engine) RegisterTradeCallback(cb TradeCallback) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.tradeCbs = append(e.tradeCbs, cb)
}

// RegisterClearingCallback adds a listener for auction outcomes.
func (e *Engine) RegisterClearingCallback(cb ClearingCallback) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.clearingCbs = append(e.clearingCbs, cb)
}

// SubmitOrder validates a submission, assigns an engine order id and
// routes it into the symbol's continuous book or auction window. All
// failures come back as error values; the engine stays usable after any
// rejection.
func (e *Engine) SubmitOrder(ctx context.Context, sub *model.SubmitOrder) (*model.OrderAck, error) {
	if sub.ClientOrderID != "" {
		if _, ok := e.events.OrderIDByClientID(sub.ClientOrderID); ok {
			return nil, ErrDuplicateClientOrderID
		}
	}

	orderID := e.nextOrderID.Add(1)

	for _, rule := range e.rules {
		if err := rule.Check(sub); err != nil {
			e.journalReject(sub, orderID, err)
			return nil, err
		}
	}

	price, err := fixedpoint.FromDecimal(sub.Price)
	if err != nil {
		e.journalReject(sub, orderID, err)
		return nil, err
	}
	qty, err := fixedpoint.FromDecimal(sub.Quantity)
	if err != nil {
		e.journalReject(sub, orderID, err)
		return nil, err
	}

	var side book.Side
	switch sub.Side {
	case model.OrderSideBuy:
		side = book.Buy
	case model.OrderSideSell:
		side = book.Sell
	default:
		e.journalReject(sub, orderID, ErrUnknownSide)
		return nil, ErrUnknownSide
	}

	m := e.getOrCreateMarket(sub.Symbol)
	m.mu.Lock()
	if sub.Mechanism == model.MechanismAuction {
		err = m.auction.Add(orderID, price, qty, side == book.Buy)
	} else {
		err = m.book.AddOrder(orderID, side, price, qty, m.nextSeq())
	}
	m.mu.Unlock()
	if err != nil {
		e.journalReject(sub, orderID, err)
		return nil, err
	}

	ev := model.NewOrderEvent(orderID, sub.ClientOrderID, sub.Symbol, model.EventAccepted, time.Now())
	ev.Price = sub.Price
	ev.Quantity = sub.Quantity
	e.events.Append(ev)

	e.log.Debug(ctx, "order accepted",
		zap.Int64("order_id", orderID),
		zap.String("symbol", sub.Symbol),
		zap.String("side", string(sub.Side)),
		zap.String("mechanism", string(sub.Mechanism)))

	return &model.OrderAck{
		OrderID:       orderID,
		ClientOrderID: sub.ClientOrderID,
		Symbol:        sub.Symbol,
		Status:        model.OrderStatusNew,
	}, nil
}

// CancelOrder removes a resting continuous-book order.
func (e *Engine) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	m, ok := e.market(symbol)
	if !ok {
		return ErrMarketNotFound
	}

	m.mu.Lock()
	canceled := m.book.CancelOrder(orderID)
	m.mu.Unlock()
	if !canceled {
		return ErrOrderNotFound
	}

	e.events.Append(model.NewOrderEvent(orderID, "", symbol, model.EventCanceled, time.Now()))
	e.log.Debug(ctx, "order canceled", zap.Int64("order_id", orderID), zap.String("symbol", symbol))
	return nil
}

// RunMatching crosses the symbol's continuous book and reports every
// trade generated by this call.
func (e *Engine) RunMatching(ctx context.Context, symbol string) ([]*model.TradeReport, error) {
	m, ok := e.market(symbol)
	if !ok {
		return nil, ErrMarketNotFound
	}

	m.mu.Lock()
	trades := m.book.MatchOrders()
	m.mu.Unlock()

	now := time.Now()
	reports := make([]*model.TradeReport, 0, len(trades))
	for _, tr := range trades {
		reports = append(reports, &model.TradeReport{
			Symbol:      symbol,
			BuyOrderID:  tr.BuyOrderID,
			SellOrderID: tr.SellOrderID,
			Price:       fixedpoint.ToDecimal(tr.Price),
			Quantity:    fixedpoint.ToDecimal(tr.Quantity),
			ExecutedAt:  now,
		})

		buyEv := model.NewOrderEvent(tr.BuyOrderID, "", symbol, model.EventTraded, now)
		buyEv.Price = fixedpoint.ToDecimal(tr.Price)
		buyEv.Quantity = fixedpoint.ToDecimal(tr.Quantity)
		e.events.Append(buyEv)

		sellEv := model.NewOrderEvent(tr.SellOrderID, "", symbol, model.EventTraded, now)
		sellEv.Price = fixedpoint.ToDecimal(tr.Price)
		sellEv.Quantity = fixedpoint.ToDecimal(tr.Quantity)
		e.events.Append(sellEv)
	}

	if len(reports) > 0 {
		e.log.Info(ctx, "matching run complete",
			zap.String("symbol", symbol),
			zap.Int("trades", len(reports)))
		e.cbMu.Lock()
		cbs := make([]TradeCallback, len(e.tradeCbs))
		copy(cbs, e.tradeCbs)
		e.cbMu.Unlock()
		for _, cb := range cbs {
			cb(reports)
		}
	}

	return reports, nil
}

// AuctionPreview computes the current window's clearing pair without
// consuming the window. Calling it repeatedly yields identical results.
func (e *Engine) AuctionPreview(ctx context.Context, symbol string) (*model.ClearingReport, error) {
	m, ok := e.market(symbol)
	if !ok {
		return nil, ErrMarketNotFound
	}

	m.mu.Lock()
	res := m.auction.ClearingPrice()
	m.mu.Unlock()

	return &model.ClearingReport{
		Symbol:    symbol,
		Price:     fixedpoint.ToDecimal(res.Price),
		Volume:    fixedpoint.ToDecimal(res.Volume),
		ClearedAt: time.Now(),
	}, nil
}

// RunAuction clears the symbol's batch window: it computes the uniform
// clearing pair, resets the window and notifies clearing listeners.
func (e *Engine) RunAuction(ctx context.Context, symbol string) (*model.ClearingReport, error) {
	m, ok := e.market(symbol)
	if !ok {
		return nil, ErrMarketNotFound
	}

	m.mu.Lock()
	res := m.auction.ClearingPrice()
	m.auction.Clear()
	m.mu.Unlock()

	report := &model.ClearingReport{
		Symbol:    symbol,
		Price:     fixedpoint.ToDecimal(res.Price),
		Volume:    fixedpoint.ToDecimal(res.Volume),
		ClearedAt: time.Now(),
	}

	e.log.Info(ctx, "auction window cleared",
		zap.String("symbol", symbol),
		zap.String("price", report.Price.String()),
		zap.String("volume", report.Volume.String()))

	e.cbMu.Lock()
	cbs := make([]ClearingCallback, len(e.clearingCbs))
	copy(cbs, e.clearingCbs)
	e.cbMu.Unlock()
	for _, cb := range cbs {
		cb(report)
	}

	return report, nil
}

// Depth returns an aggregated per-level snapshot of the symbol's book.
func (e *Engine) Depth(symbol string, levels int) (*model.DepthSnapshot, error) {
	m, ok := e.market(symbol)
	if !ok {
		return nil, ErrMarketNotFound
	}

	m.mu.Lock()
	snap := m.book.Depth(levels)
	m.mu.Unlock()

	out := &model.DepthSnapshot{Symbol: symbol}
	for _, lv := range snap.Bids {
		out.Bids = append(out.Bids, model.PriceLevel{
			Price:    fixedpoint.ToDecimal(lv.Price),
			Quantity: fixedpoint.ToDecimal(lv.Quantity),
		})
	}
	for _, lv := range snap.Asks {
		out.Asks = append(out.Asks, model.PriceLevel{
			Price:    fixedpoint.ToDecimal(lv.Price),
			Quantity: fixedpoint.ToDecimal(lv.Quantity),
		})
	}
	return out, nil
}

// BestQuotes returns the symbol's top-of-book prices; nil fields mean the
// corresponding side is empty.
func (e *Engine) BestQuotes(symbol string) (*model.Quotes, error) {
	m, ok := e.market(symbol)
	if !ok {
		return nil, ErrMarketNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	q := &model.Quotes{Symbol: symbol}
	if bid, ok := m.book.BestBid(); ok {
		d := fixedpoint.ToDecimal(bid)
		q.BidPrice = &d
	}
	if ask, ok := m.book.BestAsk(); ok {
		d := fixedpoint.ToDecimal(ask)
		q.AskPrice = &d
	}
	if mid, ok := m.book.MidPrice(); ok {
		d := fixedpoint.ToDecimal(mid)
		q.MidPrice = &d
	}
	if spread, ok := m.book.Spread(); ok {
		d := fixedpoint.ToDecimal(spread)
		q.Spread = &d
	}
	return q, nil
}

// Events exposes the lifecycle journal of one order.
func (e *Engine) Events(orderID int64) []*model.OrderEvent {
	return e.events.Events(orderID)
}

// journalReject records the rejection without indexing the client order
// id, so a corrected resubmission under the same id is not refused as a
// duplicate.
func (e *Engine) journalReject(sub *model.SubmitOrder, orderID int64, cause error) {
	ev := model.NewOrderEvent(orderID, "", sub.Symbol, model.EventRejected, time.Now())
	ev.Price = sub.Price
	ev.Quantity = sub.Quantity
	ev.Reason = cause.Error()
	e.events.Append(ev)
}

func (e *Engine) market(symbol string) (*market, bool) {
	v, ok := e.markets.Load(symbol)
	if !ok {
		return nil, false
	}
	return v.(*market), true
}

func (e *Engine) getOrCreateMarket(symbol string) *market {
	if v, ok := e.markets.Load(symbol); ok {
		return v.(*market)
	}
	actual, _ := e.markets.LoadOrStore(symbol, newMarket(symbol))
	return actual.(*market)
}
