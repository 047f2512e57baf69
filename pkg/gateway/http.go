// Package gateway is the REST/WebSocket order-submission and market-data
// boundary in front of the engine. It translates JSON requests into
// engine calls and engine errors into status codes; it holds no matching
// logic of its own.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voltgrid/tradecore/pkg/engine"
	"github.com/voltgrid/tradecore/pkg/engine/model"
	"github.com/voltgrid/tradecore/pkg/logging"
)

const defaultDepthLevels = 10

type Server struct {
	engine *engine.Engine
	hub    *Hub
	log    *logging.Logger
}

func NewServer(eng *engine.Engine, log *logging.Logger) *Server {
	s := &Server{
		engine: eng,
		hub:    newHub(log),
		log:    log,
	}
	eng.RegisterTradeCallback(s.hub.broadcastTrades)
	eng.RegisterClearingCallback(s.hub.broadcastClearing)
	return s
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/orders", s.submitOrder)
		r.Delete("/orders/{symbol}/{order_id}", s.cancelOrder)

		r.Post("/markets/{symbol}/match", s.runMatching)
		r.Post("/markets/{symbol}/auction", s.runAuction)
		r.Get("/markets/{symbol}/auction", s.auctionPreview)
		r.Get("/markets/{symbol}/depth", s.depth)
		r.Get("/markets/{symbol}/quotes", s.quotes)
		r.Get("/markets/{symbol}/stream", s.stream)
	})

	return r
}

// requestID stamps each request's context for the logging wrapper.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), uuid.New().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type submitOrderRequest struct {
	ClientOrderID string          `json:"client_order_id"`
	Account       string          `json:"account"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Mechanism     string          `json:"mechanism"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type orderAckResponse struct {
	OrderID       int64  `json:"order_id"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	mechanism := model.MechanismContinuous
	if req.Mechanism != "" {
		mechanism = model.Mechanism(req.Mechanism)
	}

	ack, err := s.engine.SubmitOrder(r.Context(), &model.SubmitOrder{
		ClientOrderID: req.ClientOrderID,
		Account:       req.Account,
		Symbol:        req.Symbol,
		Side:          model.OrderSide(req.Side),
		Mechanism:     mechanism,
		Price:         req.Price,
		Quantity:      req.Quantity,
		TransactTime:  time.Now(),
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, engine.ErrDuplicateClientOrderID) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, orderAckResponse{
		OrderID:       ack.OrderID,
		ClientOrderID: ack.ClientOrderID,
		Symbol:        ack.Symbol,
		Status:        string(ack.Status),
	})
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "order_id must be an integer")
		return
	}

	if err := s.engine.CancelOrder(r.Context(), symbol, orderID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"canceled": true})
}

type tradeResponse struct {
	Symbol      string          `json:"symbol"`
	BuyOrderID  int64           `json:"buy_order_id"`
	SellOrderID int64           `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

func (s *Server) runMatching(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	reports, err := s.engine.RunMatching(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	trades := make([]tradeResponse, 0, len(reports))
	for _, rep := range reports {
		trades = append(trades, tradeResponse{
			Symbol:      rep.Symbol,
			BuyOrderID:  rep.BuyOrderID,
			SellOrderID: rep.SellOrderID,
			Price:       rep.Price,
			Quantity:    rep.Quantity,
			ExecutedAt:  rep.ExecutedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

type clearingResponse struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	ClearedAt time.Time       `json:"cleared_at"`
}

func (s *Server) runAuction(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	report, err := s.engine.RunAuction(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clearingResponse{
		Symbol:    report.Symbol,
		Price:     report.Price,
		Volume:    report.Volume,
		ClearedAt: report.ClearedAt,
	})
}

func (s *Server) auctionPreview(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	report, err := s.engine.AuctionPreview(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clearingResponse{
		Symbol:    report.Symbol,
		Price:     report.Price,
		Volume:    report.Volume,
		ClearedAt: report.ClearedAt,
	})
}

type depthLevelResponse struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type depthResponse struct {
	Symbol string               `json:"symbol"`
	Bids   []depthLevelResponse `json:"bids"`
	Asks   []depthLevelResponse `json:"asks"`
}

func (s *Server) depth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	levels := defaultDepthLevels
	if raw := r.URL.Query().Get("levels"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "levels must be a positive integer")
			return
		}
		levels = n
	}

	snap, err := s.engine.Depth(symbol, levels)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := depthResponse{
		Symbol: snap.Symbol,
		Bids:   make([]depthLevelResponse, 0, len(snap.Bids)),
		Asks:   make([]depthLevelResponse, 0, len(snap.Asks)),
	}
	for _, lv := range snap.Bids {
		resp.Bids = append(resp.Bids, depthLevelResponse{Price: lv.Price, Quantity: lv.Quantity})
	}
	for _, lv := range snap.Asks {
		resp.Asks = append(resp.Asks, depthLevelResponse{Price: lv.Price, Quantity: lv.Quantity})
	}
	writeJSON(w, http.StatusOK, resp)
}

type quotesResponse struct {
	Symbol   string           `json:"symbol"`
	BidPrice *decimal.Decimal `json:"bid_price"`
	AskPrice *decimal.Decimal `json:"ask_price"`
	MidPrice *decimal.Decimal `json:"mid_price"`
	Spread   *decimal.Decimal `json:"spread"`
}

func (s *Server) quotes(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	q, err := s.engine.BestQuotes(symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quotesResponse{
		Symbol:   q.Symbol,
		BidPrice: q.BidPrice,
		AskPrice: q.AskPrice,
		MidPrice: q.MidPrice,
		Spread:   q.Spread,
	})
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := s.hub.serve(w, r, symbol); err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed",
			zap.String("symbol", symbol), zap.Error(err))
	}
}
