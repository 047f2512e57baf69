// Package settlement forwards engine output toward the authoritative
// settlement side: fills and clearing outcomes go to a kafka feed and a
// sql journal, and fresh depth snapshots are cached in redis for UI
// reads. Every sink is optional and every sink failure is logged and
// swallowed; the engine's output is a preview, and matching must never
// stall because a downstream collaborator is unavailable.
package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voltgrid/tradecore/pkg/engine"
	"github.com/voltgrid/tradecore/pkg/engine/model"
	kafkawrapper "github.com/voltgrid/tradecore/pkg/kafka"
	"github.com/voltgrid/tradecore/pkg/logging"
	"github.com/voltgrid/tradecore/pkg/settlement/repo"
)

const (
	depthCacheLevels = 20
	depthCacheTTL    = 30 * time.Second
)

type Config struct {
	TradeTopic string
}

type Forwarder struct {
	cfg       *Config
	engine    *engine.Engine
	publisher *kafkawrapper.Producer
	journal   repo.IRepo
	cache     *redis.Client
	log       *logging.Logger
}

// NewForwarder wires a forwarder to the engine's callbacks. Any of
// publisher, journal and cache may be nil; the corresponding sink is
// skipped.
func NewForwarder(
	cfg *Config,
	eng *engine.Engine,
	publisher *kafkawrapper.Producer,
	journal repo.IRepo,
	cache *redis.Client,
	log *logging.Logger,
) *Forwarder {
	f := &Forwarder{
		cfg:       cfg,
		engine:    eng,
		publisher: publisher,
		journal:   journal,
		cache:     cache,
		log:       log,
	}
	eng.RegisterTradeCallback(f.onTrades)
	eng.RegisterClearingCallback(f.onClearing)
	return f
}

func (f *Forwarder) onTrades(reports []*model.TradeReport) {
	if len(reports) == 0 {
		return
	}
	ctx := context.Background()

	if f.publisher != nil {
		for _, r := range reports {
			key := []byte(r.Symbol)
			if err := f.publisher.PublishJSON(ctx, f.cfg.TradeTopic, key, r); err != nil {
				f.log.Error(ctx, "publish trade to settlement feed failed",
					zap.String("symbol", r.Symbol), zap.Error(err))
			}
		}
	}

	if f.journal != nil {
		if err := f.journal.TradeJournal().BulkCreate(ctx, reports); err != nil {
			f.log.Error(ctx, "journal trades failed", zap.Error(err))
		}
	}

	f.cacheDepth(ctx, reports[0].Symbol)
}

func (f *Forwarder) onClearing(report *model.ClearingReport) {
	ctx := context.Background()

	if f.publisher != nil {
		key := []byte(report.Symbol)
		if err := f.publisher.PublishJSON(ctx, f.cfg.TradeTopic, key, report); err != nil {
			f.log.Error(ctx, "publish clearing to settlement feed failed",
				zap.String("symbol", report.Symbol), zap.Error(err))
		}
	}

	if f.journal != nil {
		if err := f.journal.ClearingJournal().Create(ctx, report); err != nil {
			f.log.Error(ctx, "journal clearing failed", zap.Error(err))
		}
	}
}

// cacheDepth refreshes the redis depth snapshot after a matching run so
// UI reads do not hit the engine.
func (f *Forwarder) cacheDepth(ctx context.Context, symbol string) {
	if f.cache == nil {
		return
	}
	snap, err := f.engine.Depth(symbol, depthCacheLevels)
	if err != nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	key := fmt.Sprintf("depth:%s", symbol)
	if err := f.cache.Set(ctx, key, data, depthCacheTTL).Err(); err != nil {
		f.log.Warn(ctx, "cache depth snapshot failed",
			zap.String("symbol", symbol), zap.Error(err))
	}
}
