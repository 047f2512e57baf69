package repo

import (
	"context"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

type ITradeJournal interface {
	Create(ctx context.Context, report *model.TradeReport) error
	BulkCreate(ctx context.Context, reports []*model.TradeReport) error
}

type IClearingJournal interface {
	Create(ctx context.Context, report *model.ClearingReport) error
}
