package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

// tradeRecord is the journal row for one continuous-book fill.
type tradeRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Symbol      string          `gorm:"index"`
	BuyOrderID  int64           `gorm:"column:buy_order_id"`
	SellOrderID int64           `gorm:"column:sell_order_id"`
	Price       decimal.Decimal `gorm:"type:numeric"`
	Quantity    decimal.Decimal `gorm:"type:numeric"`
	ExecutedAt  time.Time
	CreatedAt   time.Time
}

func (tradeRecord) TableName() string {
	return "trades"
}

type TradeSQLJournal struct {
	db *gorm.DB
}

func NewTradeSQLJournal(db *gorm.DB) *TradeSQLJournal {
	return &TradeSQLJournal{db: db}
}

func (j *TradeSQLJournal) Create(ctx context.Context, report *model.TradeReport) error {
	return j.db.WithContext(ctx).Create(toTradeRecord(report)).Error
}

func (j *TradeSQLJournal) BulkCreate(ctx context.Context, reports []*model.TradeReport) error {
	if len(reports) == 0 {
		return nil
	}
	records := make([]*tradeRecord, 0, len(reports))
	for _, r := range reports {
		records = append(records, toTradeRecord(r))
	}
	return j.db.WithContext(ctx).Create(records).Error
}

func toTradeRecord(r *model.TradeReport) *tradeRecord {
	return &tradeRecord{
		Symbol:      r.Symbol,
		BuyOrderID:  r.BuyOrderID,
		SellOrderID: r.SellOrderID,
		Price:       r.Price,
		Quantity:    r.Quantity,
		ExecutedAt:  r.ExecutedAt,
	}
}
