package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voltgrid/tradecore/pkg/engine/model"
)

// clearingRecord is the journal row for one auction window outcome.
type clearingRecord struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	Symbol    string          `gorm:"index"`
	Price     decimal.Decimal `gorm:"type:numeric"`
	Volume    decimal.Decimal `gorm:"type:numeric"`
	ClearedAt time.Time
	CreatedAt time.Time
}

func (clearingRecord) TableName() string {
	return "clearings"
}

type ClearingSQLJournal struct {
	db *gorm.DB
}

func NewClearingSQLJournal(db *gorm.DB) *ClearingSQLJournal {
	return &ClearingSQLJournal{db: db}
}

func (j *ClearingSQLJournal) Create(ctx context.Context, report *model.ClearingReport) error {
	return j.db.WithContext(ctx).Create(&clearingRecord{
		Symbol:    report.Symbol,
		Price:     report.Price,
		Volume:    report.Volume,
		ClearedAt: report.ClearedAt,
	}).Error
}
