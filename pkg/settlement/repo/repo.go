package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	TradeJournal() ITradeJournal
	ClearingJournal() IClearingJournal
}

type Repo struct {
	engineDB *gorm.DB
}

func NewRepo(engineDB *gorm.DB) IRepo {
	return &Repo{
		engineDB: engineDB,
	}
}

func (r *Repo) TradeJournal() ITradeJournal {
	return NewTradeSQLJournal(r.engineDB)
}

func (r *Repo) ClearingJournal() IClearingJournal {
	return NewClearingSQLJournal(r.engineDB)
}
