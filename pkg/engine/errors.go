package engine

import "errors"

var (
	ErrDuplicateClientOrderID = errors.New("client order id already submitted")
	ErrMarketNotFound         = errors.New("market not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrUnknownSide            = errors.New("unknown order side")
)
