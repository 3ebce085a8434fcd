package common

import "errors"

var (
	ErrInvalidOrderParameters = errors.New("invalid order parameters")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrPricePrecision         = errors.New("price exceeds supported precision")
)
