package common

import (
	"fmt"
	"time"
)

// Trade records one match between an incoming (taker) order and a resting
// (maker) order.
type Trade struct {
	TakerID   string
	MakerID   string
	TakerSide Side
	Price     Price
	Quantity  Quantity
	Timestamp time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`Taker:     %s (%v)
Maker:     %s
Timestamp: %v
Quantity:  %d
Price:     %s`,
		t.TakerID,
		t.TakerSide,
		t.MakerID,
		t.Timestamp.Format(time.RFC3339),
		t.Quantity,
		t.Price,
	)
}
