package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID            string    // Order tracked uuid
	Side          Side      // Order side, fixed at creation
	Quantity      Quantity  // Remaining quantity
	TotalQuantity Quantity  // Total volume requested
	Owner         string    // Who owns this order, if known
	Timestamp     time.Time // Time of creation of the order
}

func NewOrder(side Side, size Quantity) *Order {
	return &Order{
		ID:            uuid.New().String(),
		Side:          side,
		Quantity:      size,
		TotalQuantity: size,
		Timestamp:     time.Now(),
	}
}

// IsFilled reports whether no quantity remains.
func (order *Order) IsFilled() bool {
	return order.Quantity == 0
}

// Filled returns the quantity matched so far.
func (order *Order) Filled() Quantity {
	return order.TotalQuantity - order.Quantity
}

// Validate rejects orders the book cannot match sensibly.
func (order *Order) Validate() error {
	if !order.Side.valid() {
		return fmt.Errorf("%w: unknown side %d", ErrInvalidOrderParameters, int(order.Side))
	}
	if order.Quantity == 0 {
		return fmt.Errorf("%w: size must be positive", ErrInvalidOrderParameters)
	}
	if order.Quantity > order.TotalQuantity {
		return fmt.Errorf("%w: remaining %d exceeds total %d",
			ErrInvalidOrderParameters, order.Quantity, order.TotalQuantity)
	}
	return nil
}

func (order Order) String() string {
	return fmt.Sprintf(
		`ID:        %s
Side:      %v
Quantity:  %d (Total: %d)
Owner:     %s
Timestamp: %v`,
		order.ID,
		order.Side,
		order.Quantity,
		order.TotalQuantity,
		order.Owner,
		order.Timestamp.Format(time.RFC3339),
	)
}
