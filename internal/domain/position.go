package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus tracks whether a position is open or closed.
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "open"
	PositionStatusClosed PositionStatus = "closed"
)

// Position is one capital slice of the grid: a recorded buy price, the fixed
// slice amount, and an open/closed status. BuyPrice and Amount are set once at
// creation and never change; Status transitions open -> closed exactly once.
type Position struct {
	ID       string
	BuyPrice decimal.Decimal
	Amount   decimal.Decimal
	Status   PositionStatus
	OpenedAt time.Time
	ClosedAt *time.Time
}

// IsOpen reports whether the position has not been closed yet.
func (p Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}
