package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample is a single observed market price. It is ephemeral: the ledger
// consumes it and the presenter renders it, but nothing retains it.
type PriceSample struct {
	Value      decimal.Decimal
	ObservedAt time.Time
}

// NewPriceSample validates a raw float observation and converts it to a
// PriceSample. Non-finite and non-positive values are rejected with
// ErrInvalidPrice so garbage from an upstream feed never reaches the ledger.
func NewPriceSample(value float64, observedAt time.Time) (PriceSample, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return PriceSample{}, fmt.Errorf("%w: non-finite value", ErrInvalidPrice)
	}
	if value <= 0 {
		return PriceSample{}, fmt.Errorf("%w: non-positive value %v", ErrInvalidPrice, value)
	}
	return PriceSample{
		Value:      decimal.NewFromFloat(value),
		ObservedAt: observedAt,
	}, nil
}
