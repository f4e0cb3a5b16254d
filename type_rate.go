package capgains

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a tax rate expressed as a fraction (0.125 for 12.5%).
type Rate struct {
	value decimal.Decimal
}

// R creates a Rate from a fraction.
func R(fraction float64) Rate { return Rate{value: decimal.NewFromFloat(fraction)} }

func (r Rate) Equal(q Rate) bool        { return r.value.Equal(q.value) }
func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) Float64() float64         { return r.value.InexactFloat64() }

func (r Rate) MarshalJSON() ([]byte, error)  { return r.value.MarshalJSON() }
func (r *Rate) UnmarshalJSON(b []byte) error { return r.value.UnmarshalJSON(b) }

// String returns the rate as a percentage, e.g. "12.50%".
func (r Rate) String() string {
	return fmt.Sprintf("%s%%", r.value.Shift(2).StringFixed(2))
}
