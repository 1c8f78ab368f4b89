package prediction

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Unknown is displayed in place of any number the service did not send.
const Unknown = "--"

// Amount is an optional number such as a price, a confidence or a score.
// The zero value is unknown, which is not the same as a known 0.
type Amount struct {
	Value float64
	Valid bool
}

// Known returns a valid Amount holding v.
func Known(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// Or returns a if it is known, otherwise b.
func (a Amount) Or(b Amount) Amount {
	if a.Valid {
		return a
	}
	return b
}

// Decimal returns the amount as a decimal and whether it is known.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	if !a.Valid {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(a.Value), true
}

// Money formats the amount as dollars with two decimals, e.g. "$120.00".
func (a Amount) Money() string {
	d, ok := a.Decimal()
	if !ok {
		return Unknown
	}
	return "$" + d.StringFixed(2)
}

// Percent formats a 0..1 ratio as a whole percentage, e.g. "40%".
func (a Amount) Percent() string {
	d, ok := a.Decimal()
	if !ok {
		return Unknown
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

// Fixed formats the amount with the given number of decimals.
func (a Amount) Fixed(places int32) string {
	d, ok := a.Decimal()
	if !ok {
		return Unknown
	}
	return d.StringFixed(places)
}

func (a Amount) nonNegative() Amount {
	if !a.Valid || a.Value < 0 || math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
		return Amount{}
	}
	return a
}

// amountOf reads a number leniently. Numeric strings are accepted because the
// service forwards some fields straight from scraped CSV data.
func amountOf(v gjson.Result) Amount {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Amount{}
		}
		return Known(f)
	case gjson.String:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str))
		if err != nil {
			return Amount{}
		}
		return Known(d.InexactFloat64())
	}
	return Amount{}
}
