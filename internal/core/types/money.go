// Package types provides money and calendar helpers shared by the domain.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is an amount in yen. Intermediate values may carry fractions
// (fractional hours times a unit price); persisted totals are floored.
type Money = decimal.Decimal

var (
	hundred     = decimal.NewFromInt(100)
	minutesHour = decimal.NewFromInt(60)
)

// Yen creates Money from a whole yen amount.
func Yen(v int64) Money {
	return decimal.NewFromInt(v)
}

// MustMoney creates Money from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Floor rounds toward negative infinity to whole yen.
func Floor(m Money) Money {
	return m.Floor()
}

// Percent returns floor(amount * rate / 100).
func Percent(amount Money, rate decimal.Decimal) Money {
	return amount.Mul(rate).Div(hundred).Floor()
}

// RateOf returns floor(amount / 100 * rate). Invoice service fees and
// taxes divide first.
func RateOf(amount Money, rate decimal.Decimal) Money {
	return amount.Div(hundred).Mul(rate).Floor()
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Hours converts a duration to fractional hours at minute precision.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Minute)).Div(minutesHour)
}
