package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		rate   int64
		want   string
	}{
		{"whole", "3000", 10, "300"},
		{"floors fraction", "1234", 10, "123"},
		{"half rate", "7700", 50, "3850"},
		{"zero", "0", 10, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(MustMoney(tt.amount), decimal.NewFromInt(tt.rate))
			assert.True(t, MustMoney(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestHours(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(1.5).Equal(Hours(90*time.Minute)))
	assert.True(t, decimal.NewFromInt(10).Equal(Hours(10*time.Hour+30*time.Second)))
}

func TestDaysBetween(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	start := time.Date(2026, 3, 21, 10, 0, 0, 0, loc)

	assert.Equal(t, 20, DaysBetween(start, time.Date(2026, 3, 1, 18, 0, 0, 0, loc), loc))
	assert.Equal(t, 0, DaysBetween(start, time.Date(2026, 3, 21, 23, 0, 0, 0, loc), loc))
	assert.Equal(t, -1, DaysBetween(start, time.Date(2026, 3, 22, 0, 0, 0, 0, loc), loc))
}

func TestDaysIn(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	assert.Equal(t, 28, DaysIn(2026, time.February, loc))
	assert.Equal(t, 31, DaysIn(2026, time.December, loc))
}
