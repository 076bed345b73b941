package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"venuedesk/internal/core/id"
)

func TestWindow_Holds(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	customer := id.New()
	other := id.New()
	window := Window{CustomerID: customer, Start: at(13, 0), End: at(15, 0)}

	tests := []struct {
		name  string
		usage Usage
		want  bool
	}{
		{"same customer touching before", Usage{CustomerID: customer, Start: at(11, 0), End: at(13, 0)}, false},
		{"other customer touching before is inside buffer", Usage{CustomerID: other, Start: at(11, 0), End: at(13, 0)}, true},
		{"other customer 30 minutes apart", Usage{CustomerID: other, Start: at(10, 0), End: at(12, 30)}, false},
		{"other customer 29 minutes apart", Usage{CustomerID: other, Start: at(10, 0), End: at(12, 31)}, true},
		{"same customer overlapping", Usage{CustomerID: customer, Start: at(14, 0), End: at(16, 0)}, true},
		{"window covers usage", Usage{CustomerID: customer, Start: at(13, 30), End: at(14, 0)}, true},
		{"same customer after", Usage{CustomerID: customer, Start: at(15, 0), End: at(17, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, window.Holds(tt.usage))
		})
	}

	t.Run("excluded detail never counts", func(t *testing.T) {
		detailID := id.New()
		w := window
		w.ExcludeDetailID = detailID
		assert.False(t, w.Holds(Usage{BookingDetailID: detailID, CustomerID: customer, Start: at(13, 0), End: at(15, 0)}))
	})
}

func TestAvailable(t *testing.T) {
	count := func(n int) *int { return &n }
	svc := func(managed bool, stock *int) *Service {
		s := NewService("mic", TypeDevice, SubtotalConsumptionTax, LocationMeetingRoom, decimal.NewFromInt(500), time.Now())
		s.HasStockManagement = managed
		s.StockCount = stock
		return s
	}

	assert.Equal(t, 3, Available(svc(true, count(5)), 2))
	assert.Equal(t, 0, Available(svc(true, count(5)), 9))
	assert.Equal(t, 5, Available(svc(false, count(5)), 9))
	assert.Equal(t, 0, Available(svc(true, nil), 0))
}

func TestFixedServiceIDs_Validate(t *testing.T) {
	f := FixedServiceIDs{BasicFee: id.New(), ExtensionFee: id.New(), AllDayFee: id.New(), IncurredFee: id.New(), CancelFee: id.New()}
	assert.NoError(t, f.Validate())
	assert.True(t, f.IsRoomFee(f.AllDayFee))
	assert.False(t, f.IsRoomFee(f.CancelFee))

	f.CancelFee = f.BasicFee
	assert.Error(t, f.Validate())
}
