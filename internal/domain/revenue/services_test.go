package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
)

func TestSummarizeTypes(t *testing.T) {
	sales := []ServiceSale{
		{ServiceID: id.New(), Type: catalog.TypeDrinks, Name: "コーヒー", Count: yen(10), Amount: yen(3000), AccumulatedCount: yen(40), AccumulatedAmount: yen(12000)},
		{ServiceID: id.New(), Type: catalog.TypeDrinks, Name: "お茶", Count: yen(5), Amount: yen(1000), AccumulatedCount: yen(5), AccumulatedAmount: yen(1000)},
		{ServiceID: id.New(), Type: catalog.TypeFood, Name: "オードブル", Count: yen(1), Amount: yen(8000), AccumulatedCount: yen(3), AccumulatedAmount: yen(24000)},
		{ServiceID: id.New(), Type: catalog.TypeCopyFee, Name: "コピー", Count: yen(100), Amount: yen(1000)},
	}

	types, total := SummarizeTypes(sales)

	require.Len(t, types, len(SoldTypes))
	assert.Equal(t, catalog.TypeFood, types[0].Type)
	assert.Equal(t, "料理", types[0].Label)
	assert.True(t, types[0].Amount.Equal(yen(8000)))
	assert.Equal(t, catalog.TypeDrinks, types[2].Type)
	assert.True(t, types[2].Count.Equal(yen(15)))
	assert.True(t, types[2].AccumulatedAmount.Equal(yen(13000)))
	assert.True(t, types[1].Amount.IsZero(), "types without sales stay listed")

	assert.Equal(t, "合計", total.Label)
	assert.True(t, total.Amount.Equal(yen(12000)), "unlisted types are left out: %s", total.Amount)
	assert.True(t, total.AccumulatedAmount.Equal(yen(37000)))
}

func TestService_ServiceSales(t *testing.T) {
	svc, repo := newReportFixture()
	repo.sales = []ServiceSale{
		{ServiceID: id.New(), Type: catalog.TypeBoxLunch, Name: "幕の内弁当", Count: yen(12), Amount: yen(14400)},
	}

	r, err := svc.ServiceSales(context.Background(), time.Date(2026, 5, 8, 15, 0, 0, 0, svc.loc))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC), r.Day)
	require.Len(t, r.Services, 1)
	assert.True(t, r.Types[1].Amount.Equal(yen(14400)))
	assert.True(t, r.Total.Count.Equal(yen(12)))
	require.Len(t, repo.windows, 1)
	assert.Equal(t, r.Day, repo.windows[0].FirstDay())
	assert.Equal(t, svc.now(), r.IssuedAt)
}
