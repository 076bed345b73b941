package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/domain/catalog"
)

type fakeCreator struct {
	created []*catalog.Service
	failOn  string
}

func (f *fakeCreator) Create(_ context.Context, s *catalog.Service) error {
	if s.Name == f.failOn {
		return errors.New("insert failed")
	}
	f.created = append(f.created, s)
	return nil
}

func TestSeedFixedServices(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("all fixed services are created with distinct ids", func(t *testing.T) {
		creator := &fakeCreator{}
		ids, err := seedFixedServices(context.Background(), creator, now)

		require.NoError(t, err)
		require.Len(t, creator.created, 5)
		require.NoError(t, ids.Validate())
		assert.Equal(t, creator.created[4].ID, ids.CancelFee)
		assert.Equal(t, catalog.TypeCancelFee, creator.created[4].Type)
		for _, s := range creator.created {
			assert.NoError(t, s.Validate(context.Background()), s.Name)
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		creator := &fakeCreator{failOn: "終日料金"}
		_, err := seedFixedServices(context.Background(), creator, now)

		assert.ErrorContains(t, err, "終日料金")
		assert.Len(t, creator.created, 2)
	})
}
