package room

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"venuedesk/internal/core/id"
)

func TestRoomSet_Targets(t *testing.T) {
	set := id.New()
	subA := id.New()
	subB := id.New()
	plain := id.New()
	rs := RoomSet{SetID: set, SubIDs: []id.ID{subA, subB}}

	t.Run("set blocks every sub-room", func(t *testing.T) {
		assert.ElementsMatch(t, []id.ID{set, subA, subB}, rs.Targets(set))
	})

	t.Run("sub-room blocks the set but not siblings", func(t *testing.T) {
		targets := rs.Targets(subA)
		assert.ElementsMatch(t, []id.ID{subA, set}, targets)
		assert.NotContains(t, targets, subB)
	})

	t.Run("plain room targets itself", func(t *testing.T) {
		assert.Equal(t, []id.ID{plain}, rs.Targets(plain))
	})

	t.Run("no set configured", func(t *testing.T) {
		assert.Equal(t, []id.ID{subA}, RoomSet{}.Targets(subA))
	})

	t.Run("symmetry between set and sub-rooms", func(t *testing.T) {
		for _, sub := range rs.SubIDs {
			assert.Contains(t, rs.Targets(set), sub)
			assert.Contains(t, rs.Targets(sub), set)
		}
	})

	t.Run("blocked by excludes the room itself", func(t *testing.T) {
		assert.Equal(t, []id.ID{set}, rs.BlockedBy(subB))
		assert.Nil(t, rs.BlockedBy(plain))
	})
}
