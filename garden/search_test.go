package garden

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterPlants(t *testing.T) {
	plants := []Plant{
		{ID: 1, Name: "Apple 1", Type: PlantTypeFruit},
		{ID: 2, Name: "Vine 1-1", Type: PlantTypeGrape},
		{ID: 12, Name: "Bed A", Type: PlantTypeBed},
	}

	t.Run("blank query matches nothing", func(t *testing.T) {
		assert.Empty(t, FilterPlants(plants, ""))
		assert.Empty(t, FilterPlants(plants, "   "))
	})

	t.Run("by name, case-insensitive", func(t *testing.T) {
		got := FilterPlants(plants, "  APPLE ")
		assert.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ID)
	})

	t.Run("by type", func(t *testing.T) {
		got := FilterPlants(plants, "grape")
		assert.Len(t, got, 1)
		assert.Equal(t, uint(2), got[0].ID)
	})

	t.Run("by exact id", func(t *testing.T) {
		got := FilterPlants(plants, "12")
		assert.Len(t, got, 1)
		assert.Equal(t, uint(12), got[0].ID)
	})

	t.Run("no partial id match", func(t *testing.T) {
		// "1" matches plant 1 by id and the others by name substring only
		got := FilterPlants(plants, "7")
		assert.Empty(t, got)
	})
}
