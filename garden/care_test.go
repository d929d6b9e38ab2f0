package garden

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCareFixture(t *testing.T) (*Repository, *CareEngine, context.Context) {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	engine := NewCareEngine(repo)
	engine.now = fixedNow(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	return repo, engine, context.Background()
}

func TestCareStatusNoEvents(t *testing.T) {
	repo, engine, ctx := newCareFixture(t)

	id, err := repo.AddPlant(ctx, &Plant{Name: "Quince", Type: PlantTypeFruit})
	require.NoError(t, err)

	status, err := engine.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, CareNeglected, status)
}

// Spraying does not count as care; a plant with only spray history is
// still neglected.
func TestCareStatusSprayOnly(t *testing.T) {
	repo, engine, ctx := newCareFixture(t)

	id, err := repo.AddPlant(ctx, &Plant{Name: "Vine 4-4", Type: PlantTypeGrape, Row: intPtr(4)})
	require.NoError(t, err)
	_, err = repo.AddEvent(ctx, &Event{PlantID: id, EventType: EventSpray, Date: "2026-02-04"})
	require.NoError(t, err)

	status, err := engine.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, CareNeglected, status)
}

func TestCareStatusThresholds(t *testing.T) {
	cases := []struct {
		name string
		date string
		want CareStatus
	}{
		{"three days ago", "2026-02-02", CareHealthy},
		{"exactly a week", "2026-01-29", CareHealthy},
		{"ten days ago", "2026-01-26", CareAttention},
		{"exactly two weeks", "2026-01-22", CareAttention},
		{"twenty days ago", "2026-01-16", CareNeglected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, engine, ctx := newCareFixture(t)

			id, err := repo.AddPlant(ctx, &Plant{Name: "Peach", Type: PlantTypeFruit})
			require.NoError(t, err)
			_, err = repo.AddEvent(ctx, &Event{PlantID: id, EventType: EventPruned, Date: tc.date})
			require.NoError(t, err)
			// a newer spray never masks the real care recency
			_, err = repo.AddEvent(ctx, &Event{PlantID: id, EventType: EventSpray, Date: "2026-02-04"})
			require.NoError(t, err)

			status, err := engine.Status(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}
