//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A line-item mutation addressed through one garment must never reach a
// line that belongs to a different garment, even when the service id is
// guessed. The garment id is the tenant-verified half of the pair.
func TestServiceMutationsAreGarmentScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedTenant(t, s, "scoped-owner")
	other := seedTenant(t, s, "scoped-other")

	ownerOrder := buildOrder(owner)
	require.NoError(t, s.CreateOrderWithGarments(ctx, ownerOrder))
	victim := ownerOrder.Garments[0].Services[0]

	otherOrder := buildOrder(other)
	require.NoError(t, s.CreateOrderWithGarments(ctx, otherOrder))
	mine := otherOrder.Garments[0]

	// Toggling through my own garment with someone else's service id is
	// a no-op, not an update.
	require.NoError(t, s.UpdateServiceDoneStatus(ctx, mine.ID, victim.ID, true))
	services, err := s.GetGarmentServices(ctx, victim.GarmentID)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.False(t, services[0].Done)

	// Same for delete: the foreign line survives.
	require.NoError(t, s.DeleteGarmentService(ctx, mine.ID, victim.ID))
	services, err = s.GetGarmentServices(ctx, victim.GarmentID)
	require.NoError(t, err)
	assert.Len(t, services, 1)

	// The matched pair still works.
	require.NoError(t, s.UpdateServiceDoneStatus(ctx, victim.GarmentID, victim.ID, true))
	services, err = s.GetGarmentServices(ctx, victim.GarmentID)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, services[0].Done)

	require.NoError(t, s.DeleteGarmentService(ctx, mine.ID, mine.Services[0].ID))
	services, err = s.GetGarmentServices(ctx, mine.ID)
	require.NoError(t, err)
	assert.Empty(t, services)
}
