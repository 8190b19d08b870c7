package wizard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory321/threadfolio/internal/models"
)

func newTestDraftStore(t *testing.T) *DraftStore {
	t.Helper()
	ds, err := NewDraftStore(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestDraftStoreRoundTrip(t *testing.T) {
	ds := newTestDraftStore(t)
	ctx := context.Background()

	st := NewState()
	st.SetSelectedClient(&models.Client{ID: 3, FullName: "Bob Ross"})
	st.AddOrUpdateGarment(GarmentDraft{ID: "a", Name: "Dress", Services: []ServiceLine{
		{Name: "Hem", Quantity: 2, Unit: "item", UnitPrice: 15.00},
	}})
	st.SetActiveStep(StepGarment)

	require.NoError(t, ds.Save(ctx, 1, st))

	restored, ok, err := ds.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, st, restored)
}

func TestDraftStoreMissingRow(t *testing.T) {
	ds := newTestDraftStore(t)

	st, ok, err := ds.Load(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, st)
}

func TestDraftStoreLastWriteWins(t *testing.T) {
	ds := newTestDraftStore(t)
	ctx := context.Background()

	first := NewState()
	first.SetSelectedClient(&models.Client{ID: 1, FullName: "First"})
	require.NoError(t, ds.Save(ctx, 1, first))

	second := NewState()
	second.SetSelectedClient(&models.Client{ID: 2, FullName: "Second"})
	require.NoError(t, ds.Save(ctx, 1, second))

	restored, ok, err := ds.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Second", restored.SelectedClient.FullName)
}

func TestDraftStoreClear(t *testing.T) {
	ds := newTestDraftStore(t)
	ctx := context.Background()

	require.NoError(t, ds.Save(ctx, 1, NewState()))
	require.NoError(t, ds.Clear(ctx, 1))

	_, ok, err := ds.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDraftStoreDiscardsUnknownVersion(t *testing.T) {
	ds := newTestDraftStore(t)
	ctx := context.Background()

	_, err := ds.db.ExecContext(ctx,
		`INSERT INTO order_drafts (user_id, snapshot) VALUES (?, ?)`,
		1, []byte(`{"version":99,"state":{}}`))
	require.NoError(t, err)

	st, ok, err := ds.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, st)
}

func TestDraftStoreIsolatesTenants(t *testing.T) {
	ds := newTestDraftStore(t)
	ctx := context.Background()

	one := NewState()
	one.SetSelectedClient(&models.Client{ID: 1, FullName: "Tenant One Client"})
	require.NoError(t, ds.Save(ctx, 1, one))

	_, ok, err := ds.Load(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
