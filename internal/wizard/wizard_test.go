package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory321/threadfolio/internal/models"
)

func draft(id, name string) GarmentDraft {
	return GarmentDraft{
		ID:   id,
		Name: name,
		Services: []ServiceLine{
			{Name: "Hem", Quantity: 1, Unit: "item", UnitPrice: 15.00},
		},
	}
}

func TestAddOrUpdateGarmentAppends(t *testing.T) {
	st := NewState()
	st.AddOrUpdateGarment(draft("a", "Dress"))
	st.AddOrUpdateGarment(draft("b", "Suit"))

	require.Len(t, st.Garments, 2)
	assert.Equal(t, "Dress", st.Garments[0].Name)
	assert.Equal(t, "Suit", st.Garments[1].Name)
}

func TestAddOrUpdateGarmentReplacesInPlace(t *testing.T) {
	st := NewState()
	st.AddOrUpdateGarment(draft("a", "Dress"))
	st.AddOrUpdateGarment(draft("b", "Suit"))
	st.AddOrUpdateGarment(draft("c", "Skirt"))

	updated := draft("b", "Suit (altered)")
	st.AddOrUpdateGarment(updated)

	// Length unchanged, order preserved, entry replaced.
	require.Len(t, st.Garments, 3)
	assert.Equal(t, "Dress", st.Garments[0].Name)
	assert.Equal(t, "Suit (altered)", st.Garments[1].Name)
	assert.Equal(t, "Skirt", st.Garments[2].Name)
}

func TestRemoveGarment(t *testing.T) {
	st := NewState()
	st.AddOrUpdateGarment(draft("a", "Dress"))
	st.AddOrUpdateGarment(draft("b", "Suit"))

	st.RemoveGarment("a")
	require.Len(t, st.Garments, 1)
	assert.Equal(t, "b", st.Garments[0].ID)

	st.RemoveGarment("missing")
	assert.Len(t, st.Garments, 1)
}

func TestCanAdvance(t *testing.T) {
	st := NewState()
	assert.False(t, st.CanAdvance(), "no client selected yet")

	st.SetSelectedClient(&models.Client{ID: 7, FullName: "Bob Ross"})
	assert.True(t, st.CanAdvance())

	st.SetActiveStep(StepGarment)
	assert.False(t, st.CanAdvance(), "no garments committed yet")

	st.AddOrUpdateGarment(draft("a", "Dress"))
	assert.True(t, st.CanAdvance())

	st.SetActiveStep(StepSummary)
	assert.False(t, st.CanAdvance(), "summary is the last step")
}

func TestSetActiveStepBounds(t *testing.T) {
	st := NewState()
	st.SetActiveStep(StepSummary)
	assert.Equal(t, StepSummary, st.ActiveStep)
	st.SetActiveStep(99)
	assert.Equal(t, StepSummary, st.ActiveStep)
	st.SetActiveStep(-1)
	assert.Equal(t, StepSummary, st.ActiveStep)
}

func TestOrderTotal(t *testing.T) {
	st := NewState()
	st.AddOrUpdateGarment(GarmentDraft{ID: "a", Name: "Dress", Services: []ServiceLine{
		{Name: "Hem", Quantity: 2, Unit: "item", UnitPrice: 15.00},
		{Name: "Fitting", Quantity: 3, Unit: "hour", UnitPrice: 20.00},
	}})
	st.AddOrUpdateGarment(GarmentDraft{ID: "b", Name: "Suit", Services: []ServiceLine{
		{Name: "Press", Quantity: 1, Unit: "item", UnitPrice: 9.99},
	}})

	assert.Equal(t, 30.00, st.Garments[0].Services[0].Total())
	assert.Equal(t, 99.99, st.OrderTotal())
}

func TestSnapshotRoundTrip(t *testing.T) {
	due := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	st := NewState()
	st.SetSelectedClient(&models.Client{ID: 3, UserID: 1, FullName: "Bob Ross", Email: "bob@example.com"})
	st.AddOrUpdateGarment(GarmentDraft{
		ID:      "a",
		Name:    "Wedding dress",
		DueDate: &due,
		IsEvent: true,
		Services: []ServiceLine{
			{Name: "Take in bodice", Quantity: 2, Unit: "hour", UnitPrice: 45.50},
		},
	})
	st.SetActiveStep(StepSummary)

	data, err := st.Serialize()
	require.NoError(t, err)

	restored, err := RestoreSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, st, restored)
}

func TestRestoreSnapshotRejectsUnknownVersion(t *testing.T) {
	_, err := RestoreSnapshot([]byte(`{"version":99,"state":{"active_step":0}}`))
	assert.Error(t, err)

	_, err = RestoreSnapshot([]byte(`not json`))
	assert.Error(t, err)

	_, err = RestoreSnapshot([]byte(`{"version":1}`))
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	st := NewState()
	st.SetSelectedClient(&models.Client{ID: 3})
	st.AddOrUpdateGarment(draft("a", "Dress"))
	st.SetActiveStep(StepSummary)

	st.Clear()
	assert.Equal(t, StepClient, st.ActiveStep)
	assert.Nil(t, st.SelectedClient)
	assert.Empty(t, st.Garments)
}
