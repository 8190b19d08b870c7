// Package wizard holds the order-creation workflow state: the selected
// client, the garment currently being edited, and the garments already
// committed to the in-progress order. The state lives in memory per
// request and is mirrored to a local draft database so an interrupted
// session survives a reload or server restart.
package wizard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cory321/threadfolio/internal/models"
)

// Wizard steps.
const (
	StepClient  = 0
	StepGarment = 1
	StepSummary = 2
)

// ServiceLine is an unsaved garment service line.
type ServiceLine struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
}

// Total is quantity x unit price rounded to cents.
func (l ServiceLine) Total() float64 {
	return float64(int64(float64(l.Quantity)*l.UnitPrice*100+0.5)) / 100
}

// GarmentDraft is an unsaved garment. Drafts carry uuid identities so
// the garment list can be edited in place before anything exists in the
// database.
type GarmentDraft struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Instructions string        `json:"instructions"`
	DueDate      *time.Time    `json:"due_date"`
	IsEvent      bool          `json:"is_event"`
	EventDate    *time.Time    `json:"event_date"`
	ImagePath    string        `json:"image_path"`
	Services     []ServiceLine `json:"services"`
}

func (d *GarmentDraft) Total() float64 {
	var total float64
	for _, l := range d.Services {
		total += l.Total()
	}
	return total
}

// State is the workflow container for one tenant's in-progress order.
type State struct {
	ActiveStep     int            `json:"active_step"`
	SelectedClient *models.Client `json:"selected_client"`
	GarmentDraft   *GarmentDraft  `json:"garment_draft"`
	Garments       []GarmentDraft `json:"garments"`
	OrderID        int            `json:"order_id"`
}

func NewState() *State {
	return &State{ActiveStep: StepClient}
}

func (st *State) SetSelectedClient(c *models.Client) {
	st.SelectedClient = c
}

func (st *State) SetGarmentDraft(d *GarmentDraft) {
	st.GarmentDraft = d
}

func (st *State) SetActiveStep(step int) {
	if step < StepClient || step > StepSummary {
		return
	}
	st.ActiveStep = step
}

// CanAdvance reports whether the forward transition out of a step is
// allowed. Leaving client selection requires a selected client; leaving
// garment entry requires at least one committed garment.
func (st *State) CanAdvance() bool {
	switch st.ActiveStep {
	case StepClient:
		return st.SelectedClient != nil
	case StepGarment:
		return len(st.Garments) > 0
	default:
		return false
	}
}

// AddOrUpdateGarment upserts by draft id: an id match replaces the entry
// in place (list length and order preserved), a new id appends.
func (st *State) AddOrUpdateGarment(d GarmentDraft) {
	for i := range st.Garments {
		if st.Garments[i].ID == d.ID {
			st.Garments[i] = d
			return
		}
	}
	st.Garments = append(st.Garments, d)
}

// RemoveGarment drops a draft from the committed list.
func (st *State) RemoveGarment(id string) {
	for i := range st.Garments {
		if st.Garments[i].ID == id {
			st.Garments = append(st.Garments[:i], st.Garments[i+1:]...)
			return
		}
	}
}

// FindGarment returns the committed draft with the given id, or nil.
func (st *State) FindGarment(id string) *GarmentDraft {
	for i := range st.Garments {
		if st.Garments[i].ID == id {
			return &st.Garments[i]
		}
	}
	return nil
}

// OrderTotal sums every committed garment's lines.
func (st *State) OrderTotal() float64 {
	var total float64
	for i := range st.Garments {
		total += st.Garments[i].Total()
	}
	return total
}

// Clear resets the workflow. Runs on successful submit and on explicit
// draft discard.
func (st *State) Clear() {
	*st = State{ActiveStep: StepClient}
}

// snapshotVersion guards the serialized draft format. Bump it when the
// State shape changes incompatibly; unknown versions are discarded on
// restore rather than half-decoded.
const snapshotVersion = 1

type snapshot struct {
	Version int    `json:"version"`
	State   *State `json:"state"`
}

// Serialize renders the state as a versioned snapshot.
func (st *State) Serialize() ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotVersion, State: st})
}

// RestoreSnapshot decodes a snapshot previously produced by Serialize.
func RestoreSnapshot(data []byte) (*State, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode draft snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported draft snapshot version %d", snap.Version)
	}
	if snap.State == nil {
		return nil, fmt.Errorf("draft snapshot has no state")
	}
	return snap.State, nil
}
