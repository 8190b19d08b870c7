//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory321/threadfolio/internal/models"
)

// These tests run against a real Postgres:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/store/
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.Migrate("../../migrations"))
	t.Cleanup(func() { s.Close() })
	return s
}

type testTenant struct {
	userID   int
	clientID int
	stageID  int
}

func seedTenant(t *testing.T, s *Store, name string) testTenant {
	t.Helper()
	ctx := context.Background()

	username := fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	userID, err := s.CreateUser(ctx, username, "not-a-real-hash", "Test Atelier")
	require.NoError(t, err)
	require.NoError(t, s.SeedDefaultStages(ctx, userID))
	stageID, err := s.FirstStageID(ctx, userID)
	require.NoError(t, err)

	client := &models.Client{UserID: userID, FullName: "Casey Tailor", Phone: "5551234567"}
	require.NoError(t, s.CreateClient(ctx, client))

	return testTenant{userID: userID, clientID: client.ID, stageID: stageID}
}

func buildOrder(tn testTenant) *models.Order {
	return &models.Order{
		UserID:   tn.userID,
		ClientID: tn.clientID,
		Status:   "new",
		Garments: []models.Garment{{
			Name:    "Blue dress",
			StageID: tn.stageID,
			Services: []models.GarmentService{
				{Name: "Hemming", Quantity: 2, Unit: "item", UnitPrice: 15.00},
			},
		}},
	}
}

func TestCreateOrderWithGarmentsCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tn := seedTenant(t, s, "commit")

	order := buildOrder(tn)
	require.NoError(t, s.CreateOrderWithGarments(ctx, order))
	assert.Equal(t, 1, order.OrderNumber)
	assert.Equal(t, 30.00, order.Total)
	require.NotZero(t, order.Garments[0].ID)
	require.NotZero(t, order.Garments[0].Services[0].ID)

	loaded, err := s.GetOrderByID(ctx, tn.userID, order.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Garments, 1)
	require.Len(t, loaded.Garments[0].Services, 1)
	assert.Equal(t, 30.00, loaded.Total)
	assert.Equal(t, "Hemming", loaded.Garments[0].Services[0].Name)
}

func TestCreateOrderWithGarmentsAllocatesPerTenantNumbers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedTenant(t, s, "numbers-a")
	b := seedTenant(t, s, "numbers-b")

	first := buildOrder(a)
	second := buildOrder(a)
	other := buildOrder(b)
	require.NoError(t, s.CreateOrderWithGarments(ctx, first))
	require.NoError(t, s.CreateOrderWithGarments(ctx, second))
	require.NoError(t, s.CreateOrderWithGarments(ctx, other))

	assert.Equal(t, 1, first.OrderNumber)
	assert.Equal(t, 2, second.OrderNumber)
	assert.Equal(t, 1, other.OrderNumber)
}

func TestCreateOrderWithGarmentsRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tn := seedTenant(t, s, "rollback")

	order := buildOrder(tn)
	// The second garment references a stage that does not exist, so its
	// insert violates the foreign key after the order row is in.
	order.Garments = append(order.Garments, models.Garment{
		Name:    "Torn jacket",
		StageID: -1,
		Services: []models.GarmentService{
			{Name: "Patch", Quantity: 1, Unit: "item", UnitPrice: 20.00},
		},
	})

	require.Error(t, s.CreateOrderWithGarments(ctx, order))

	count, err := s.GetTotalOrdersCount(ctx, tn.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "failed submit must leave no partial order behind")

	garments, err := s.GetTotalGarmentsCount(ctx, tn.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, garments)
}

func TestCreateOrderWithGarmentsRejectsEmptyOrder(t *testing.T) {
	s := newTestStore(t)
	tn := seedTenant(t, s, "empty")

	order := buildOrder(tn)
	order.Garments = nil
	require.Error(t, s.CreateOrderWithGarments(context.Background(), order))
}
