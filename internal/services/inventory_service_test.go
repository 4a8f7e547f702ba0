package services

import (
	"context"
	"testing"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestInventoryService(available int) (*InventoryService, *memoryStore, *fakeActivities) {
	store := newMemoryStore(testEvent(available))
	activities := &fakeActivities{}
	return NewInventoryService(store, activities, "NGN"), store, activities
}

func TestInventoryService_AddTier(t *testing.T) {
	service, store, activities := setupTestInventoryService(10)

	tier, err := service.AddTier(context.Background(), "evt-1", TierInput{
		TicketName: " VIP ",
		Price:      decimal.NewFromInt(25000),
		Quantity:   40,
		Benefits:   []string{"Front row"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tier.ID)
	assert.Equal(t, "VIP", tier.TicketName)
	assert.Equal(t, "NGN", tier.Currency)
	assert.Equal(t, 40, tier.InitialQuantity)
	assert.Equal(t, 40, tier.AvailableQuantity)

	event := store.event("evt-1")
	require.Len(t, event.Tickets, 2)
	stored, ok := event.Tier(tier.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"Front row"}, stored.Benefits)
	assert.Equal(t, []models.ActivityType{models.ActivityEventUpdated}, activities.kinds())
}

func TestInventoryService_AddTierValidation(t *testing.T) {
	service, _, _ := setupTestInventoryService(10)
	ctx := context.Background()

	_, err := service.AddTier(ctx, "evt-1", TierInput{TicketName: "", Quantity: 1})
	assert.Equal(t, status.KindValidation, status.KindOf(err))

	_, err = service.AddTier(ctx, "evt-1", TierInput{TicketName: "VIP", Quantity: -1})
	assert.ErrorIs(t, err, status.ErrInvalidQuantity)

	_, err = service.AddTier(ctx, "missing", TierInput{TicketName: "VIP", Quantity: 1})
	assert.ErrorIs(t, err, status.ErrEventNotFound)
}

func TestInventoryService_UpdateTierQuantityRules(t *testing.T) {
	tests := []struct {
		name              string
		edit              int
		expectedInitial   int
		expectedAvailable int
	}{
		{"close sales", 0, 6, 0},
		{"restock", 9, 15, 9},
		{"lower", 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, _ := setupTestInventoryService(4)

			edit := tt.edit
			tier, err := service.UpdateTier(context.Background(), "evt-1", "tier-reg", TierUpdate{Quantity: &edit})
			require.NoError(t, err)

			assert.Equal(t, tt.expectedInitial, tier.InitialQuantity)
			assert.Equal(t, tt.expectedAvailable, tier.AvailableQuantity)

			stored := store.event("evt-1").Tickets[0]
			assert.Equal(t, tt.expectedAvailable, stored.AvailableQuantity)
		})
	}
}

func TestInventoryService_UpdateTierRejectsNegativeAndKeepsState(t *testing.T) {
	service, store, activities := setupTestInventoryService(4)

	negative := -3
	name := "Renamed"
	_, err := service.UpdateTier(context.Background(), "evt-1", "tier-reg", TierUpdate{Quantity: &negative, TicketName: &name})
	assert.ErrorIs(t, err, status.ErrInvalidQuantity)

	stored := store.event("evt-1").Tickets[0]
	assert.Equal(t, "Regular", stored.TicketName)
	assert.Equal(t, 4, stored.AvailableQuantity)
	assert.Empty(t, activities.kinds())
}

func TestInventoryService_UpdateTierFields(t *testing.T) {
	service, _, _ := setupTestInventoryService(4)

	name := "Early Bird"
	price := decimal.RequireFromString("3500.50")
	tier, err := service.UpdateTier(context.Background(), "evt-1", "tier-reg", TierUpdate{
		TicketName: &name,
		Price:      &price,
		Benefits:   []string{"Free drink"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Early Bird", tier.TicketName)
	assert.True(t, price.Equal(tier.Price))
	assert.Equal(t, []string{"Free drink"}, tier.Benefits)
	assert.Equal(t, 4, tier.AvailableQuantity)

	_, err = service.UpdateTier(context.Background(), "evt-1", "missing", TierUpdate{})
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}
