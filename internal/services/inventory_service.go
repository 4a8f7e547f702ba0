package services

import (
	"context"
	"fmt"
	"strings"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/tools/security"
	"github.com/shopspring/decimal"
)

type TierInput struct {
	TicketName string          `json:"ticketName"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	Quantity   int             `json:"quantity"`
	Benefits   []string        `json:"benefits"`
}

// TierUpdate carries optional changes. Quantity is the new available count.
type TierUpdate struct {
	TicketName *string          `json:"ticketName"`
	Price      *decimal.Decimal `json:"price"`
	Benefits   []string         `json:"benefits"`
	Quantity   *int             `json:"quantity"`
}

type InventoryService struct {
	store           Store
	activities      ActivityRecorder
	defaultCurrency string
}

func NewInventoryService(store Store, activities ActivityRecorder, defaultCurrency string) *InventoryService {
	return &InventoryService{store: store, activities: activities, defaultCurrency: defaultCurrency}
}

func (s *InventoryService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return s.store.Events().FindByID(ctx, eventID)
}

// AddTier appends a tier whose whole initial stock is available.
func (s *InventoryService) AddTier(ctx context.Context, eventID string, in TierInput) (*models.TicketTier, error) {
	name := strings.TrimSpace(in.TicketName)
	if name == "" {
		return nil, status.NewValidation("inventory", "Ticket name is required")
	}
	if in.Quantity < 0 {
		return nil, status.ErrInvalidQuantity
	}
	if in.Price.IsNegative() {
		return nil, status.NewValidation("inventory", "Price cannot be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	tier := models.TicketTier{
		ID:                security.RandomString(15),
		TicketName:        name,
		Price:             in.Price,
		Currency:          currency,
		InitialQuantity:   in.Quantity,
		AvailableQuantity: in.Quantity,
		Benefits:          in.Benefits,
	}

	var title string
	err := s.store.RunInTransaction(ctx, func(tx Store) error {
		event, err := tx.Events().FindByID(ctx, eventID)
		if err != nil {
			return err
		}
		event.Tickets = append(event.Tickets, tier)
		title = event.Title
		return tx.Events().Save(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("inventoryService.AddTier: %w", err)
	}

	s.activities.Record(ctx, models.ActivityEventUpdated, fmt.Sprintf("Ticket %q added to %s", tier.TicketName, title))
	return &tier, nil
}

// UpdateTier edits a tier in place. A quantity edit follows
// TicketTier.ApplyQuantityEdit and runs in the same database transaction as
// sale decrements.
func (s *InventoryService) UpdateTier(ctx context.Context, eventID, tierID string, in TierUpdate) (*models.TicketTier, error) {
	if in.TicketName != nil && strings.TrimSpace(*in.TicketName) == "" {
		return nil, status.NewValidation("inventory", "Ticket name cannot be empty")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, status.NewValidation("inventory", "Price cannot be negative")
	}

	var (
		updated models.TicketTier
		title   string
	)
	err := s.store.RunInTransaction(ctx, func(tx Store) error {
		event, err := tx.Events().FindByID(ctx, eventID)
		if err != nil {
			return err
		}

		tier, ok := event.Tier(tierID)
		if !ok {
			return status.ErrTicketNotFound
		}

		if in.Quantity != nil {
			if err := tier.ApplyQuantityEdit(*in.Quantity); err != nil {
				return err
			}
		}
		if in.TicketName != nil {
			tier.TicketName = strings.TrimSpace(*in.TicketName)
		}
		if in.Price != nil {
			tier.Price = *in.Price
		}
		if in.Benefits != nil {
			tier.Benefits = in.Benefits
		}

		updated = *tier
		title = event.Title
		return tx.Events().Save(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("inventoryService.UpdateTier: %w", err)
	}

	s.activities.Record(ctx, models.ActivityEventUpdated, fmt.Sprintf("Ticket %q updated on %s", updated.TicketName, title))
	return &updated, nil
}
