package handlers

import (
	"net/http"

	"event-ticketing/internal/services"
	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/core"
)

type EventHandler struct {
	inventory *services.InventoryService
}

func NewEventHandler(inventory *services.InventoryService) *EventHandler {
	return &EventHandler{inventory: inventory}
}

// GetEvent is public. Drafts are reported as missing.
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	event, err := h.inventory.GetEvent(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return apiError(e, "eventHandler.GetEvent()", err)
	}
	if event.Status != models.EventStatusPublished {
		return apiError(e, "eventHandler.GetEvent()", status.ErrEventNotFound)
	}
	return e.JSON(http.StatusOK, map[string]any{"event": event})
}

func (h *EventHandler) AddTier(e *core.RequestEvent) error {
	var req services.TierInput
	if err := bindBody(e, &req); err != nil {
		return err
	}

	tier, err := h.inventory.AddTier(e.Request.Context(), e.Request.PathValue("eventId"), req)
	if err != nil {
		return apiError(e, "eventHandler.AddTier()", err)
	}
	return e.JSON(http.StatusCreated, map[string]any{"ticket": tier})
}

func (h *EventHandler) UpdateTier(e *core.RequestEvent) error {
	var req services.TierUpdate
	if err := bindBody(e, &req); err != nil {
		return err
	}

	tier, err := h.inventory.UpdateTier(e.Request.Context(), e.Request.PathValue("eventId"), e.Request.PathValue("ticketId"), req)
	if err != nil {
		return apiError(e, "eventHandler.UpdateTier()", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"ticket": tier})
}
