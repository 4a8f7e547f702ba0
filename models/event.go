package models

import (
	"time"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
)

type Event struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Venue     string       `json:"venue"`
	Address   string       `json:"address"`
	Theme     string       `json:"theme"`
	Status    string       `json:"status"` // draft, published
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Tickets   []TicketTier `json:"tickets"`
}

// Tier returns a pointer into e.Tickets so mutations persist with the event.
func (e *Event) Tier(id string) (*TicketTier, bool) {
	for i := range e.Tickets {
		if e.Tickets[i].ID == id {
			return &e.Tickets[i], true
		}
	}
	return nil, false
}

// ValidateTiers checks every tier's quantity bounds.
func (e *Event) ValidateTiers() error {
	for i := range e.Tickets {
		if err := e.Tickets[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

type EventSummary struct {
	Title     string    `json:"title"`
	Venue     string    `json:"venue"`
	Address   string    `json:"address"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Theme     string    `json:"theme"`
}

func (e *Event) Summary() EventSummary {
	return EventSummary{
		Title:     e.Title,
		Venue:     e.Venue,
		Address:   e.Address,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		Theme:     e.Theme,
	}
}
