package store

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type EventRepository struct {
	app core.App
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	record, err := findOne(ctx, r.app, collectionEvents, dbx.HashExp{"id": id})
	if isNotFound(err) {
		return nil, status.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return EventFromRecord(record)
}

// Save writes the event's tiers back. Only the tier list is owned by this
// service; the other fields are edited through the admin UI.
func (r *EventRepository) Save(ctx context.Context, event *models.Event) error {
	if err := event.ValidateTiers(); err != nil {
		return err
	}

	record, err := findOne(ctx, r.app, collectionEvents, dbx.HashExp{"id": event.ID})
	if isNotFound(err) {
		return status.ErrEventNotFound
	}
	if err != nil {
		return err
	}

	record.Set("tickets", event.Tickets)
	return r.app.SaveWithContext(ctx, record)
}

func (r *EventRepository) CountPublished(_ context.Context) (int, error) {
	n, err := r.app.CountRecords(collectionEvents, dbx.HashExp{"status": models.EventStatusPublished})
	return int(n), err
}

func (r *EventRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Event, error) {
	var records []*core.Record
	err := r.app.RecordQuery(collectionEvents).
		AndWhere(dbx.HashExp{"status": models.EventStatusPublished}).
		AndWhere(dbx.NewExp("start_date > {:after}", dbx.Params{"after": dbTime(after)})).
		OrderBy("start_date ASC").
		Limit(int64(limit)).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}

	events := make([]*models.Event, 0, len(records))
	for _, record := range records {
		event, err := EventFromRecord(record)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// EventFromRecord decodes an events record including its ticket tiers.
func EventFromRecord(record *core.Record) (*models.Event, error) {
	event := &models.Event{
		ID:        record.Id,
		Title:     record.GetString("title"),
		Venue:     record.GetString("venue"),
		Address:   record.GetString("address"),
		Theme:     record.GetString("theme"),
		Status:    record.GetString("status"),
		StartDate: record.GetDateTime("start_date").Time(),
		EndDate:   record.GetDateTime("end_date").Time(),
	}
	if err := record.UnmarshalJSONField("tickets", &event.Tickets); err != nil {
		return nil, fmt.Errorf("event %s: decode tickets: %w", record.Id, err)
	}
	return event, nil
}
