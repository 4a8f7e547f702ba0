package store

import (
	"context"

	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/core"
)

type ActivityRepository struct {
	app core.App
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	record, err := newRecord(r.app, collectionActivities)
	if err != nil {
		return err
	}
	record.Set("title", activity.Title)
	record.Set("type", string(activity.Type))

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return err
	}
	activity.ID = record.Id
	activity.Created = record.GetDateTime("created").Time()
	return nil
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	var records []*core.Record
	err := r.app.RecordQuery(collectionActivities).
		OrderBy("created DESC").
		Limit(int64(limit)).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}

	activities := make([]*models.Activity, 0, len(records))
	for _, record := range records {
		activities = append(activities, &models.Activity{
			ID:      record.Id,
			Title:   record.GetString("title"),
			Type:    models.ActivityType(record.GetString("type")),
			Created: record.GetDateTime("created").Time(),
		})
	}
	return activities, nil
}
