package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")

		// anyone may read a published event
		collection.ViewRule = ptr("status = 'published'")
		collection.ListRule = ptr("status = 'published'")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 300},
			&core.TextField{Name: "venue", Max: 300},
			&core.TextField{Name: "address", Max: 500},
			&core.TextField{Name: "theme", Max: 100},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: []string{"draft", "published"}},
			&core.DateField{Name: "start_date", Required: true},
			&core.DateField{Name: "end_date"},
			&core.JSONField{Name: "tickets", MaxSize: 1 << 20},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		collection.AddIndex("idx_events_status_start", false, "status, start_date", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

func ptr(s string) *string {
	return &s
}
