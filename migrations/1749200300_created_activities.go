package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("activities")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 500},
			&core.SelectField{Name: "type", Required: true, MaxSelect: 1, Values: []string{
				"user_login",
				"user_registered",
				"ticket_purchased",
				"payment_received",
				"payment_failed",
				"ticket_checked_in",
				"event_updated",
				"other",
			}},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		collection.AddIndex("idx_activities_created", false, "created", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("activities")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
