package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("transactions")

		collection.Fields.Add(
			&core.TextField{Name: "txn_id", Required: true, Max: 32},
			&core.RelationField{Name: "event", Required: true, MaxSelect: 1, CollectionId: events.Id},
			&core.TextField{Name: "ticket_id", Required: true},
			&core.JSONField{Name: "buyers", MaxSize: 5 << 20},
			&core.NumberField{Name: "quantity", OnlyInt: true},
			&core.TextField{Name: "amount", Required: true, Pattern: `^\d+(\.\d+)?$`},
			&core.TextField{Name: "currency", Max: 3},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: []string{"pending", "completed", "failed"}},
			&core.TextField{Name: "charge_id"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		collection.AddIndex("idx_transactions_txn_id", true, "txn_id", "")
		collection.AddIndex("idx_transactions_status_created", false, "status, created", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("transactions")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
