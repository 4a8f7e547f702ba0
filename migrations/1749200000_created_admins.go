package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("admins")

		collection.Fields.Add(
			&core.TextField{Name: "full_name", Required: true, Max: 200},
			&core.TextField{Name: "brand_name", Max: 200},
			&core.EmailField{Name: "email", Required: true},
			&core.TextField{Name: "phone", Max: 32},
			&core.TextField{Name: "password_hash", Required: true, Hidden: true},
			&core.BoolField{Name: "two_factor"},
			&core.TextField{Name: "otp_hash", Hidden: true},
			&core.DateField{Name: "otp_expires_at", Hidden: true},
			&core.BoolField{Name: "otp_verified"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		collection.AddIndex("idx_admins_email", true, "email", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("admins")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
