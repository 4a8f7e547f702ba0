// Package store maps domain models onto PocketBase collections.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"event-ticketing/internal/services"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

const (
	collectionAdmins       = "admins"
	collectionEvents       = "events"
	collectionTransactions = "transactions"
	collectionActivities   = "activities"
)

// Store implements services.Store on top of a PocketBase app. Inside
// RunInTransaction the app is the transactional one, so every repository
// handed to the callback writes through the same database transaction.
type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) Admins() *AdminRepository {
	return &AdminRepository{app: s.app}
}

func (s *Store) Activities() *ActivityRepository {
	return &ActivityRepository{app: s.app}
}

func (s *Store) Events() services.EventRepository {
	return &EventRepository{app: s.app}
}

func (s *Store) Transactions() services.TransactionRepository {
	return &TransactionRepository{app: s.app}
}

func (s *Store) RunInTransaction(_ context.Context, fn func(tx services.Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&Store{app: txApp})
	})
}

// findOne returns the first record of collection matching exp, or
// sql.ErrNoRows.
func findOne(ctx context.Context, app core.App, collection string, exp dbx.Expression) (*core.Record, error) {
	record := &core.Record{}
	err := app.RecordQuery(collection).
		AndWhere(exp).
		Limit(1).
		WithContext(ctx).
		One(record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func newRecord(app core.App, collection string) (*core.Record, error) {
	c, err := app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return nil, err
	}
	return core.NewRecord(c), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// dbTime formats t the way PocketBase stores datetimes so that string
// comparison in SQL matches time order.
func dbTime(t time.Time) string {
	return t.UTC().Format(types.DefaultDateLayout)
}
