package services

import (
	"context"
	"time"

	"event-ticketing/models"
)

// EventRepository loads and saves events together with their ticket tiers.
// FindByID fails with status.ErrEventNotFound when the event does not exist.
type EventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Save(ctx context.Context, event *models.Event) error
	CountPublished(ctx context.Context) (int, error)
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Event, error)
}

// TransactionRepository persists ledger entries. FindByTxnID fails with
// status.ErrTransactionNotFound when no entry matches.
type TransactionRepository interface {
	FindByTxnID(ctx context.Context, txnID string) (*models.Transaction, error)
	Create(ctx context.Context, txn *models.Transaction) error
	Save(ctx context.Context, txn *models.Transaction) error
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*models.Transaction, error)
}

// Store groups repositories that must change together. Repositories handed
// to fn share one database transaction.
type Store interface {
	Events() EventRepository
	Transactions() TransactionRepository
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error
}

// ActivityRecorder appends to the admin activity feed. It never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, kind models.ActivityType, title string)
}
