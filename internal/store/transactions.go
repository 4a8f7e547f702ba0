package store

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	app core.App
}

func (r *TransactionRepository) FindByTxnID(ctx context.Context, txnID string) (*models.Transaction, error) {
	record, err := findOne(ctx, r.app, collectionTransactions, dbx.HashExp{"txn_id": txnID})
	if isNotFound(err) {
		return nil, status.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return transactionFromRecord(record)
}

func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	record, err := newRecord(r.app, collectionTransactions)
	if err != nil {
		return err
	}

	record.Set("txn_id", txn.TxnID)
	record.Set("event", txn.EventID)
	record.Set("ticket_id", txn.TicketID)
	record.Set("quantity", txn.Quantity)
	record.Set("amount", txn.Amount.String())
	record.Set("currency", txn.Currency)
	applyTransaction(record, txn)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return err
	}

	txn.ID = record.Id
	txn.Created = record.GetDateTime("created").Time()
	txn.Updated = record.GetDateTime("updated").Time()
	return nil
}

// Save persists the mutable part of a ledger entry: status, charge and buyers.
func (r *TransactionRepository) Save(ctx context.Context, txn *models.Transaction) error {
	record, err := findOne(ctx, r.app, collectionTransactions, dbx.HashExp{"id": txn.ID})
	if isNotFound(err) {
		return status.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}

	applyTransaction(record, txn)
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return err
	}
	txn.Updated = record.GetDateTime("updated").Time()
	return nil
}

func (r *TransactionRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*models.Transaction, error) {
	var records []*core.Record
	err := r.app.RecordQuery(collectionTransactions).
		AndWhere(dbx.HashExp{"status": string(models.TransactionCompleted)}).
		AndWhere(dbx.NewExp("created >= {:from} AND created < {:to}", dbx.Params{
			"from": dbTime(from),
			"to":   dbTime(to),
		})).
		OrderBy("created DESC").
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}

	txns := make([]*models.Transaction, 0, len(records))
	for _, record := range records {
		txn, err := transactionFromRecord(record)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func applyTransaction(record *core.Record, txn *models.Transaction) {
	record.Set("buyers", txn.Buyers)
	record.Set("status", string(txn.Status))
	record.Set("charge_id", txn.ChargeID)
}

func transactionFromRecord(record *core.Record) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(record.GetString("amount"))
	if err != nil {
		return nil, fmt.Errorf("transaction %s: decode amount: %w", record.Id, err)
	}

	txn := &models.Transaction{
		ID:       record.Id,
		TxnID:    record.GetString("txn_id"),
		EventID:  record.GetString("event"),
		TicketID: record.GetString("ticket_id"),
		Quantity: record.GetInt("quantity"),
		Amount:   amount,
		Currency: record.GetString("currency"),
		Status:   models.TransactionStatus(record.GetString("status")),
		ChargeID: record.GetString("charge_id"),
		Created:  record.GetDateTime("created").Time(),
		Updated:  record.GetDateTime("updated").Time(),
	}
	if err := record.UnmarshalJSONField("buyers", &txn.Buyers); err != nil {
		return nil, fmt.Errorf("transaction %s: decode buyers: %w", record.Id, err)
	}
	return txn, nil
}
