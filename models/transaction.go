package models

import (
	"strings"
	"time"

	"event-ticketing/internal/status"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// TxnPrefix prefixes every transaction id. The gateway only sees the part after it.
const TxnPrefix = "TXN-"

// Buyer is one physical ticket inside a transaction.
type Buyer struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	TicketID    string `json:"ticketId"`
	CheckedIn   bool   `json:"checkedIn"`
	QRPayload   string `json:"qrPayload"`
	QRCode      string `json:"qrCode,omitempty"`
}

type Transaction struct {
	ID       string            `json:"id"`
	TxnID    string            `json:"txnId"`
	EventID  string            `json:"event"`
	TicketID string            `json:"ticket"`
	Buyers   []Buyer           `json:"buyers"`
	Quantity int               `json:"quantity"`
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	Status   TransactionStatus `json:"status"`
	ChargeID string            `json:"chargeId"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
}

// Reference is the identifier shared with the payment gateway.
func (t *Transaction) Reference() string {
	return strings.TrimPrefix(t.TxnID, TxnPrefix)
}

// TxnIDFromReference accepts a gateway reference with or without the prefix.
func TxnIDFromReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, TxnPrefix) {
		return ref
	}
	return TxnPrefix + ref
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionCompleted || t.Status == TransactionFailed
}

// Complete moves a pending transaction to completed. Terminal states never change.
func (t *Transaction) Complete(chargeID string) error {
	if t.Status != TransactionPending {
		return status.ErrInvalidTransaction
	}
	t.Status = TransactionCompleted
	t.ChargeID = chargeID
	return nil
}

// Fail moves a pending transaction to failed.
func (t *Transaction) Fail() error {
	if t.Status != TransactionPending {
		return status.ErrInvalidTransaction
	}
	t.Status = TransactionFailed
	return nil
}

// CheckIn flips the buyer's flag for ticketID. A second call for the same
// ticket fails with ErrAlreadyCheckedIn.
func (t *Transaction) CheckIn(ticketID string) (*Buyer, error) {
	if t.Status != TransactionCompleted {
		return nil, status.ErrPaymentIncomplete
	}
	for i := range t.Buyers {
		if t.Buyers[i].TicketID != ticketID {
			continue
		}
		if t.Buyers[i].CheckedIn {
			return &t.Buyers[i], status.ErrAlreadyCheckedIn
		}
		t.Buyers[i].CheckedIn = true
		return &t.Buyers[i], nil
	}
	return nil, status.ErrTicketNotFound
}

func (t *Transaction) CheckedInCount() int {
	n := 0
	for _, b := range t.Buyers {
		if b.CheckedIn {
			n++
		}
	}
	return n
}
