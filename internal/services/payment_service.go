package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"event-ticketing/internal/services/bank"
	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/monitoring"
	"event-ticketing/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ticketDigits = 6

// Deliverer sends tickets for a completed transaction.
type Deliverer interface {
	Deliver(ctx context.Context, txn *models.Transaction, event *models.Event, tier *models.TicketTier) int
}

// CacheInvalidator drops derived data that a completed payment makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type BuyerInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Quantity    int    `json:"quantity"`
}

type PurchaseInput struct {
	EventID  string           `json:"eventId"`
	TicketID string           `json:"ticketId"`
	Buyers   []BuyerInput     `json:"buyers"`
	Amount   *decimal.Decimal `json:"amount"`
}

type PurchaseResult struct {
	AuthorizationURL string `json:"authorization_url"`
	TxnID            string `json:"txnId"`
	Reference        string `json:"reference"`
}

type VerifyResult struct {
	Transaction *models.Transaction `json:"transaction"`
	Event       models.EventSummary `json:"event"`
	Ticket      models.TierSummary  `json:"ticket"`
}

type PaymentSettings struct {
	AppURL      string
	CallbackURL string
}

type PaymentService struct {
	store      Store
	gateway    bank.Gateway
	delivery   Deliverer
	activities ActivityRecorder
	dashboard  CacheInvalidator
	monitor    *monitoring.Monitor
	settings   PaymentSettings
}

func NewPaymentService(store Store, gateway bank.Gateway, delivery Deliverer, activities ActivityRecorder, dashboard CacheInvalidator, monitor *monitoring.Monitor, settings PaymentSettings) *PaymentService {
	return &PaymentService{
		store:      store,
		gateway:    gateway,
		delivery:   delivery,
		activities: activities,
		dashboard:  dashboard,
		monitor:    monitor,
		settings:   settings,
	}
}

func (in *PurchaseInput) normalize() (int, error) {
	in.EventID = strings.TrimSpace(in.EventID)
	in.TicketID = strings.TrimSpace(in.TicketID)
	if in.EventID == "" || in.TicketID == "" {
		return 0, status.NewValidation("payment", "eventId and ticketId are required")
	}
	if len(in.Buyers) == 0 {
		return 0, status.NewValidation("payment", "At least one buyer is required")
	}

	total := 0
	for i := range in.Buyers {
		b := &in.Buyers[i]
		if b.Quantity < 0 {
			return 0, status.ErrInvalidQuantity
		}
		if b.Quantity == 0 {
			b.Quantity = 1
		}
		b.FullName = strings.TrimSpace(b.FullName)
		b.Email = strings.ToLower(strings.TrimSpace(b.Email))
		err := validation.ValidateStruct(b,
			validation.Field(&b.FullName, validation.Required),
			validation.Field(&b.Email, validation.Required, is.EmailFormat),
		)
		if err != nil {
			return 0, status.NewValidation("payment", "buyers: "+err.Error())
		}
		total += b.Quantity
	}
	return total, nil
}

func newTxnID() string {
	return models.TxnPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// expandBuyers turns each buyer line into one Buyer per physical ticket.
func (s *PaymentService) expandBuyers(txnID string, tier *models.TicketTier, lines []BuyerInput) ([]models.Buyer, error) {
	prefix := tier.TicketPrefix()
	seen := make(map[string]struct{})

	var buyers []models.Buyer
	for _, line := range lines {
		for i := 0; i < line.Quantity; i++ {
			var ticketID string
			for {
				digits, err := utils.GenerateDigits(ticketDigits)
				if err != nil {
					return nil, err
				}
				ticketID = prefix + "-" + digits
				if _, dup := seen[ticketID]; !dup {
					seen[ticketID] = struct{}{}
					break
				}
			}

			payload := QRPayload(s.settings.AppURL, txnID, ticketID)
			qr, err := QRDataURL(payload)
			if err != nil {
				return nil, err
			}

			buyers = append(buyers, models.Buyer{
				FullName:    line.FullName,
				Email:       line.Email,
				PhoneNumber: strings.TrimSpace(line.PhoneNumber),
				TicketID:    ticketID,
				QRPayload:   payload,
				QRCode:      qr,
			})
		}
	}
	return buyers, nil
}

// Initiate records a pending ledger entry and opens a gateway checkout for it.
// Stock is only checked here; it is taken when the payment is verified.
func (s *PaymentService) Initiate(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	quantity, err := in.normalize()
	if err != nil {
		return nil, err
	}

	event, err := s.store.Events().FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	tier, ok := event.Tier(in.TicketID)
	if !ok {
		return nil, status.ErrTicketNotFound
	}
	if !tier.CanSell(quantity) {
		return nil, status.ErrNotEnoughTickets
	}

	amount := tier.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if in.Amount != nil && !in.Amount.Equal(amount) {
		return nil, status.ErrAmountMismatch
	}

	txnID := newTxnID()
	buyers, err := s.expandBuyers(txnID, tier, in.Buyers)
	if err != nil {
		return nil, fmt.Errorf("paymentService.Initiate: expand buyers: %w", err)
	}

	txn := &models.Transaction{
		TxnID:    txnID,
		EventID:  event.ID,
		TicketID: tier.ID,
		Buyers:   buyers,
		Quantity: quantity,
		Amount:   amount,
		Currency: tier.Currency,
		Status:   models.TransactionPending,
	}
	if err := s.store.Transactions().Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("paymentService.Initiate: %w", err)
	}

	checkout, err := s.gateway.Initialize(ctx, &bank.InitializeRequest{
		Email:       buyers[0].Email,
		Amount:      amount,
		Currency:    txn.Currency,
		Reference:   txn.Reference(),
		CallbackURL: s.settings.CallbackURL,
		Metadata: map[string]string{
			"txnId":         txn.TxnID,
			"transactionId": txn.ID,
		},
	})
	if err != nil {
		slog.Error("paymentService.Initiate() gateway", "txnId", txn.TxnID, "error", err)
		s.monitor.TrackPayment("initiate", "gateway_error")
		return nil, upstream("paymentService.Initiate", err)
	}

	s.monitor.TrackPayment("initiate", "pending")
	slog.Info("payment initiated", "txnId", txn.TxnID, "event", event.ID, "tier", tier.ID, "quantity", quantity, "amount", amount.String())

	return &PurchaseResult{
		AuthorizationURL: checkout.AuthorizationURL,
		TxnID:            txn.TxnID,
		Reference:        txn.Reference(),
	}, nil
}

// Verify reconciles a ledger entry with the gateway. A successful charge
// completes the entry and takes its tickets from the tier in one database
// transaction; anything else fails the entry.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	ref := strings.TrimPrefix(strings.TrimSpace(reference), models.TxnPrefix)
	if ref == "" {
		return nil, status.NewValidation("payment", "Reference is required")
	}
	txnID := models.TxnIDFromReference(ref)

	charge, err := s.gateway.Verify(ctx, ref)
	if err != nil {
		slog.Error("paymentService.Verify() gateway", "txnId", txnID, "error", err)
		return nil, upstream("paymentService.Verify", err)
	}

	if !charge.Succeeded() {
		return nil, s.fail(ctx, txnID, charge)
	}

	var (
		txn       *models.Transaction
		event     *models.Event
		tier      models.TicketTier
		shortfall int
	)
	err = s.store.RunInTransaction(ctx, func(tx Store) error {
		var err error
		txn, err = tx.Transactions().FindByTxnID(ctx, txnID)
		if errors.Is(err, status.ErrTransactionNotFound) {
			// a charge with no ledger entry cannot be completed
			return status.ErrInvalidTransaction
		}
		if err != nil {
			return err
		}
		if err := txn.Complete(charge.ID); err != nil {
			return err
		}

		event, err = tx.Events().FindByID(ctx, txn.EventID)
		if err != nil {
			return err
		}
		t, ok := event.Tier(txn.TicketID)
		if !ok {
			return status.ErrTicketNotFound
		}
		shortfall = t.Decrement(len(txn.Buyers))
		tier = *t

		if err := tx.Events().Save(ctx, event); err != nil {
			return err
		}
		return tx.Transactions().Save(ctx, txn)
	})
	if err != nil {
		if errors.Is(err, status.ErrInvalidTransaction) {
			s.monitor.TrackPayment("verify", "replayed")
		}
		return nil, fmt.Errorf("paymentService.Verify: %w", err)
	}

	if !charge.Amount.IsZero() && !charge.Amount.Equal(txn.Amount) {
		slog.Warn("paymentService.Verify() charged amount differs", "txnId", txn.TxnID, "expected", txn.Amount.String(), "charged", charge.Amount.String())
	}
	if shortfall > 0 {
		slog.Warn("paymentService.Verify() tier oversold", "txnId", txn.TxnID, "tier", tier.ID, "shortfall", shortfall)
		s.monitor.TrackOversold(shortfall)
	}
	s.monitor.TrackPayment("verify", "completed")

	detached := context.WithoutCancel(ctx)
	if err := s.dashboard.Invalidate(detached); err != nil {
		slog.Warn("paymentService.Verify() invalidate dashboard", "error", err)
	}
	s.activities.Record(detached, models.ActivityPaymentReceived,
		fmt.Sprintf("%d x %s purchased for %s", len(txn.Buyers), tier.TicketName, event.Title))
	s.delivery.Deliver(detached, txn, event, &tier)

	return &VerifyResult{
		Transaction: txn,
		Event:       event.Summary(),
		Ticket:      tier.Summary(),
	}, nil
}

func (s *PaymentService) fail(ctx context.Context, txnID string, charge *bank.Charge) error {
	var transitioned bool
	err := s.store.RunInTransaction(ctx, func(tx Store) error {
		txn, err := tx.Transactions().FindByTxnID(ctx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != models.TransactionPending {
			return nil
		}
		if err := txn.Fail(); err != nil {
			return err
		}
		transitioned = true
		return tx.Transactions().Save(ctx, txn)
	})
	if err != nil {
		return fmt.Errorf("paymentService.Verify: %w", err)
	}

	s.monitor.TrackPayment("verify", "failed")
	if transitioned {
		slog.Info("payment failed", "txnId", txnID, "gatewayStatus", charge.Status, "gatewayResponse", charge.GatewayResponse)
		s.activities.Record(context.WithoutCancel(ctx), models.ActivityPaymentFailed, "Payment failed for "+txnID)
	}
	return status.ErrFailedPayment
}

// CheckIn admits one ticket. Each ticket can be checked in once.
func (s *PaymentService) CheckIn(ctx context.Context, txnID, ticketID string) (*models.Buyer, error) {
	txnID = strings.TrimSpace(txnID)
	ticketID = strings.TrimSpace(ticketID)
	if txnID == "" || ticketID == "" {
		return nil, status.NewValidation("payment", "txnId and ticketId are required")
	}
	txnID = models.TxnIDFromReference(txnID)

	var buyer models.Buyer
	err := s.store.RunInTransaction(ctx, func(tx Store) error {
		txn, err := tx.Transactions().FindByTxnID(ctx, txnID)
		if err != nil {
			return err
		}
		b, err := txn.CheckIn(ticketID)
		if err != nil {
			return err
		}
		buyer = *b
		return tx.Transactions().Save(ctx, txn)
	})
	if err != nil {
		return nil, fmt.Errorf("paymentService.CheckIn: %w", err)
	}

	s.activities.Record(ctx, models.ActivityTicketCheckedIn, fmt.Sprintf("%s checked in with %s", buyer.FullName, buyer.TicketID))
	return &buyer, nil
}

func upstream(op string, err error) error {
	if status.KindOf(err) == status.KindUpstream {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, status.ErrUpstream, err)
}
