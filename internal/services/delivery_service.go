package services

import (
	"context"
	"log/slog"
	"sync"

	"event-ticketing/models"
	"event-ticketing/monitoring"
)

// TicketMailer sends one rendered ticket to its holder.
type TicketMailer interface {
	SendTicket(ctx context.Context, buyer models.Buyer, event *models.Event, tier *models.TicketTier, pdf []byte) error
}

// DeliveryService emails tickets after a payment completes. Each buyer is
// handled independently so one bad address does not stop the others.
type DeliveryService struct {
	mailer  TicketMailer
	monitor *monitoring.Monitor
}

func NewDeliveryService(mailer TicketMailer, monitor *monitoring.Monitor) *DeliveryService {
	return &DeliveryService{mailer: mailer, monitor: monitor}
}

// Deliver sends every buyer their ticket and returns how many were sent.
func (s *DeliveryService) Deliver(ctx context.Context, txn *models.Transaction, event *models.Event, tier *models.TicketTier) int {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
	)

	for _, buyer := range txn.Buyers {
		if buyer.Email == "" {
			s.monitor.TrackDelivery("skipped")
			continue
		}

		wg.Add(1)
		go func(buyer models.Buyer) {
			defer wg.Done()

			pdf, err := RenderTicketPDF(event, tier, txn, buyer)
			if err != nil {
				slog.Error("deliveryService.Deliver() render", "txnId", txn.TxnID, "ticketId", buyer.TicketID, "error", err)
				s.monitor.TrackDelivery("failed")
				return
			}

			if err := s.mailer.SendTicket(ctx, buyer, event, tier, pdf); err != nil {
				slog.Error("deliveryService.Deliver() send", "txnId", txn.TxnID, "ticketId", buyer.TicketID, "email", buyer.Email, "error", err)
				s.monitor.TrackDelivery("failed")
				return
			}

			s.monitor.TrackDelivery("sent")
			mu.Lock()
			sent++
			mu.Unlock()
		}(buyer)
	}

	wg.Wait()
	slog.Info("tickets delivered", "txnId", txn.TxnID, "sent", sent, "total", len(txn.Buyers))
	return sent
}
