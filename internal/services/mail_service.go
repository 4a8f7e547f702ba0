package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"

	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/tools/mailer"
	"github.com/pocketbase/pocketbase/tools/template"
)

const otpMailTemplate = `<p>Hello {{.Name}},</p>
<p>Your login code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.Minutes}} minutes. If you did not try to sign in, you can ignore this email.</p>`

const ticketMailTemplate = `<p>Hi {{.Buyer}},</p>
<p>Your <strong>{{.Tier}}</strong> ticket for <strong>{{.Event}}</strong> is attached.</p>
<p>Ticket ID: {{.TicketID}}<br>Venue: {{.Venue}}<br>Date: {{.Date}}</p>
<p>Show the QR code on the ticket at the entrance.</p>`

// MailService renders and sends transactional emails through the app mailer.
type MailService struct {
	client     func() mailer.Mailer
	from       mail.Address
	templates  *template.Registry
	otpMinutes int
}

// NewMailService takes a client factory so mail settings changed at runtime
// are picked up on the next send.
func NewMailService(client func() mailer.Mailer, fromAddress, fromName string, otpMinutes int) *MailService {
	return &MailService{
		client:     client,
		from:       mail.Address{Address: fromAddress, Name: fromName},
		templates:  template.NewRegistry(),
		otpMinutes: otpMinutes,
	}
}

func (s *MailService) SendOtp(_ context.Context, admin *models.Admin, code string) error {
	html, err := s.templates.LoadString(otpMailTemplate).Render(map[string]any{
		"Name":    admin.FullName,
		"Code":    code,
		"Minutes": s.otpMinutes,
	})
	if err != nil {
		return fmt.Errorf("render otp mail: %w", err)
	}

	return s.client().Send(&mailer.Message{
		From:    s.from,
		To:      []mail.Address{{Address: admin.Email, Name: admin.FullName}},
		Subject: "Your login code",
		HTML:    html,
	})
}

func (s *MailService) SendTicket(_ context.Context, buyer models.Buyer, event *models.Event, tier *models.TicketTier, pdf []byte) error {
	html, err := s.templates.LoadString(ticketMailTemplate).Render(map[string]any{
		"Buyer":    buyer.FullName,
		"Tier":     tier.TicketName,
		"Event":    event.Title,
		"TicketID": buyer.TicketID,
		"Venue":    event.Venue,
		"Date":     event.StartDate.Format("Mon, 02 Jan 2006 15:04"),
	})
	if err != nil {
		return fmt.Errorf("render ticket mail: %w", err)
	}

	return s.client().Send(&mailer.Message{
		From:    s.from,
		To:      []mail.Address{{Address: buyer.Email, Name: buyer.FullName}},
		Subject: "Your ticket for " + event.Title,
		HTML:    html,
		Attachments: map[string]io.Reader{
			buyer.TicketID + ".pdf": bytes.NewReader(pdf),
		},
	})
}
