package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"event-ticketing/models"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRPayload is the URL a door scanner opens for one ticket.
func QRPayload(appURL, txnID, ticketID string) string {
	return fmt.Sprintf("%s/ticket?txnId=%s&ticketId=%s", appURL, txnID, ticketID)
}

// QRDataURL encodes payload as a PNG QR code data URL.
func QRDataURL(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderTicketPDF draws a single-page ticket for one buyer.
func RenderTicketPDF(event *models.Event, tier *models.TicketTier, txn *models.Transaction, buyer models.Buyer) ([]byte, error) {
	png, err := qrcode.Encode(buyer.QRPayload, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, event.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, event.Venue, "", 1, "L", false, 0, "")
	if event.Address != "" {
		pdf.CellFormat(0, 6, event.Address, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, event.StartDate.Format("Mon, 02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(12, pdf.GetY(), 136, pdf.GetY())
	pdf.Ln(6)

	yStart := pdf.GetY()
	drawTicketField(pdf, "Ticket", tier.TicketName)
	drawTicketField(pdf, "Ticket ID", buyer.TicketID)
	drawTicketField(pdf, "Holder", buyer.FullName)
	drawTicketField(pdf, "Transaction", txn.TxnID)
	drawTicketField(pdf, "Price", fmt.Sprintf("%s %s", tier.Currency, tier.Price.StringFixed(2)))

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(png))
	pdf.ImageOptions("qr", 88, yStart, 48, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 56)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Present this QR code at the entrance. Each ticket admits one person once.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTicketField(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(70, 5, label, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(70, 7, value, "", 1, "L", false, 0, "")
}
