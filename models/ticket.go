package models

import (
	"strings"
	"unicode"

	"event-ticketing/internal/status"

	"github.com/shopspring/decimal"
)

// TicketTier is a named ticket category embedded in an event.
// 0 <= AvailableQuantity <= InitialQuantity holds after every method below.
type TicketTier struct {
	ID                string          `json:"id"`
	TicketName        string          `json:"ticketName"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	InitialQuantity   int             `json:"initialQuantity"`
	AvailableQuantity int             `json:"availableQuantity"`
	Benefits          []string        `json:"benefits"`
}

func (t *TicketTier) Validate() error {
	if t.InitialQuantity < 0 || t.AvailableQuantity < 0 || t.AvailableQuantity > t.InitialQuantity {
		return status.ErrQuantityBounds
	}
	return nil
}

// ApplyQuantityEdit sets a new available count n.
// n == 0 closes sales at what is already sold, a value above the current
// count restocks the difference, anything else lowers availability.
func (t *TicketTier) ApplyQuantityEdit(n int) error {
	if n < 0 {
		return status.ErrInvalidQuantity
	}

	switch current := t.AvailableQuantity; {
	case n == 0:
		t.InitialQuantity -= current
		t.AvailableQuantity = 0
	case n > current:
		t.InitialQuantity += n - current
		t.AvailableQuantity = n
	default:
		t.AvailableQuantity = n
	}
	return nil
}

// Decrement removes n sold tickets, flooring at zero. It returns how many
// tickets could not be covered by the remaining stock.
func (t *TicketTier) Decrement(n int) (shortfall int) {
	if n <= 0 {
		return 0
	}
	if n > t.AvailableQuantity {
		shortfall = n - t.AvailableQuantity
		t.AvailableQuantity = 0
		return shortfall
	}
	t.AvailableQuantity -= n
	return 0
}

func (t *TicketTier) CanSell(n int) bool {
	return n <= t.AvailableQuantity
}

func (t *TicketTier) Sold() int {
	return t.InitialQuantity - t.AvailableQuantity
}

// TicketPrefix is the upper-cased first three letters of the tier name,
// padded with X for very short names.
func (t *TicketTier) TicketPrefix() string {
	var sb strings.Builder
	for _, r := range t.TicketName {
		if sb.Len() == 3 {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			sb.WriteRune(unicode.ToUpper(r))
		}
	}
	for sb.Len() < 3 {
		sb.WriteByte('X')
	}
	return sb.String()
}

type TierSummary struct {
	TicketName string          `json:"ticketName"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

func (t *TicketTier) Summary() TierSummary {
	return TierSummary{TicketName: t.TicketName, Price: t.Price, Currency: t.Currency}
}
