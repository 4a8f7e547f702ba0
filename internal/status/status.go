package status

import (
	"errors"
	"net/http"
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindUpstream
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindUpstream:
		return "upstream"
	case KindInvariant:
		return "invariant"
	default:
		return "internal"
	}
}

// Error is a domain error with a client-safe message and the HTTP status it maps to.
type Error struct {
	Kind    Kind
	Code    int
	Area    string
	Message string
}

func (e *Error) Error() string {
	return e.Area + ": " + e.Message
}

func newError(kind Kind, code int, area, message string) *Error {
	return &Error{Kind: kind, Code: code, Area: area, Message: message}
}

// NewValidation builds a one-off validation error for malformed input.
func NewValidation(area, message string) *Error {
	return newError(KindValidation, http.StatusBadRequest, area, message)
}

var (
	// credentials and OTP
	ErrInvalidCredentials = newError(KindAuth, http.StatusUnauthorized, "credential", "Email or password does not match")
	ErrOtpExpired         = newError(KindAuth, http.StatusBadRequest, "credential", "OTP has expired")
	ErrInvalidOtp         = newError(KindAuth, http.StatusBadRequest, "credential", "Invalid or expired OTP")
	ErrTooManyRequests    = newError(KindConflict, http.StatusTooManyRequests, "credential", "An OTP was sent recently, please wait before requesting another")
	ErrDuplicateEmail     = newError(KindConflict, http.StatusConflict, "credential", "An admin with this email already exists")

	// tokens and sessions
	ErrUnauthorized   = newError(KindAuth, http.StatusUnauthorized, "auth", "Access token is required")
	ErrTokenExpired   = newError(KindAuth, http.StatusUnauthorized, "auth", "Token has expired")
	ErrInvalidToken   = newError(KindAuth, http.StatusUnauthorized, "auth", "Invalid token")
	ErrSessionRevoked = newError(KindAuth, http.StatusUnauthorized, "auth", "Session expired or revoked")
	ErrRateLimited    = newError(KindConflict, http.StatusTooManyRequests, "auth", "Too many attempts, please try again later")

	// inventory
	ErrEventNotFound    = newError(KindNotFound, http.StatusNotFound, "inventory", "Event not found")
	ErrTicketNotFound   = newError(KindNotFound, http.StatusNotFound, "inventory", "Ticket not found")
	ErrNotEnoughTickets = newError(KindConflict, http.StatusBadRequest, "inventory", "Not enough tickets available")
	ErrInvalidQuantity  = newError(KindInvariant, http.StatusBadRequest, "inventory", "Quantity cannot be negative")
	ErrQuantityBounds   = newError(KindInvariant, http.StatusBadRequest, "inventory", "Available quantity must be between 0 and the initial quantity")

	// payments and ledger
	ErrFailedPayment       = newError(KindConflict, http.StatusBadRequest, "payment", "Payment verification failed")
	ErrAmountMismatch      = newError(KindValidation, http.StatusBadRequest, "payment", "Amount does not match the ticket price")
	ErrInvalidTransaction  = newError(KindConflict, http.StatusBadRequest, "payment", "Invalid transaction")
	ErrTransactionNotFound = newError(KindNotFound, http.StatusNotFound, "payment", "Transaction not found")
	ErrPaymentIncomplete   = newError(KindConflict, http.StatusBadRequest, "payment", "Payment not completed")
	ErrAlreadyCheckedIn    = newError(KindConflict, http.StatusBadRequest, "payment", "Ticket already checked in")
	ErrRefCodeNotFound     = newError(KindNotFound, http.StatusNotFound, "payment", "Reference not found")

	// collaborators
	ErrUpstream = newError(KindUpstream, http.StatusBadGateway, "upstream", "A downstream service is unavailable, please try again")
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the status code reported to clients.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// Message returns a client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong while processing your request."
}
