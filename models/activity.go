package models

import (
	"time"
)

type ActivityType string

const (
	ActivityUserLogin       ActivityType = "user_login"
	ActivityUserRegistered  ActivityType = "user_registered"
	ActivityTicketPurchased ActivityType = "ticket_purchased"
	ActivityPaymentReceived ActivityType = "payment_received"
	ActivityPaymentFailed   ActivityType = "payment_failed"
	ActivityTicketCheckedIn ActivityType = "ticket_checked_in"
	ActivityEventUpdated    ActivityType = "event_updated"
	ActivityOther           ActivityType = "other"
)

type Activity struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Type    ActivityType `json:"type"`
	Created time.Time    `json:"createdAt"`
}
