package models

import (
	"time"
)

// Admin is the single organization principal that manages events.
type Admin struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	BrandName    string     `json:"brandName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	TwoFactor    bool       `json:"twoFactor"`
	OtpHash      string     `json:"-"`
	OtpExpiresAt *time.Time `json:"-"`
	OtpVerified  bool       `json:"otpVerified"`
	Created      time.Time  `json:"created"`
}

// SetOtp stores a freshly issued code. Hash and expiry are always set together.
func (a *Admin) SetOtp(hash string, expiresAt time.Time) {
	a.OtpHash = hash
	a.OtpExpiresAt = &expiresAt
	a.OtpVerified = false
}

// ClearOtp consumes the stored code after a successful verification.
func (a *Admin) ClearOtp() {
	a.OtpHash = ""
	a.OtpExpiresAt = nil
	a.OtpVerified = true
}

func (a *Admin) HasOtp() bool {
	return a.OtpHash != "" && a.OtpExpiresAt != nil
}

// HasLiveOtp reports whether an issued code is still usable at now.
func (a *Admin) HasLiveOtp(now time.Time) bool {
	return a.HasOtp() && now.Before(*a.OtpExpiresAt)
}
