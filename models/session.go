package models

import (
	"time"
)

type DeviceInfo struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
}

type Location struct {
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// Session is one logged-in device. IsCurrent is computed per request and
// never written to the cache.
type Session struct {
	Key        string     `json:"-"`
	UserID     string     `json:"userId"`
	Email      string     `json:"email"`
	DeviceInfo DeviceInfo `json:"deviceInfo"`
	Location   Location   `json:"location"`
	IPAddress  string     `json:"ipAddress"`
	LoginTime  time.Time  `json:"loginTime"`
	LastActive time.Time  `json:"lastActive"`
	Token      string     `json:"token"`
	IsCurrent  bool       `json:"isCurrent,omitempty"`
}

// RequestContext carries the request metadata a session is derived from.
type RequestContext struct {
	IPAddress string
	UserAgent string
}
