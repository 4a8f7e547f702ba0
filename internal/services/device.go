package services

import (
	"log/slog"
	"net"

	"event-ticketing/models"

	"github.com/mssola/useragent"
	"github.com/oschwald/geoip2-golang"
)

const unknown = "Unknown"

// GeoLocator resolves a coarse location for an IP address.
type GeoLocator interface {
	Locate(ip string) models.Location
}

// ParseDevice derives the browser, OS and device class from a User-Agent header.
func ParseDevice(rawUserAgent string) models.DeviceInfo {
	info := models.DeviceInfo{Browser: unknown, OS: unknown, Device: "Desktop"}
	if rawUserAgent == "" {
		return info
	}

	ua := useragent.New(rawUserAgent)
	if name, _ := ua.Browser(); name != "" {
		info.Browser = name
	}
	if os := ua.OSInfo().Name; os != "" {
		info.OS = os
	}

	switch {
	case ua.Bot():
		info.Device = "Bot"
	case ua.Mobile():
		info.Device = "Mobile"
	}
	return info
}

// GeoIPLocator looks addresses up in a MaxMind GeoLite2 City database.
// Without a database every lookup resolves to Unknown.
type GeoIPLocator struct {
	reader *geoip2.Reader
}

func NewGeoIPLocator(path string) (*GeoIPLocator, error) {
	if path == "" {
		return &GeoIPLocator{}, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIPLocator{reader: reader}, nil
}

func (g *GeoIPLocator) Locate(ip string) models.Location {
	loc := models.Location{City: unknown, Region: unknown, Country: unknown, Timezone: unknown}

	parsed := net.ParseIP(ip)
	if g == nil || g.reader == nil || parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return loc
	}

	record, err := g.reader.City(parsed)
	if err != nil {
		slog.Debug("geoip lookup failed", "ip", ip, "error", err)
		return loc
	}

	if name := record.City.Names["en"]; name != "" {
		loc.City = name
	}
	if len(record.Subdivisions) > 0 {
		if name := record.Subdivisions[0].Names["en"]; name != "" {
			loc.Region = name
		}
	}
	if name := record.Country.Names["en"]; name != "" {
		loc.Country = name
	}
	if tz := record.Location.TimeZone; tz != "" {
		loc.Timezone = tz
	}
	return loc
}

func (g *GeoIPLocator) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}
