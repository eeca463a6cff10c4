// Package gps supplies drop positions, live from an NMEA receiver on a
// serial port or pinned to a configured point.
package gps

import "time"

// Fix is a single position fix. Valid is false when the receiver has no
// solution; consumers must treat such fixes as "position unknown" rather
// than as an error.
type Fix struct {
	Time      time.Time
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	Valid     bool
}

// Provider returns the most recent known fix.
type Provider interface {
	Current() Fix
}

// Static is a provider pinned to a configured position, for receivers
// operated from a fixed site or when no GPS hardware is attached.
type Static struct {
	Latitude  float64
	Longitude float64
}

func (s Static) Current() Fix {
	return Fix{
		Time:      time.Now().UTC(),
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Valid:     true,
	}
}
