package drop

import "time"

// Session represents a single AXBT deployment ("drop") being processed.
// Each session captures metadata about when and how the drop was received.
type Session struct {
	ID           int64     `json:"ID"`                   // Unique identifier for the drop
	StartTime    time.Time `json:"startTime"`            // When processing of the drop began
	SourceType   string    `json:"sourceType"`           // Audio source used (e.g., "demod", "wav")
	SourceID     string    `json:"sourceID"`             // Source identifier (device name or file path)
	VHFFrequency float64   `json:"vhfFrequency"`         // VHF carrier frequency in MHz
	VHFChannel   float64   `json:"vhfChannel"`           // VHF channel number paired with the frequency
	Config       *string   `json:"config,omitempty"`     // Optional source configuration in JSON format
}

// ToneReading is one detector pass over a sample block: the raw tone
// measurement plus its conversion to a profile point. Temperature and
// Depth are NaN until the drop has triggered, and Temperature stays NaN
// for blocks whose tone fell below the acceptance thresholds.
type ToneReading struct {
	Elapsed     float64 `json:"elapsed"`     // Seconds since processing start
	Frequency   float64 `json:"frequency"`   // Detected tone frequency in Hz (0 = no tone)
	Signal      float64 `json:"signal"`      // Peak spectrum magnitude
	Ratio       float64 `json:"ratio"`       // In-band to whole-spectrum magnitude ratio
	Temperature float64 `json:"temperature"` // Converted temperature in degC (NaN if invalid)
	Depth       float64 `json:"depth"`       // Probe depth in meters (NaN before trigger)
}

// Fix is a GPS position report associated with a drop.
type Fix struct {
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Valid     bool      `json:"valid"`
}
