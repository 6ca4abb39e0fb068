package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kilometers is an altitude value that may arrive either as a bare JSON
// number or as a string with a trailing "km" unit suffix.
type Kilometers float64

// UnmarshalJSON accepts both wire forms of the altitude field.
func (k *Kilometers) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*k = Kilometers(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("altitude is neither number nor string: %s", data)
	}

	f, err := ParseAltitude(s)
	if err != nil {
		return err
	}
	*k = Kilometers(f)
	return nil
}

// ParseAltitude normalizes a textual altitude: surrounding whitespace and
// a trailing "km" suffix are stripped before the numeric parse.
func ParseAltitude(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimSuffix(trimmed, "km")
	trimmed = strings.TrimSpace(trimmed)

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse altitude %q: %w", s, err)
	}
	return f, nil
}

// StatusMessage is an informational frame about the feed connection itself.
type StatusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// PositionMessage is the raw wire form of a satellite position update.
type PositionMessage struct {
	Name  string     `json:"name"`
	Norad int64      `json:"norad"`
	Lat   float64    `json:"lat"`
	Lon   float64    `json:"lon"`
	Alt   Kilometers `json:"alt"`
}

// Satellite is the latest known position for one tracked satellite.
// Keyed by NORAD id; each new position message fully replaces the prior
// record.
type Satellite struct {
	Name       string    `json:"name"`
	Norad      int64     `json:"norad"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	AltKm      float64   `json:"alt_km"`
	LastUpdate time.Time `json:"last_update"`
}

// Record converts a decoded position message into a store record.
func (p *PositionMessage) Record(receivedAt time.Time) Satellite {
	return Satellite{
		Name:       p.Name,
		Norad:      p.Norad,
		Lat:        p.Lat,
		Lon:        p.Lon,
		AltKm:      float64(p.Alt),
		LastUpdate: receivedAt,
	}
}
