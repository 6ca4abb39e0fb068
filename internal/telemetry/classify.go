package telemetry

import (
	"encoding/json"
	"fmt"
)

// Kind identifies what a decoded feed frame contains.
type Kind int

const (
	KindUnknown Kind = iota
	KindStatus
	KindPosition
)

// String returns a label suitable for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindPosition:
		return "position"
	default:
		return "unknown"
	}
}

// Classified is the result of classifying one feed frame. Exactly one of
// Status/Position is non-nil for the corresponding kind.
type Classified struct {
	Kind     Kind
	Status   *StatusMessage
	Position *PositionMessage
}

// probe sniffs the discriminating fields of a frame without fully
// decoding it.
type probe struct {
	Type  string          `json:"type"`
	Norad json.RawMessage `json:"norad"`
}

// Classify decodes a raw feed frame and determines its kind by shape:
// presence of a norad field marks a position update, type "connection"
// marks a connection status message, anything else is unknown. A decode
// error means the frame must be dropped by the caller.
func Classify(data []byte) (Classified, error) {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return Classified{}, fmt.Errorf("decode frame: %w", err)
	}

	switch {
	case len(p.Norad) > 0 && string(p.Norad) != "null":
		var pos PositionMessage
		if err := json.Unmarshal(data, &pos); err != nil {
			return Classified{}, fmt.Errorf("decode position update: %w", err)
		}
		return Classified{Kind: KindPosition, Position: &pos}, nil

	case p.Type == "connection":
		var st StatusMessage
		if err := json.Unmarshal(data, &st); err != nil {
			return Classified{}, fmt.Errorf("decode status message: %w", err)
		}
		return Classified{Kind: KindStatus, Status: &st}, nil

	default:
		return Classified{Kind: KindUnknown}, nil
	}
}
