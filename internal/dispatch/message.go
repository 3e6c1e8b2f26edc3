// README: Wire envelope for the dispatch channel and its routing key.
package dispatch

import (
	"bytes"
	"encoding/json"
)

// ID tolerates both string and numeric ids on the wire; clients are not
// consistent about which they send.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if string(b) == "null" {
		*id = ""
		return nil
	}
	*id = ID(b)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// Envelope is the inbound message shape. PassengerRef duplicates
// PassengerID under the snake_case key some client builds still send.
type Envelope struct {
	Type         string          `json:"type"`
	Role         string          `json:"role"`
	Action       string          `json:"action"`
	PassengerID  ID              `json:"passengerId"`
	PassengerRef ID              `json:"passenger_id"`
	DriverID     ID              `json:"driverId"`
	Location     json.RawMessage `json:"location"`
	Data         json.RawMessage `json:"data"`
}

// confirmationTarget is the part of a driver decision payload the hub
// needs to route it.
type confirmationTarget struct {
	PassengerID ID              `json:"passengerId"`
	Pickup      json.RawMessage `json:"pickup"`
	Destination json.RawMessage `json:"destination"`
}

type messageKind int

const (
	kindUnknown messageKind = iota
	kindPassengerHello
	kindDriverHello
	kindAcceptRide
	kindRejectRide
	kindStartRide
	kindLocationUpdate
)

// kind collapses (type, action, role) into one routing key so every
// combination lands in exactly one branch.
func (e Envelope) kind() messageKind {
	switch e.Type {
	case "passenger":
		return kindPassengerHello
	case "driver":
		switch e.Action {
		case "":
			return kindDriverHello
		case "acceptRide":
			return kindAcceptRide
		case "rejectRide":
			return kindRejectRide
		}
	case "startRide":
		if e.Role == "driver" {
			return kindStartRide
		}
	case "locationUpdate":
		if e.Role == "driver" {
			return kindLocationUpdate
		}
	}
	return kindUnknown
}

// passengerRef prefers the camelCase id and falls back to the legacy key.
func (e Envelope) passengerRef() ID {
	if e.PassengerID != "" {
		return e.PassengerID
	}
	return e.PassengerRef
}
