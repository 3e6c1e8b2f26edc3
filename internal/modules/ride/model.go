// README: Ride aggregate, per-booking passenger record, and cancellation audit row.
package ride

import "github.com/SabaShahdin/ms/internal/types"

type Status string

// Status values match what clients already store and display.
const (
	StatusPending   Status = "pending"
	StatusOnRide    Status = "On Ride"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a ride can never transition again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Ride struct {
	ID            int64
	PassengerID   int64
	VehicleID     int64
	Pickup        types.Point
	Dropoff       types.Point
	RideType      string
	BookingTime   string
	ScheduledTime string
	Fare          float64
	Seats         int
	Status        Status
}

// Passenger is a per-booking record: every booking creates a fresh row tied
// to the requesting user, deliberately not idempotent across rebookings.
type Passenger struct {
	ID            int64
	UserID        int64
	PaymentMethod string
}

// Cancellation is the append-only audit row written inside the same
// transaction that marks the ride cancelled.
type Cancellation struct {
	RideID      int64
	CancelledBy string
	PassengerID int64
	VehicleID   int64
}

// Booking is a validated booking command.
type Booking struct {
	UserID        int64
	VehicleID     int64
	Pickup        types.Point
	Dropoff       types.Point
	RideType      string
	BookingTime   string
	ScheduledTime string
	Fare          float64
	Seats         int
	PaymentMethod string
}
