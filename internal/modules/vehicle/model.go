// README: Vehicle aggregate, status definitions, and locator candidates.
package vehicle

import "github.com/SabaShahdin/ms/internal/types"

type Status string

const (
	StatusAvailable Status = "Available"
	StatusOnRide    Status = "OnRide"
	// StatusInactive is terminal: a soft-deleted vehicle never appears in
	// locator or stats queries again.
	StatusInactive Status = "Inactive"
)

type Vehicle struct {
	ID                int64
	LicensePlate      string
	TypeName          string
	Capacity          int
	RemainingCapacity int
	Position          types.Point
	Status            Status
	DriverID          int64
}

// VehicleType is a row of the vehicle type catalogue.
type VehicleType struct {
	ID       int64  `json:"vehicle_type_id"`
	TypeName string `json:"type_name"`
	Capacity int    `json:"capacity"`
}

// Registration is a driver's request to put a new vehicle on the platform.
// Capacity comes from the type catalogue, not the request.
type Registration struct {
	LicensePlate  string
	VehicleTypeID int64
	City          string
	Position      types.Point
	DriverID      int64
}

// Candidate is a locator result: an available vehicle annotated with its
// fare schedule, distance from the caller, and the computed fare.
type Candidate struct {
	Vehicle
	BaseFare       float64
	PerKmRate      float64
	MinFare        float64
	PeakMultiplier float64
	DistanceKm     float64
	Fare           float64
}
