// README: Route reference data (routes, stops, areas, intercity schedules).
package route

// Stop is one entry of a vehicle's scheduled route, ordered by StopOrder.
type Stop struct {
	StopID     int64   `json:"stop_id"`
	StopOrder  int     `json:"stop_order"`
	RouteName  string  `json:"route_name"`
	DistanceKm float64 `json:"distance"`
	Duration   string  `json:"duration"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	AreaName   string  `json:"area_name"`
}

// Area is a named pickup/dropoff zone inside a city.
type Area struct {
	ID   int64   `json:"area_id"`
	Name string  `json:"area_name"`
	City string  `json:"city"`
	Lat  float64 `json:"latitude"`
	Lng  float64 `json:"longitude"`
}

// BusRouteRegistration creates a route with its ordered stops and binds a
// bus to the schedule. Stops are area names; names without an area row are
// skipped during registration.
type BusRouteRegistration struct {
	RouteName       string   `json:"route_name"`
	OriginCity      string   `json:"origin_city"`
	DestinationCity string   `json:"destination_city"`
	DistanceKm      float64  `json:"distance"`
	Duration        string   `json:"duration"`
	Stops           []string `json:"stops"`
	VehicleID       int64    `json:"vehicle_id"`
}

// IntercityBus is a scheduled departure between two cities.
type IntercityBus struct {
	VehicleID         int64   `json:"vehicle_id"`
	LicensePlate      string  `json:"license_plate"`
	Status            string  `json:"status"`
	RouteID           int64   `json:"route_id"`
	RouteName         string  `json:"route_name"`
	RemainingCapacity int     `json:"remaining_capacity"`
	DepartureTime     string  `json:"departure_time"`
	ArrivalTime       string  `json:"arrival_time"`
	Fare              float64 `json:"fare"`
	DistanceKm        float64 `json:"distance"`
}
