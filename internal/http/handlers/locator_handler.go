// README: Vehicle discovery handlers: search, nearby buses, bus stops.
package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/route"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
	"github.com/SabaShahdin/ms/internal/types"
)

type LocatorHandler struct {
	vehicles *vehicle.Service
	routes   *route.Service
}

func NewLocatorHandler(vehicles *vehicle.Service, routes *route.Service) *LocatorHandler {
	return &LocatorHandler{vehicles: vehicles, routes: routes}
}

// candidateView matches the row shape the frontend consumes, with distance
// and fare pre-formatted to two decimals. An uncomputable fare becomes "N/A".
type candidateView struct {
	VehicleID         int64   `json:"vehicle_id"`
	LicensePlate      string  `json:"license_plate"`
	TypeName          string  `json:"type_name"`
	GPSLatitude       float64 `json:"gps_latitude"`
	GPSLongitude      float64 `json:"gps_longitude"`
	DriverID          int64   `json:"driver_id"`
	BaseFare          float64 `json:"base_fare"`
	PerKmRate         float64 `json:"per_km_rate"`
	MinFare           float64 `json:"min_fare"`
	PeakMultiplier    float64 `json:"peak_time_multiplier"`
	RemainingCapacity int     `json:"remaining_capacity"`
	Distance          string  `json:"distance"`
	Fare              string  `json:"fare"`
}

func toView(c vehicle.Candidate) candidateView {
	fare := "N/A"
	if !math.IsNaN(c.Fare) {
		fare = fmt.Sprintf("%.2f", c.Fare)
	}
	return candidateView{
		VehicleID:         c.ID,
		LicensePlate:      c.LicensePlate,
		TypeName:          c.TypeName,
		GPSLatitude:       c.Position.Lat,
		GPSLongitude:      c.Position.Lng,
		DriverID:          c.DriverID,
		BaseFare:          c.BaseFare,
		PerKmRate:         c.PerKmRate,
		MinFare:           c.MinFare,
		PeakMultiplier:    c.PeakMultiplier,
		RemainingCapacity: c.RemainingCapacity,
		Distance:          fmt.Sprintf("%.2f", c.DistanceKm),
		Fare:              fare,
	}
}

func toViews(cands []vehicle.Candidate) []candidateView {
	views := make([]candidateView, len(cands))
	for i, c := range cands {
		views[i] = toView(c)
	}
	return views
}

// Search lists available vehicles near the start point, nearest first.
// start is a "lat,lng" pair; end is a pair or a place name.
func (h *LocatorHandler) Search(c *gin.Context) {
	origin, err := types.ParsePoint(c.Query("start"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "start must be a lat,lng pair")
		return
	}
	cands, svcErr := h.vehicles.Search(c.Request.Context(),
		origin, c.Query("end"), c.Query("type"))
	if svcErr != nil {
		writeServiceError(c, svcErr)
		return
	}
	writeJSON(c, http.StatusOK, toViews(cands))
}

// NearbyBuses lists available buses within walking-ish distance of the rider.
func (h *LocatorHandler) NearbyBuses(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "Invalid location parameters. Please provide valid latitude and longitude.")
		return
	}
	buses, err := h.vehicles.NearbyBuses(c.Request.Context(), types.Point{Lat: lat, Lng: lng})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toViews(buses))
}

type fleetView struct {
	VehicleID         int64   `json:"vehicle_id"`
	LicensePlate      string  `json:"license_plate"`
	TypeName          string  `json:"type_name"`
	GPSLatitude       float64 `json:"gps_latitude"`
	GPSLongitude      float64 `json:"gps_longitude"`
	RemainingCapacity int     `json:"remaining_capacity"`
	Status            string  `json:"status"`
}

// Fleet lists vehicles around an area centre for the operations view.
// type and status accept "All" as a wildcard.
func (h *LocatorHandler) Fleet(c *gin.Context) {
	typeName, status, area := c.Query("type"), c.Query("status"), c.Query("area")
	if typeName == "" || status == "" || area == "" ||
		typeName == "none" || status == "none" || area == "none" {
		writeError(c, http.StatusBadRequest, "Invalid parameters. Please provide valid area, type, and status.")
		return
	}
	center, err := h.routes.AreaPosition(c.Request.Context(), area)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	vs, err := h.vehicles.Fleet(c.Request.Context(), typeName, status, center)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	views := make([]fleetView, len(vs))
	for i, v := range vs {
		views[i] = fleetView{
			VehicleID:         v.ID,
			LicensePlate:      v.LicensePlate,
			TypeName:          v.TypeName,
			GPSLatitude:       v.Position.Lat,
			GPSLongitude:      v.Position.Lng,
			RemainingCapacity: v.RemainingCapacity,
			Status:            string(v.Status),
		}
	}
	writeJSON(c, http.StatusOK, views)
}

func (h *LocatorHandler) BusStops(c *gin.Context) {
	vehicleID, err := strconv.ParseInt(c.Query("vehicle_id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "Vehicle ID is required.")
		return
	}
	stops, svcErr := h.routes.StopsForVehicle(c.Request.Context(), vehicleID)
	if svcErr != nil {
		writeServiceError(c, svcErr)
		return
	}
	writeJSON(c, http.StatusOK, stops)
}
