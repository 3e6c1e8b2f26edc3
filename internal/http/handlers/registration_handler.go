// README: Driver-side registration handlers: vehicles and bus routes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/route"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
	"github.com/SabaShahdin/ms/internal/types"
)

type RegistrationHandler struct {
	vehicles *vehicle.Service
	routes   *route.Service
}

func NewRegistrationHandler(vehicles *vehicle.Service, routes *route.Service) *RegistrationHandler {
	return &RegistrationHandler{vehicles: vehicles, routes: routes}
}

type vehicleRegReq struct {
	LicensePlate  string   `json:"license_plate"`
	VehicleTypeID *int64   `json:"vehicle_type_id"`
	City          string   `json:"city"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	DriverID      *int64   `json:"driver_id"`
}

// RegisterVehicle puts a driver's vehicle on the platform. A duplicate
// license plate is a 409.
func (h *RegistrationHandler) RegisterVehicle(c *gin.Context) {
	var req vehicleRegReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.LicensePlate == "" || req.VehicleTypeID == nil || req.City == "" ||
		req.Latitude == nil || req.Longitude == nil || req.DriverID == nil {
		writeError(c, http.StatusBadRequest, "Please provide license_plate, vehicle_type_id, city, latitude, longitude, and driver_id.")
		return
	}
	id, err := h.vehicles.Register(c.Request.Context(), vehicle.Registration{
		LicensePlate:  req.LicensePlate,
		VehicleTypeID: *req.VehicleTypeID,
		City:          req.City,
		Position:      types.Point{Lat: *req.Latitude, Lng: *req.Longitude},
		DriverID:      *req.DriverID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"message":    "Vehicle registration request submitted successfully",
		"vehicle_id": id,
	})
}

// VehicleTypes lists the type catalogue for the registration form.
func (h *RegistrationHandler) VehicleTypes(c *gin.Context) {
	ts, err := h.vehicles.Types(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ts)
}

// RegisterBusRoute creates a route with its stops and binds the bus to it.
func (h *RegistrationHandler) RegisterBusRoute(c *gin.Context) {
	var req route.BusRouteRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "All fields are required, and stops must be a non-empty array.")
		return
	}
	id, err := h.routes.RegisterBusRoute(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"message":  "Bus route registered successfully!",
		"route_id": id,
	})
}
