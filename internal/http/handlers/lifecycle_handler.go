// README: Ride lifecycle and fleet maintenance handlers.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/dispatch"
	"github.com/SabaShahdin/ms/internal/modules/ride"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
	"github.com/SabaShahdin/ms/internal/types"
)

type LifecycleHandler struct {
	rides       *ride.Service
	vehicles    *vehicle.Service
	hub         *dispatch.Hub
	broadcaster *dispatch.Broadcaster
}

func NewLifecycleHandler(rides *ride.Service, vehicles *vehicle.Service, hub *dispatch.Hub, broadcaster *dispatch.Broadcaster) *LifecycleHandler {
	return &LifecycleHandler{rides: rides, vehicles: vehicles, hub: hub, broadcaster: broadcaster}
}

func (h *LifecycleHandler) CancelRide(c *gin.Context) {
	rideID, err := strconv.ParseInt(c.Param("rideId"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	if err := h.rides.Cancel(c.Request.Context(), rideID, c.Query("cancelled_by")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Ride cancelled successfully"})
}

type rideIDReq struct {
	RideID *int64 `json:"rideId"`
}

func (h *LifecycleHandler) StartRide(c *gin.Context) {
	h.setRideStatus(c, h.rides.Start, "Ride started")
}

func (h *LifecycleHandler) CompleteRide(c *gin.Context) {
	h.setRideStatus(c, h.rides.Complete, "Ride is completed")
}

func (h *LifecycleHandler) setRideStatus(c *gin.Context, op func(ctx context.Context, rideID int64) error, msg string) {
	var req rideIDReq
	if err := c.ShouldBindJSON(&req); err != nil || req.RideID == nil {
		writeError(c, http.StatusBadRequest, "Missing required parameters. Please provide rideId.")
		return
	}
	if err := op(c.Request.Context(), *req.RideID); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": msg, "rideId": *req.RideID})
}

type releaseReq struct {
	LicensePlate string `json:"licensePlate"`
	PlateAlias   string `json:"license_plate"`
	RideID       *int64 `json:"rideId"`
}

func (r releaseReq) plate() string {
	if r.LicensePlate != "" {
		return r.LicensePlate
	}
	return r.PlateAlias
}

// ReleaseVehicle frees the vehicle at ride end: capacity back, Available.
func (h *LifecycleHandler) ReleaseVehicle(c *gin.Context) {
	var req releaseReq
	if err := c.ShouldBindJSON(&req); err != nil || req.plate() == "" || req.RideID == nil {
		writeError(c, http.StatusBadRequest, "Please provide both licensePlate and rideId.")
		return
	}
	if err := h.rides.Release(c.Request.Context(), req.plate(), *req.RideID); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Vehicle status updated successfully with remaining capacity."})
}

// RestoreCapacity adds the ride's seats back without flipping status.
func (h *LifecycleHandler) RestoreCapacity(c *gin.Context) {
	var req releaseReq
	if err := c.ShouldBindJSON(&req); err != nil || req.plate() == "" || req.RideID == nil {
		writeError(c, http.StatusBadRequest, "Please provide both licensePlate and rideId.")
		return
	}
	if err := h.rides.RestoreCapacity(c.Request.Context(), req.plate(), *req.RideID); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Vehicle status updated successfully with remaining capacity."})
}

// ReleaseBus settles a whole bus run: seats back, rides Completed.
func (h *LifecycleHandler) ReleaseBus(c *gin.Context) {
	var req releaseReq
	if err := c.ShouldBindJSON(&req); err != nil || req.plate() == "" {
		writeError(c, http.StatusBadRequest, "Please provide the licensePlate.")
		return
	}
	if err := h.rides.ReleaseBus(c.Request.Context(), req.plate()); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "All vehicle capacities and ride statuses updated successfully."})
}

// UpdateRideStatus completes every ride on a vehicle and returns it to
// Available, keyed by license plate. Capacity is left alone.
func (h *LifecycleHandler) UpdateRideStatus(c *gin.Context) {
	var req releaseReq
	if err := c.ShouldBindJSON(&req); err != nil || req.plate() == "" {
		writeError(c, http.StatusBadRequest, "Please provide the licensePlate.")
		return
	}
	if err := h.rides.CompleteVehicleRides(c.Request.Context(), req.plate()); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Ride statuses updated successfully."})
}

type locationReq struct {
	LicensePlate string   `json:"license_plate"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// UpdateLocation persists a GPS fix and pushes a fresh fleet snapshot to
// every dispatch connection.
func (h *LifecycleHandler) UpdateLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil || req.LicensePlate == "" || req.Latitude == nil || req.Longitude == nil {
		writeError(c, http.StatusBadRequest, "Missing required parameters. Please provide license_plate, latitude, and longitude.")
		return
	}
	if _, err := h.vehicles.UpdateLocation(c.Request.Context(), req.LicensePlate, types.Point{Lat: *req.Latitude, Lng: *req.Longitude}); err != nil {
		writeServiceError(c, err)
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.Push(c.Request.Context())
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Vehicle location updated successfully."})
}

// Deactivate retires a vehicle rather than deleting the row.
func (h *LifecycleHandler) Deactivate(c *gin.Context) {
	vehicleID, err := strconv.ParseInt(c.Param("vehicleId"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	if err := h.vehicles.Deactivate(c.Request.Context(), vehicleID); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Vehicle marked as inactive successfully."})
}

func (h *LifecycleHandler) ConnectedDrivers(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.hub.ConnectedDrivers())
}
