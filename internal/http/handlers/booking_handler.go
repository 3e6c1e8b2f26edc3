// README: Booking handlers: ride and bus-seat bookings, capacity updates.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/ride"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
)

type BookingHandler struct {
	rides    *ride.Service
	vehicles *vehicle.Service
}

func NewBookingHandler(rides *ride.Service, vehicles *vehicle.Service) *BookingHandler {
	return &BookingHandler{rides: rides, vehicles: vehicles}
}

func (h *BookingHandler) BookRide(c *gin.Context) {
	var req ride.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	rideID, passengerID, err := h.rides.Book(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"message":     "Ride booked successfully",
		"rideId":      rideID,
		"passengerId": passengerID,
	})
}

// GetBookRide is the legacy alias the older client builds call; same
// booking flow, 200 instead of 201.
func (h *BookingHandler) GetBookRide(c *gin.Context) {
	var req ride.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	rideID, passengerID, err := h.rides.Book(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"message":     "Ride booked successfully",
		"rideId":      rideID,
		"passengerId": passengerID,
	})
}

// BookBusSeat books seats on a scheduled bus without claiming the vehicle.
func (h *BookingHandler) BookBusSeat(c *gin.Context) {
	var req ride.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	rideID, passengerID, err := h.rides.BookBusSeat(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"message":     "Bus seat booked successfully",
		"rideId":      rideID,
		"passengerId": passengerID,
	})
}

type updateCapacityReq struct {
	VehicleID         *int64 `json:"vehicle_id"`
	RemainingCapacity *int   `json:"remaining_capacity"`
}

func (h *BookingHandler) UpdateCapacity(c *gin.Context) {
	var req updateCapacityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VehicleID == nil || req.RemainingCapacity == nil {
		writeError(c, http.StatusBadRequest, "vehicle_id and remaining_capacity are required")
		return
	}
	if err := h.vehicles.UpdateCapacity(c.Request.Context(), *req.VehicleID, *req.RemainingCapacity); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Capacity updated successfully"})
}
