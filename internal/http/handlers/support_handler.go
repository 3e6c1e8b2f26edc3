// README: Reference data, stats and payment handlers.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/route"
	"github.com/SabaShahdin/ms/internal/modules/support"
)

type SupportHandler struct {
	routes   *route.Service
	stats    *support.StatsService
	payments *support.PaymentClient
	contacts *support.ContactService
}

func NewSupportHandler(routes *route.Service, stats *support.StatsService, payments *support.PaymentClient, contacts *support.ContactService) *SupportHandler {
	return &SupportHandler{routes: routes, stats: stats, payments: payments, contacts: contacts}
}

type areaView struct {
	AreaName string `json:"area_name"`
}

func (h *SupportHandler) Areas(c *gin.Context) {
	names, err := h.routes.Areas(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	views := make([]areaView, len(names))
	for i, n := range names {
		views[i] = areaView{AreaName: n}
	}
	writeJSON(c, http.StatusOK, views)
}

type cityView struct {
	City string `json:"city"`
}

func (h *SupportHandler) Cities(c *gin.Context) {
	cities, err := h.routes.Cities(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	views := make([]cityView, len(cities))
	for i, city := range cities {
		views[i] = cityView{City: city}
	}
	writeJSON(c, http.StatusOK, views)
}

func (h *SupportHandler) RouteDetails(c *gin.Context) {
	routeID, err := strconv.ParseInt(c.Query("routeId"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "routeId is required")
		return
	}
	stops, svcErr := h.routes.StopsForRoute(c.Request.Context(), routeID)
	if svcErr != nil {
		writeServiceError(c, svcErr)
		return
	}
	writeJSON(c, http.StatusOK, stops)
}

func (h *SupportHandler) IntercityBuses(c *gin.Context) {
	buses, err := h.routes.IntercityBuses(c.Request.Context(),
		c.Query("departureCity"), c.Query("destinationCity"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, buses)
}

func (h *SupportHandler) CityCount(c *gin.Context) {
	h.count(c, h.stats.CityCount, "cityCount")
}

func (h *SupportHandler) PassengerCount(c *gin.Context) {
	h.count(c, h.stats.PassengerCount, "passengerCount")
}

func (h *SupportHandler) VehicleCount(c *gin.Context) {
	h.count(c, h.stats.VehicleCount, "vehicleCount")
}

func (h *SupportHandler) DriverCount(c *gin.Context) {
	h.count(c, h.stats.DriverCount, "driverCount")
}

func (h *SupportHandler) count(c *gin.Context, query func(ctx context.Context) (int64, error), key string) {
	n, err := query(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{key: n})
}

func (h *SupportHandler) DriverStats(c *gin.Context) {
	driverID, err := strconv.ParseInt(c.Param("driverId"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	stats, svcErr := h.stats.DriverStats(c.Request.Context(), driverID)
	if svcErr != nil {
		writeServiceError(c, svcErr)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}

func (h *SupportHandler) Pay(c *gin.Context) {
	var req support.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	url, err := h.payments.CreateSession(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"url": url})
}

// SubmitContact stores a contact-form message.
func (h *SupportHandler) SubmitContact(c *gin.Context) {
	var req support.ContactMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.contacts.Submit(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Thank you for contacting us! We will get back to you soon."})
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
