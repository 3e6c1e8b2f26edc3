// README: HTTP router; mounts every route group and the dispatch channel.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/dispatch"
	"github.com/SabaShahdin/ms/internal/http/handlers"
	"github.com/SabaShahdin/ms/internal/http/middleware"
	"github.com/SabaShahdin/ms/internal/modules/ride"
	"github.com/SabaShahdin/ms/internal/modules/route"
	"github.com/SabaShahdin/ms/internal/modules/support"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
)

type RouterDeps struct {
	Vehicles    *vehicle.Service
	Rides       *ride.Service
	Routes      *route.Service
	Auth        *support.AuthService
	Stats       *support.StatsService
	Payments    *support.PaymentClient
	Contacts    *support.ContactService
	Hub         *dispatch.Hub
	Broadcaster *dispatch.Broadcaster
	Log         *slog.Logger
}

// requestTimeout bounds every HTTP handler's context. The dispatch channel
// under /ws is long-lived and is mounted without it.
const requestTimeout = 10 * time.Second

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.CORS())

	bounded := middleware.Timeout(requestTimeout)

	booking := handlers.NewBookingHandler(deps.Rides, deps.Vehicles)
	locator := handlers.NewLocatorHandler(deps.Vehicles, deps.Routes)
	lifecycle := handlers.NewLifecycleHandler(deps.Rides, deps.Vehicles, deps.Hub, deps.Broadcaster)
	auth := handlers.NewAuthHandler(deps.Auth)
	registration := handlers.NewRegistrationHandler(deps.Vehicles, deps.Routes)
	supportH := handlers.NewSupportHandler(deps.Routes, deps.Stats, deps.Payments, deps.Contacts)

	book := r.Group("/book", bounded)
	{
		book.POST("/api/book-ride", booking.BookRide)
		book.POST("/api/get-book-ride", booking.GetBookRide)
		book.POST("/api/bus-book-ride", booking.BookBusSeat)
		book.POST("/api/update-capacity", booking.UpdateCapacity)
	}

	rideGroup := r.Group("/ride", bounded)
	{
		rideGroup.GET("/api/vehicles", locator.Search)
	}

	bus := r.Group("/bus", bounded)
	{
		bus.GET("/api/get-all-buses", locator.NearbyBuses)
		bus.GET("/api/get-bus-stops", locator.BusStops)
	}

	cancel := r.Group("/cancel", bounded)
	{
		cancel.POST("/api/cancel-ride/:rideId", lifecycle.CancelRide)
	}

	real := r.Group("/real", bounded)
	{
		real.GET("/all-vehicles", locator.Fleet)
		real.POST("/api/update-ride", lifecycle.StartRide)
		real.POST("/api/update-complete", lifecycle.CompleteRide)
		real.POST("/api/update-ride-status", lifecycle.UpdateRideStatus)
		real.POST("/api/update-vehicle-status", lifecycle.ReleaseVehicle)
		real.POST("/api/update-vehicle", lifecycle.RestoreCapacity)
		real.POST("/api/update-buss", lifecycle.RestoreCapacity)
		real.POST("/api/update-bus-seats", lifecycle.ReleaseBus)
		real.POST("/delete-vehicle/:vehicleId", lifecycle.Deactivate)
	}

	authGroup := r.Group("/auth", bounded)
	{
		authGroup.POST("/signup", auth.Signup)
		authGroup.POST("/signin", auth.Signin)
		authGroup.POST("/refresh-token", auth.Refresh)
	}

	driver := r.Group("/driver", bounded)
	{
		driver.POST("/api/register", auth.RegisterDriver)
		driver.POST("/api/approve-driver", auth.ApproveDriver)
		driver.POST("/api/reject-driver", auth.RejectDriver)
		driver.GET("/api/pending-drivers", auth.PendingDrivers)
		driver.POST("/registerVehicle", registration.RegisterVehicle)
		driver.GET("/vehicleTypes", registration.VehicleTypes)
		driver.POST("/registerBusRoute", registration.RegisterBusRoute)
	}

	area := r.Group("/get-area", bounded)
	{
		area.GET("/areas", supportH.Areas)
	}

	city := r.Group("/city", bounded)
	{
		city.GET("/api/cities", supportH.Cities)
		city.GET("/api/get-route-details", supportH.RouteDetails)
		city.GET("/api/get-buses", supportH.IntercityBuses)
	}

	stats := r.Group("/stats", bounded, middleware.Auth(deps.Auth))
	{
		stats.GET("/city-count", supportH.CityCount)
		stats.GET("/passenger-count", supportH.PassengerCount)
		stats.GET("/vehicles-count", supportH.VehicleCount)
		stats.GET("/driver-count", supportH.DriverCount)
		stats.GET("/driver/:driverId", supportH.DriverStats)
	}

	payment := r.Group("/payment", bounded)
	{
		payment.POST("/pay", supportH.Pay)
	}

	r.POST("/api/update-vehicle-location", bounded, lifecycle.UpdateLocation)
	r.POST("/submit-contact", bounded, supportH.SubmitContact)
	r.GET("/api/connected-drivers", bounded, lifecycle.ConnectedDrivers)
	r.GET("/ws", dispatch.Serve(deps.Hub, deps.Log))
	r.GET("/health", handlers.Health)

	return r
}
