// README: Route service validates lookups over the reference data.
package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SabaShahdin/ms/internal/types"
)

var (
	ErrBadRequest  = errors.New("invalid route request")
	ErrNotFound    = errors.New("route data not found")
	ErrUnavailable = errors.New("route store unavailable")
)

type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// StopsForVehicle returns the scheduled stops of a bus in travel order.
func (s *Service) StopsForVehicle(ctx context.Context, vehicleID int64) ([]Stop, error) {
	if vehicleID <= 0 {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrBadRequest)
	}
	stops, err := s.store.StopsForVehicle(ctx, vehicleID)
	if err != nil {
		s.log.Error("stops lookup failed", "vehicle_id", vehicleID, "err", err)
		return nil, ErrUnavailable
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops for vehicle %d", ErrNotFound, vehicleID)
	}
	return stops, nil
}

// StopsForRoute returns a route's stops in order, for the route-detail view.
func (s *Service) StopsForRoute(ctx context.Context, routeID int64) ([]Stop, error) {
	if routeID <= 0 {
		return nil, fmt.Errorf("%w: route id is required", ErrBadRequest)
	}
	stops, err := s.store.StopsForRoute(ctx, routeID)
	if err != nil {
		s.log.Error("route detail lookup failed", "route_id", routeID, "err", err)
		return nil, ErrUnavailable
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops for route %d", ErrNotFound, routeID)
	}
	return stops, nil
}

func (s *Service) Areas(ctx context.Context) ([]string, error) {
	names, err := s.store.AreaNames(ctx)
	if err != nil {
		s.log.Error("area lookup failed", "err", err)
		return nil, ErrUnavailable
	}
	return names, nil
}

// AreaPosition resolves an area name to its centre coordinates.
func (s *Service) AreaPosition(ctx context.Context, areaName string) (types.Point, error) {
	if areaName == "" {
		return types.Point{}, fmt.Errorf("%w: area name is required", ErrBadRequest)
	}
	p, err := s.store.AreaPosition(ctx, areaName)
	if errors.Is(err, ErrNotFound) {
		return types.Point{}, fmt.Errorf("%w: area %q", ErrNotFound, areaName)
	}
	if err != nil {
		s.log.Error("area position lookup failed", "area", areaName, "err", err)
		return types.Point{}, ErrUnavailable
	}
	return p, nil
}

// RegisterBusRoute creates a route with its stops and binds the bus to the
// schedule. All fields are required and at least one stop must resolve to
// a known area.
func (s *Service) RegisterBusRoute(ctx context.Context, reg BusRouteRegistration) (int64, error) {
	if reg.RouteName == "" || reg.OriginCity == "" || reg.DestinationCity == "" ||
		reg.DistanceKm <= 0 || reg.Duration == "" || len(reg.Stops) == 0 || reg.VehicleID <= 0 {
		return 0, fmt.Errorf("%w: route name, cities, distance, duration, stops, and vehicle id are required", ErrBadRequest)
	}
	routeID, skipped, err := s.store.CreateBusRoute(ctx, reg)
	if errors.Is(err, ErrBadRequest) {
		return 0, fmt.Errorf("%w: no stop matches a known area", ErrBadRequest)
	}
	if err != nil {
		s.log.Error("bus route registration failed", "route", reg.RouteName, "err", err)
		return 0, ErrUnavailable
	}
	for _, name := range skipped {
		s.log.Warn("stop has no matching area, skipped", "stop", name, "route", reg.RouteName)
	}
	return routeID, nil
}

func (s *Service) Cities(ctx context.Context) ([]string, error) {
	cities, err := s.store.Cities(ctx)
	if err != nil {
		s.log.Error("city lookup failed", "err", err)
		return nil, ErrUnavailable
	}
	return cities, nil
}

// IntercityBuses lists scheduled departures between two cities.
func (s *Service) IntercityBuses(ctx context.Context, departureCity, destinationCity string) ([]IntercityBus, error) {
	if departureCity == "" || destinationCity == "" {
		return nil, fmt.Errorf("%w: both departure and destination cities are required", ErrBadRequest)
	}
	buses, err := s.store.IntercityBuses(ctx, departureCity, destinationCity)
	if err != nil {
		s.log.Error("intercity lookup failed", "from", departureCity, "to", destinationCity, "err", err)
		return nil, ErrUnavailable
	}
	return buses, nil
}
