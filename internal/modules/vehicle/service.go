// README: Vehicle locator and fleet-state service.
package vehicle

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SabaShahdin/ms/internal/geo"
	"github.com/SabaShahdin/ms/internal/maps"
	"github.com/SabaShahdin/ms/internal/types"
)

var (
	ErrBadRequest  = errors.New("invalid vehicle request")
	ErrNotFound    = errors.New("vehicle not found")
	ErrConflict    = errors.New("license plate already registered")
	ErrUnavailable = errors.New("vehicle store unavailable")
)

const (
	// busRadiusKm bounds bus discovery around the caller's position.
	busRadiusKm = 7.0
	// boxPaddingDeg widens the origin-destination bounding box.
	boxPaddingDeg = 0.01
)

// LiveIndex is the live-position lookup the service uses to freshen stored
// coordinates. *GeoIndex is the Redis implementation.
type LiveIndex interface {
	Set(ctx context.Context, vehicleID int64, p types.Point) error
	Remove(ctx context.Context, vehicleID int64) error
	Positions(ctx context.Context, vehicleIDs []int64) (map[int64]types.Point, error)
}

type Service struct {
	store    Store
	index    LiveIndex
	geocoder maps.Geocoder
	log      *slog.Logger
}

func NewService(store Store, index LiveIndex, geocoder maps.Geocoder, log *slog.Logger) *Service {
	return &Service{store: store, index: index, geocoder: geocoder, log: log}
}

// Search returns every available vehicle of the given type inside the
// bounding box around the origin-destination segment, annotated with
// distance from the origin and the legacy on-demand fare (rounded, no peak
// multiplier), nearest first. The destination is either a "lat,lng" pair
// or a place name resolved through the external geocoder.
func (s *Service) Search(ctx context.Context, origin types.Point, destination, typeName string) ([]Candidate, error) {
	if !origin.Valid() || typeName == "" || destination == "" {
		return nil, ErrBadRequest
	}
	dest, err := s.resolveDestination(ctx, destination)
	if err != nil {
		return nil, err
	}

	minLat, maxLat := minMax(origin.Lat, dest.Lat)
	minLng, maxLng := minMax(origin.Lng, dest.Lng)

	cands, err := s.store.FindAvailableInBox(ctx, typeName,
		minLat-boxPaddingDeg, maxLat+boxPaddingDeg,
		minLng-boxPaddingDeg, maxLng+boxPaddingDeg,
	)
	if err != nil {
		s.log.Error("vehicle box query failed", "err", err, "type", typeName)
		return nil, ErrUnavailable
	}
	if len(cands) == 0 {
		return nil, ErrNotFound
	}

	s.freshenPositions(ctx, cands)
	annotate(cands, origin, onDemandFare)
	geo.SortByDistance(cands, func(c Candidate) float64 { return c.DistanceKm })
	return cands, nil
}

// NearbyBuses returns every available bus within 7 km of the caller,
// annotated with distance and the dynamic (peak-multiplied) fare.
// ErrNotFound distinguishes an empty fleet from a fleet with no bus in
// range only in the log, not the error.
func (s *Service) NearbyBuses(ctx context.Context, p types.Point) ([]Candidate, error) {
	if !p.Valid() {
		return nil, ErrBadRequest
	}
	cands, err := s.store.FindAvailableByType(ctx, "Bus")
	if err != nil {
		s.log.Error("bus query failed", "err", err)
		return nil, ErrUnavailable
	}
	if len(cands) == 0 {
		return nil, ErrNotFound
	}

	s.freshenPositions(ctx, cands)

	nearby := cands[:0]
	for _, c := range cands {
		if geo.Distance(p, c.Position) <= busRadiusKm {
			nearby = append(nearby, c)
		}
	}
	if len(nearby) == 0 {
		s.log.Info("no buses within radius", "radius_km", busRadiusKm)
		return nil, ErrNotFound
	}
	annotate(nearby, p, busFare)
	geo.SortByDistance(nearby, func(c Candidate) float64 { return c.DistanceKm })
	return nearby, nil
}

// UpdateCapacity sets a vehicle's remaining capacity directly.
func (s *Service) UpdateCapacity(ctx context.Context, vehicleID int64, remaining int) error {
	if remaining < 0 {
		return ErrBadRequest
	}
	err := s.store.UpdateCapacity(ctx, vehicleID, remaining)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadRequest) {
		return err
	}
	if err != nil {
		s.log.Error("capacity update failed", "err", err, "vehicle_id", vehicleID)
		return ErrUnavailable
	}
	return nil
}

// UpdateLocation records a new GPS position by license plate and refreshes
// the live index. Returns the vehicle id for snapshot broadcasting.
func (s *Service) UpdateLocation(ctx context.Context, licensePlate string, p types.Point) (int64, error) {
	if licensePlate == "" || !p.Valid() {
		return 0, ErrBadRequest
	}
	id, err := s.store.UpdateLocation(ctx, licensePlate, p.Lat, p.Lng)
	if errors.Is(err, ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		s.log.Error("location update failed", "err", err, "plate", licensePlate)
		return 0, ErrUnavailable
	}
	if s.index != nil {
		if err := s.index.Set(ctx, id, p); err != nil {
			s.log.Warn("live index update failed", "err", err, "vehicle_id", id)
		}
	}
	return id, nil
}

// Deactivate soft-deletes a vehicle. The status is terminal.
func (s *Service) Deactivate(ctx context.Context, vehicleID int64) error {
	err := s.store.Deactivate(ctx, vehicleID)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Error("deactivate failed", "err", err, "vehicle_id", vehicleID)
		return ErrUnavailable
	}
	if s.index != nil {
		if err := s.index.Remove(ctx, vehicleID); err != nil {
			s.log.Warn("live index removal failed", "err", err, "vehicle_id", vehicleID)
		}
	}
	return nil
}

// Register puts a new vehicle on the platform: capacity is resolved from
// the type catalogue, status starts Available. A duplicate license plate
// is a conflict, an unknown type id a bad request.
func (s *Service) Register(ctx context.Context, r Registration) (int64, error) {
	if r.LicensePlate == "" || r.VehicleTypeID <= 0 || r.City == "" || !r.Position.Valid() || r.DriverID <= 0 {
		return 0, ErrBadRequest
	}
	id, err := s.store.RegisterVehicle(ctx, r)
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrConflict) {
		return 0, err
	}
	if err != nil {
		s.log.Error("vehicle registration failed", "err", err, "plate", r.LicensePlate)
		return 0, ErrUnavailable
	}
	if s.index != nil {
		if err := s.index.Set(ctx, id, r.Position); err != nil {
			s.log.Warn("live index update failed", "err", err, "vehicle_id", id)
		}
	}
	return id, nil
}

// Types lists the vehicle type catalogue for registration forms.
func (s *Service) Types(ctx context.Context) ([]VehicleType, error) {
	ts, err := s.store.VehicleTypes(ctx)
	if err != nil {
		s.log.Error("vehicle types query failed", "err", err)
		return nil, ErrUnavailable
	}
	return ts, nil
}

// fleetRadiusKm bounds the admin fleet listing around an area's centre.
const fleetRadiusKm = 5.0

// Fleet lists vehicles of a type and status within 5 km of an area centre.
// "All" is a wildcard for the type and status filters.
func (s *Service) Fleet(ctx context.Context, typeName, status string, center types.Point) ([]Vehicle, error) {
	if typeName == "" || status == "" || !center.Valid() {
		return nil, ErrBadRequest
	}
	vs, err := s.store.FindByFilters(ctx, typeName, status)
	if err != nil {
		s.log.Error("fleet query failed", "err", err, "type", typeName, "status", status)
		return nil, ErrUnavailable
	}
	near := vs[:0]
	for _, v := range vs {
		if geo.Distance(center, v.Position) <= fleetRadiusKm {
			near = append(near, v)
		}
	}
	return near, nil
}

// Snapshot returns the whole fleet for the dispatch broadcast.
func (s *Service) Snapshot(ctx context.Context) ([]Vehicle, error) {
	vs, err := s.store.Snapshot(ctx)
	if err != nil {
		s.log.Error("fleet snapshot failed", "err", err)
		return nil, ErrUnavailable
	}
	return vs, nil
}

func (s *Service) resolveDestination(ctx context.Context, destination string) (types.Point, error) {
	if strings.Contains(destination, ",") {
		p, err := types.ParsePoint(destination)
		if err != nil {
			return types.Point{}, ErrBadRequest
		}
		return p, nil
	}
	if s.geocoder == nil {
		return types.Point{}, ErrBadRequest
	}
	p, err := s.geocoder.Geocode(ctx, destination)
	if errors.Is(err, maps.ErrNoResult) {
		return types.Point{}, ErrBadRequest
	}
	if err != nil {
		s.log.Error("geocoding failed", "err", err, "place", destination)
		return types.Point{}, ErrUnavailable
	}
	return p, nil
}

// freshenPositions overrides stored coordinates with live index positions
// where available. Index failures degrade to stored positions.
func (s *Service) freshenPositions(ctx context.Context, cands []Candidate) {
	if s.index == nil {
		return
	}
	ids := make([]int64, len(cands))
	for i, c := range cands {
		ids[i] = c.ID
	}
	live, err := s.index.Positions(ctx, ids)
	if err != nil {
		s.log.Warn("live index lookup failed", "err", err)
		return
	}
	for i := range cands {
		if p, ok := live[cands[i].ID]; ok {
			cands[i].Position = p
		}
	}
}

// fareFunc picks the pricing variant per caller: on-demand rides keep the
// rounded legacy figure their clients display as-is, buses apply the peak
// multiplier.
type fareFunc func(c *Candidate) float64

func onDemandFare(c *Candidate) float64 {
	return geo.LegacyFare(c.DistanceKm, c.BaseFare, c.PerKmRate)
}

func busFare(c *Candidate) float64 {
	return geo.Fare(c.DistanceKm, c.BaseFare, c.PerKmRate, c.PeakMultiplier)
}

func annotate(cands []Candidate, from types.Point, fare fareFunc) {
	for i := range cands {
		c := &cands[i]
		c.DistanceKm = geo.Distance(from, c.Position)
		c.Fare = fare(c)
	}
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}
