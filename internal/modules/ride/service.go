// README: Ride lifecycle service: booking, cancellation, status transitions, vehicle release.
package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SabaShahdin/ms/internal/events"
	"github.com/SabaShahdin/ms/internal/types"
)

var (
	ErrBadRequest  = errors.New("invalid ride request")
	ErrNotFound    = errors.New("ride not found")
	ErrConflict    = errors.New("vehicle capacity exhausted")
	ErrUnavailable = errors.New("ride store unavailable")
)

type Service struct {
	store Store
	sink  events.Sink
	log   *slog.Logger
}

func NewService(store Store, sink events.Sink, log *slog.Logger) *Service {
	return &Service{store: store, sink: sink, log: log}
}

// BookingRequest carries the raw booking payload. Fields are pointers so a
// missing field is distinguishable from a zero value; Validate names every
// absent field in the error.
type BookingRequest struct {
	PassengerUserID *int64   `json:"passenger_id"`
	VehicleID       *int64   `json:"vehicle_id"`
	PickupLat       *float64 `json:"pickup_latitude"`
	PickupLng       *float64 `json:"pickup_longitude"`
	DropoffLat      *float64 `json:"dropoff_latitude"`
	DropoffLng      *float64 `json:"dropoff_longitude"`
	RideType        *string  `json:"ride_type"`
	BookingTime     *string  `json:"booking_time"`
	Fare            *float64 `json:"fare"`
	ScheduledTime   *string  `json:"scheduled_time"`
	Seats           *int     `json:"seats"`
	PaymentMethod   *string  `json:"paymentMethod"`
}

func (r BookingRequest) validate() (Booking, error) {
	var missing []string
	need := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	need(r.PassengerUserID != nil, "passenger_id")
	need(r.VehicleID != nil, "vehicle_id")
	need(r.PickupLat != nil, "pickup_latitude")
	need(r.PickupLng != nil, "pickup_longitude")
	need(r.DropoffLat != nil, "dropoff_latitude")
	need(r.DropoffLng != nil, "dropoff_longitude")
	need(r.RideType != nil && *r.RideType != "", "ride_type")
	need(r.BookingTime != nil && *r.BookingTime != "", "booking_time")
	need(r.Fare != nil, "fare")
	need(r.ScheduledTime != nil && *r.ScheduledTime != "", "scheduled_time")
	need(r.Seats != nil, "seats")
	need(r.PaymentMethod != nil && *r.PaymentMethod != "", "paymentMethod")
	if len(missing) > 0 {
		return Booking{}, fmt.Errorf("%w: missing required fields: %s", ErrBadRequest, strings.Join(missing, ", "))
	}

	b := Booking{
		UserID:        *r.PassengerUserID,
		VehicleID:     *r.VehicleID,
		Pickup:        types.Point{Lat: *r.PickupLat, Lng: *r.PickupLng},
		Dropoff:       types.Point{Lat: *r.DropoffLat, Lng: *r.DropoffLng},
		RideType:      *r.RideType,
		BookingTime:   *r.BookingTime,
		ScheduledTime: *r.ScheduledTime,
		Fare:          *r.Fare,
		Seats:         *r.Seats,
		PaymentMethod: *r.PaymentMethod,
	}
	if !b.Pickup.Valid() || !b.Dropoff.Valid() {
		return Booking{}, fmt.Errorf("%w: coordinates out of range", ErrBadRequest)
	}
	if b.Seats <= 0 {
		return Booking{}, fmt.Errorf("%w: seats must be positive", ErrBadRequest)
	}
	return b, nil
}

// Book commits a booking: passenger record, ride row, and vehicle claim as
// one unit. Nothing is written when validation fails.
func (s *Service) Book(ctx context.Context, req BookingRequest) (rideID, passengerID int64, err error) {
	return s.book(ctx, req, true)
}

// BookBusSeat books seats on a scheduled bus without claiming the vehicle;
// bus capacity is managed per stop by the capacity endpoints.
func (s *Service) BookBusSeat(ctx context.Context, req BookingRequest) (rideID, passengerID int64, err error) {
	return s.book(ctx, req, false)
}

func (s *Service) book(ctx context.Context, req BookingRequest, holdVehicle bool) (int64, int64, error) {
	b, err := req.validate()
	if err != nil {
		return 0, 0, err
	}
	rideID, passengerID, err := s.store.CreateBooking(ctx, b, holdVehicle)
	if errors.Is(err, ErrConflict) {
		return 0, 0, ErrConflict
	}
	if err != nil {
		s.log.Error("booking failed", "err", err, "vehicle_id", b.VehicleID)
		return 0, 0, ErrUnavailable
	}
	s.log.Info("ride booked", "ride_id", rideID, "passenger_id", passengerID, "vehicle_id", b.VehicleID)
	s.publish(ctx, events.RideEvent{RideID: rideID, PassengerID: passengerID, VehicleID: b.VehicleID, Status: "booked"})
	return rideID, passengerID, nil
}

// Cancel marks the ride cancelled, writing the audit row in the same
// transaction. The canceller identity is recorded verbatim.
func (s *Service) Cancel(ctx context.Context, rideID int64, cancelledBy string) error {
	if cancelledBy == "" {
		cancelledBy = "user"
	}
	c, err := s.store.CancelRide(ctx, rideID, cancelledBy)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Error("cancellation failed", "err", err, "ride_id", rideID)
		return ErrUnavailable
	}
	s.log.Info("ride cancelled", "ride_id", rideID, "cancelled_by", cancelledBy)
	s.publish(ctx, events.RideEvent{RideID: rideID, PassengerID: c.PassengerID, VehicleID: c.VehicleID, Status: "cancelled"})
	return nil
}

// Start moves a ride onto the road.
func (s *Service) Start(ctx context.Context, rideID int64) error {
	if err := s.setStatus(ctx, rideID, StatusOnRide); err != nil {
		return err
	}
	s.publish(ctx, events.RideEvent{RideID: rideID, Status: "started"})
	return nil
}

// Complete marks a ride finished.
func (s *Service) Complete(ctx context.Context, rideID int64) error {
	if err := s.setStatus(ctx, rideID, StatusCompleted); err != nil {
		return err
	}
	s.publish(ctx, events.RideEvent{RideID: rideID, Status: "completed"})
	return nil
}

func (s *Service) setStatus(ctx context.Context, rideID int64, status Status) error {
	err := s.store.SetStatus(ctx, rideID, status)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Error("status update failed", "err", err, "ride_id", rideID, "status", status)
		return ErrUnavailable
	}
	s.log.Info("ride status updated", "ride_id", rideID, "status", status)
	return nil
}

// Release restores the ride's seats to the vehicle and marks it Available.
func (s *Service) Release(ctx context.Context, licensePlate string, rideID int64) error {
	return s.release(ctx, licensePlate, rideID, true)
}

// RestoreCapacity adds the seats back without touching the vehicle status.
func (s *Service) RestoreCapacity(ctx context.Context, licensePlate string, rideID int64) error {
	return s.release(ctx, licensePlate, rideID, false)
}

func (s *Service) release(ctx context.Context, licensePlate string, rideID int64, flipStatus bool) error {
	if licensePlate == "" {
		return ErrBadRequest
	}
	err := s.store.ReleaseVehicle(ctx, licensePlate, rideID, flipStatus)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Error("vehicle release failed", "err", err, "plate", licensePlate, "ride_id", rideID)
		return ErrUnavailable
	}
	return nil
}

// ReleaseBus completes all rides on a bus at end of route and restores the
// summed seats in one transaction.
func (s *Service) ReleaseBus(ctx context.Context, licensePlate string) error {
	if licensePlate == "" {
		return ErrBadRequest
	}
	err := s.store.ReleaseBus(ctx, licensePlate)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Error("bus release failed", "err", err, "plate", licensePlate)
		return ErrUnavailable
	}
	return nil
}

// CompleteVehicleRides flips every ride on the vehicle to Completed and
// the vehicle back to Available, without restoring capacity.
func (s *Service) CompleteVehicleRides(ctx context.Context, licensePlate string) error {
	if licensePlate == "" {
		return ErrBadRequest
	}
	err := s.store.CompleteForVehicle(ctx, licensePlate)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Error("vehicle ride completion failed", "err", err, "plate", licensePlate)
		return ErrUnavailable
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.RideEvent) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(ctx, e)
}
