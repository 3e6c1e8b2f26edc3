// README: Ride store backed by PostgreSQL; every multi-row transition runs in one transaction.
package ride

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	CreateBooking(ctx context.Context, b Booking, holdVehicle bool) (rideID, passengerID int64, err error)
	CancelRide(ctx context.Context, rideID int64, cancelledBy string) (Cancellation, error)
	SetStatus(ctx context.Context, rideID int64, status Status) error
	ReleaseVehicle(ctx context.Context, licensePlate string, rideID int64, flipStatus bool) error
	ReleaseBus(ctx context.Context, licensePlate string) error
	CompleteForVehicle(ctx context.Context, licensePlate string) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// CreateBooking inserts the passenger record and the ride row, and (for
// on-demand rides) claims the vehicle, all in one transaction. The vehicle
// claim is a conditional decrement: zero affected rows means another booking
// won the seats, and the whole booking rolls back.
func (s *PGStore) CreateBooking(ctx context.Context, b Booking, holdVehicle bool) (int64, int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx) // safe rollback if not committed

	var passengerID int64
	row := tx.QueryRow(ctx, `
		INSERT INTO passengers (user_id, preferred_payment_method)
		VALUES ($1, $2)
		RETURNING passenger_id`,
		b.UserID, b.PaymentMethod,
	)
	if err := row.Scan(&passengerID); err != nil {
		return 0, 0, err
	}

	var rideID int64
	row = tx.QueryRow(ctx, `
		INSERT INTO rides (
			passenger_id, vehicle_id,
			pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude,
			ride_type, booking_time, fare, scheduled_time, seats, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending')
		RETURNING ride_id`,
		passengerID, b.VehicleID,
		b.Pickup.Lat, b.Pickup.Lng, b.Dropoff.Lat, b.Dropoff.Lng,
		b.RideType, b.BookingTime, b.Fare, b.ScheduledTime, b.Seats,
	)
	if err := row.Scan(&rideID); err != nil {
		return 0, 0, err
	}

	if holdVehicle {
		tag, err := tx.Exec(ctx, `
			UPDATE vehicles
			SET status = 'OnRide',
			    remaining_capacity = remaining_capacity - $2
			WHERE vehicle_id = $1 AND remaining_capacity >= $2`,
			b.VehicleID, b.Seats,
		)
		if err != nil {
			return 0, 0, err
		}
		if tag.RowsAffected() == 0 {
			return 0, 0, ErrConflict
		}
	}

	return rideID, passengerID, tx.Commit(ctx)
}

// CancelRide looks up the ride, appends the audit row, and marks the ride
// cancelled scoped by both ride and passenger id. Any failing step rolls the
// whole transaction back.
func (s *PGStore) CancelRide(ctx context.Context, rideID int64, cancelledBy string) (Cancellation, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Cancellation{}, err
	}
	defer tx.Rollback(ctx)

	c := Cancellation{RideID: rideID, CancelledBy: cancelledBy}
	row := tx.QueryRow(ctx, `
		SELECT passenger_id, vehicle_id
		FROM rides
		WHERE ride_id = $1`,
		rideID,
	)
	err = row.Scan(&c.PassengerID, &c.VehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cancellation{}, ErrNotFound
	}
	if err != nil {
		return Cancellation{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ride_cancellations (ride_id, canceled_by, passenger_id, vehicle_id)
		VALUES ($1, $2, $3, $4)`,
		c.RideID, c.CancelledBy, c.PassengerID, c.VehicleID,
	)
	if err != nil {
		return Cancellation{}, err
	}

	// The passenger scope defends against cancelling someone else's ride
	// through a concurrently reassigned row.
	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET status = 'cancelled'
		WHERE ride_id = $1 AND passenger_id = $2`,
		c.RideID, c.PassengerID,
	)
	if err != nil {
		return Cancellation{}, err
	}
	if tag.RowsAffected() == 0 {
		return Cancellation{}, ErrNotFound
	}

	return c, tx.Commit(ctx)
}

func (s *PGStore) SetStatus(ctx context.Context, rideID int64, status Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $2
		WHERE ride_id = $1`,
		rideID, string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseVehicle adds the ride's seats back to the vehicle's remaining
// capacity and, when flipStatus is set, marks the vehicle Available again.
func (s *PGStore) ReleaseVehicle(ctx context.Context, licensePlate string, rideID int64, flipStatus bool) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var remaining, seats int
	row := tx.QueryRow(ctx, `
		SELECT v.remaining_capacity, r.seats
		FROM vehicles v
		JOIN rides r ON v.vehicle_id = r.vehicle_id
		WHERE v.license_plate = $1 AND r.ride_id = $2`,
		licensePlate, rideID,
	)
	err = row.Scan(&remaining, &seats)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	q := `
		UPDATE vehicles v
		SET remaining_capacity = LEAST(v.capacity, v.remaining_capacity + r.seats)
		FROM rides r
		WHERE v.vehicle_id = r.vehicle_id
		  AND v.license_plate = $1 AND r.ride_id = $2`
	if flipStatus {
		q = `
		UPDATE vehicles v
		SET status = 'Available',
		    remaining_capacity = LEAST(v.capacity, v.remaining_capacity + r.seats)
		FROM rides r
		WHERE v.vehicle_id = r.vehicle_id
		  AND v.license_plate = $1 AND r.ride_id = $2`
	}
	tag, err := tx.Exec(ctx, q, licensePlate, rideID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// ReleaseBus completes every ride attached to the bus at end of route: seats
// are summed and restored in one update, the rides are marked Completed, and
// the bus goes back to Available.
func (s *PGStore) ReleaseBus(ctx context.Context, licensePlate string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var vehicleID int64
	var remaining, totalSeats int
	row := tx.QueryRow(ctx, `
		SELECT v.vehicle_id, v.remaining_capacity, COALESCE(SUM(r.seats), 0)
		FROM vehicles v
		JOIN rides r ON v.vehicle_id = r.vehicle_id
		WHERE v.license_plate = $1
		GROUP BY v.vehicle_id, v.remaining_capacity`,
		licensePlate,
	)
	err = row.Scan(&vehicleID, &remaining, &totalSeats)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE vehicles
		SET remaining_capacity = LEAST(capacity, $2),
		    status = 'Available'
		WHERE vehicle_id = $1`,
		vehicleID, remaining+totalSeats,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE rides
		SET status = 'Completed'
		WHERE vehicle_id = $1 AND status <> 'cancelled'`,
		vehicleID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CompleteForVehicle marks every non-cancelled ride on the vehicle as
// Completed and returns the vehicle to Available. Capacity is untouched;
// callers that need the seats back use ReleaseVehicle or ReleaseBus.
func (s *PGStore) CompleteForVehicle(ctx context.Context, licensePlate string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var vehicleID int64
	err = tx.QueryRow(ctx, `
		SELECT vehicle_id FROM vehicles WHERE license_plate = $1`,
		licensePlate,
	).Scan(&vehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE rides
		SET status = 'Completed'
		WHERE vehicle_id = $1 AND status <> 'cancelled'`,
		vehicleID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE vehicles
		SET status = 'Available'
		WHERE vehicle_id = $1`,
		vehicleID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
