// README: Vehicle store backed by PostgreSQL.
package vehicle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence boundary the service depends on; *PGStore is the
// production implementation, tests substitute an in-memory fake.
type Store interface {
	FindAvailableInBox(ctx context.Context, typeName string, minLat, maxLat, minLng, maxLng float64) ([]Candidate, error)
	FindAvailableByType(ctx context.Context, typeName string) ([]Candidate, error)
	FindByFilters(ctx context.Context, typeName string, status string) ([]Vehicle, error)
	RegisterVehicle(ctx context.Context, r Registration) (int64, error)
	VehicleTypes(ctx context.Context) ([]VehicleType, error)
	UpdateCapacity(ctx context.Context, vehicleID int64, remaining int) error
	UpdateLocation(ctx context.Context, licensePlate string, lat, lng float64) (int64, error)
	Deactivate(ctx context.Context, vehicleID int64) error
	Snapshot(ctx context.Context) ([]Vehicle, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const candidateColumns = `
	v.vehicle_id, v.license_plate, vt.type_name, v.capacity, v.remaining_capacity,
	v.gps_latitude, v.gps_longitude, v.status, v.driver_id,
	f.base_fare, f.per_km_rate, f.min_fare, f.peak_time_multiplier`

func (s *PGStore) FindAvailableInBox(ctx context.Context, typeName string, minLat, maxLat, minLng, maxLng float64) ([]Candidate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+candidateColumns+`
		FROM vehicles v
		JOIN vehicle_types vt ON v.vehicle_type_id = vt.vehicle_type_id
		JOIN fares f ON vt.vehicle_type_id = f.vehicle_type_id
		WHERE vt.type_name = $1
		  AND v.gps_latitude BETWEEN $2 AND $3
		  AND v.gps_longitude BETWEEN $4 AND $5
		  AND v.status = 'Available'`,
		typeName, minLat, maxLat, minLng, maxLng,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func (s *PGStore) FindAvailableByType(ctx context.Context, typeName string) ([]Candidate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+candidateColumns+`
		FROM vehicles v
		JOIN vehicle_types vt ON v.vehicle_type_id = vt.vehicle_type_id
		JOIN fares f ON vt.vehicle_type_id = f.vehicle_type_id
		WHERE vt.type_name = $1
		  AND v.status = 'Available'`,
		typeName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func scanCandidates(rows pgx.Rows) ([]Candidate, error) {
	var out []Candidate
	for rows.Next() {
		var c Candidate
		err := rows.Scan(
			&c.ID, &c.LicensePlate, &c.TypeName, &c.Capacity, &c.RemainingCapacity,
			&c.Position.Lat, &c.Position.Lng, &c.Status, &c.DriverID,
			&c.BaseFare, &c.PerKmRate, &c.MinFare, &c.PeakMultiplier,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateCapacity(ctx context.Context, vehicleID int64, remaining int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET remaining_capacity = $2
		WHERE vehicle_id = $1 AND $2 <= capacity`,
		vehicleID, remaining,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either the vehicle is missing or the requested
		// value exceeds its maximum capacity; the caller must be able to
		// tell the two apart.
		var exists bool
		if err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM vehicles WHERE vehicle_id = $1)`,
			vehicleID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrBadRequest
		}
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateLocation(ctx context.Context, licensePlate string, lat, lng float64) (int64, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE vehicles
		SET gps_latitude = $2, gps_longitude = $3
		WHERE license_plate = $1
		RETURNING vehicle_id`,
		licensePlate, lat, lng,
	)
	var id int64
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PGStore) Deactivate(ctx context.Context, vehicleID int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET status = 'Inactive'
		WHERE vehicle_id = $1`,
		vehicleID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Snapshot(ctx context.Context) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT v.vehicle_id, v.license_plate, vt.type_name, v.capacity, v.remaining_capacity,
		       v.gps_latitude, v.gps_longitude, v.status, v.driver_id
		FROM vehicles v
		JOIN vehicle_types vt ON v.vehicle_type_id = vt.vehicle_type_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		err := rows.Scan(
			&v.ID, &v.LicensePlate, &v.TypeName, &v.Capacity, &v.RemainingCapacity,
			&v.Position.Lat, &v.Position.Lng, &v.Status, &v.DriverID,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PGStore) FindByFilters(ctx context.Context, typeName, status string) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT v.vehicle_id, v.license_plate, vt.type_name, v.capacity, v.remaining_capacity,
		       v.gps_latitude, v.gps_longitude, v.status, v.driver_id
		FROM vehicles v
		JOIN vehicle_types vt ON v.vehicle_type_id = vt.vehicle_type_id
		WHERE (vt.type_name = $1 OR $1 = 'All')
		  AND (v.status = $2 OR $2 = 'All')
		  AND v.status <> 'Inactive'`,
		typeName, status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		err := rows.Scan(
			&v.ID, &v.LicensePlate, &v.TypeName, &v.Capacity, &v.RemainingCapacity,
			&v.Position.Lat, &v.Position.Lng, &v.Status, &v.DriverID,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RegisterVehicle resolves the type's capacity and inserts the vehicle in
// one transaction. An unknown type id is a bad request; a duplicate plate
// is a conflict.
func (s *PGStore) RegisterVehicle(ctx context.Context, r Registration) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var capacity int
	err = tx.QueryRow(ctx, `
		SELECT capacity FROM vehicle_types WHERE vehicle_type_id = $1`,
		r.VehicleTypeID,
	).Scan(&capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrBadRequest
	}
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO vehicles (license_plate, vehicle_type_id, status, gps_latitude, gps_longitude,
			capacity, remaining_capacity, city, driver_id)
		VALUES ($1, $2, 'Available', $3, $4, $5, $5, $6, $7)
		RETURNING vehicle_id`,
		r.LicensePlate, r.VehicleTypeID, r.Position.Lat, r.Position.Lng,
		capacity, r.City, r.DriverID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrConflict
		}
		return 0, err
	}
	return id, tx.Commit(ctx)
}

func (s *PGStore) VehicleTypes(ctx context.Context) ([]VehicleType, error) {
	rows, err := s.db.Query(ctx, `
		SELECT vehicle_type_id, type_name, capacity FROM vehicle_types`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VehicleType
	for rows.Next() {
		var t VehicleType
		if err := rows.Scan(&t.ID, &t.TypeName, &t.Capacity); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
