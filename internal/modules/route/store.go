// README: Route reference store backed by PostgreSQL (read-mostly).
package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SabaShahdin/ms/internal/types"
)

// Store exposes the reference-data reads the HTTP layer needs. Services and
// handler tests swap in their own implementations.
type Store interface {
	StopsForVehicle(ctx context.Context, vehicleID int64) ([]Stop, error)
	StopsForRoute(ctx context.Context, routeID int64) ([]Stop, error)
	AreaNames(ctx context.Context) ([]string, error)
	AreaPosition(ctx context.Context, areaName string) (types.Point, error)
	Cities(ctx context.Context) ([]string, error)
	IntercityBuses(ctx context.Context, departureCity, destinationCity string) ([]IntercityBus, error)
	CreateBusRoute(ctx context.Context, reg BusRouteRegistration) (routeID int64, skipped []string, err error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) StopsForVehicle(ctx context.Context, vehicleID int64) ([]Stop, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rs.stop_id, rs.stop_order, r.route_name, r.distance, r.duration,
		       a.latitude, a.longitude, a.area_name
		FROM route_stops rs
		JOIN bus_schedules bs ON rs.stop_id = bs.stop_id AND rs.route_id = bs.route_id
		JOIN routes r ON rs.route_id = r.route_id
		JOIN areas a ON rs.stop_id = a.area_id
		WHERE bs.vehicle_id = $1
		ORDER BY rs.stop_order`,
		vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query stops for vehicle %d: %w", vehicleID, err)
	}
	defer rows.Close()
	return scanStops(rows)
}

func (s *PGStore) StopsForRoute(ctx context.Context, routeID int64) ([]Stop, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rs.stop_id, rs.stop_order, r.route_name, r.distance, r.duration,
		       a.latitude, a.longitude, a.area_name
		FROM routes r
		JOIN route_stops rs ON r.route_id = rs.route_id
		JOIN areas a ON rs.stop_id = a.area_id
		WHERE r.route_id = $1
		ORDER BY rs.stop_order`,
		routeID)
	if err != nil {
		return nil, fmt.Errorf("query stops for route %d: %w", routeID, err)
	}
	defer rows.Close()
	return scanStops(rows)
}

func (s *PGStore) AreaNames(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT area_name FROM areas`)
}

func (s *PGStore) AreaPosition(ctx context.Context, areaName string) (types.Point, error) {
	var p types.Point
	err := s.db.QueryRow(ctx, `
		SELECT latitude, longitude FROM areas WHERE area_name = $1`,
		areaName,
	).Scan(&p.Lat, &p.Lng)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Point{}, ErrNotFound
	}
	if err != nil {
		return types.Point{}, fmt.Errorf("query area %q: %w", areaName, err)
	}
	return p, nil
}

func (s *PGStore) Cities(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT DISTINCT city FROM areas`)
}

func (s *PGStore) IntercityBuses(ctx context.Context, departureCity, destinationCity string) ([]IntercityBus, error) {
	rows, err := s.db.Query(ctx, `
		SELECT v.vehicle_id, v.license_plate, v.status,
		       r.route_id, r.route_name, v.remaining_capacity,
		       ics.departure_time, ics.arrival_time, ics.fare, ics.distance
		FROM intercity_schedules ics
		JOIN routes r ON ics.route_id = r.route_id
		JOIN vehicles v ON ics.vehicle_id = v.vehicle_id
		WHERE r.origin_city = $1 AND r.destination_city = $2`,
		departureCity, destinationCity)
	if err != nil {
		return nil, fmt.Errorf("query intercity buses %s -> %s: %w", departureCity, destinationCity, err)
	}
	defer rows.Close()

	var buses []IntercityBus
	for rows.Next() {
		var b IntercityBus
		if err := rows.Scan(&b.VehicleID, &b.LicensePlate, &b.Status,
			&b.RouteID, &b.RouteName, &b.RemainingCapacity,
			&b.DepartureTime, &b.ArrivalTime, &b.Fare, &b.DistanceKm); err != nil {
			return nil, fmt.Errorf("scan intercity bus: %w", err)
		}
		buses = append(buses, b)
	}
	return buses, rows.Err()
}

// CreateBusRoute inserts the route, its ordered stops, and the bus schedule
// binding in one transaction. Stop names with no matching area are skipped
// and reported back rather than failing the whole registration.
func (s *PGStore) CreateBusRoute(ctx context.Context, reg BusRouteRegistration) (int64, []string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	var routeID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO routes (route_name, distance, duration, origin_city, destination_city)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING route_id`,
		reg.RouteName, reg.DistanceKm, reg.Duration, reg.OriginCity, reg.DestinationCity,
	).Scan(&routeID)
	if err != nil {
		return 0, nil, fmt.Errorf("insert route %q: %w", reg.RouteName, err)
	}

	var skipped []string
	order := 0
	for _, name := range reg.Stops {
		var areaID int64
		err := tx.QueryRow(ctx, `
			SELECT area_id FROM areas WHERE area_name = $1`,
			name,
		).Scan(&areaID)
		if errors.Is(err, pgx.ErrNoRows) {
			skipped = append(skipped, name)
			continue
		}
		if err != nil {
			return 0, nil, fmt.Errorf("resolve stop %q: %w", name, err)
		}

		order++
		_, err = tx.Exec(ctx, `
			INSERT INTO route_stops (route_id, stop_id, stop_order)
			VALUES ($1, $2, $3)`,
			routeID, areaID, order,
		)
		if err != nil {
			return 0, nil, fmt.Errorf("insert stop %q: %w", name, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO bus_schedules (route_id, stop_id, vehicle_id, stop_order)
			VALUES ($1, $2, $3, $4)`,
			routeID, areaID, reg.VehicleID, order,
		)
		if err != nil {
			return 0, nil, fmt.Errorf("schedule stop %q: %w", name, err)
		}
	}

	// A route with zero resolvable stops must not survive; the deferred
	// rollback discards the route row.
	if order == 0 {
		return 0, skipped, ErrBadRequest
	}

	return routeID, skipped, tx.Commit(ctx)
}

func (s *PGStore) queryStrings(ctx context.Context, sql string) ([]string, error) {
	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type stopRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStops(rows stopRows) ([]Stop, error) {
	var stops []Stop
	for rows.Next() {
		var st Stop
		if err := rows.Scan(&st.StopID, &st.StopOrder, &st.RouteName, &st.DistanceKm,
			&st.Duration, &st.Lat, &st.Lng, &st.AreaName); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}
