// README: Support store backed by PostgreSQL (accounts, drivers, counters).
package support

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store covers account and reporting reads/writes. The auth and stats
// services program against it so tests can substitute in-memory versions.
type Store interface {
	CreateUser(ctx context.Context, u User) (int64, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	CreateDriver(ctx context.Context, u User, licenseNumber string) (int64, error)
	SetDriverStatus(ctx context.Context, driverID int64, status string) error
	PendingDrivers(ctx context.Context) ([]PendingDriver, error)

	CreateContactMessage(ctx context.Context, m ContactMessage) error

	CityCount(ctx context.Context) (int64, error)
	PassengerCount(ctx context.Context) (int64, error)
	VehicleCount(ctx context.Context) (int64, error)
	DriverCount(ctx context.Context) (int64, error)
	DriverStats(ctx context.Context, driverID int64) (DriverStats, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateUser(ctx context.Context, u User) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, password, role, email, contact_number, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING user_id`,
		u.Username, u.PasswordHash, u.Role, u.Email, u.ContactNumber).Scan(&id)
	if err != nil {
		return 0, mapInsertErr(err)
	}
	return id, nil
}

func (s *PGStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT user_id, username, email, role, COALESCE(contact_number, ''), password
		FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.ContactNumber, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// CreateDriver writes the account row and the driver row in one transaction.
// New drivers start in 'pending' until an admin approves them.
func (s *PGStore) CreateDriver(ctx context.Context, u User, licenseNumber string) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin driver registration: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, password, role, email, contact_number, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING user_id`,
		u.Username, u.PasswordHash, RoleDriver, u.Email, u.ContactNumber).Scan(&userID)
	if err != nil {
		return 0, mapInsertErr(err)
	}

	var driverID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO drivers (user_id, license_number, registration_status)
		VALUES ($1, $2, 'pending')
		RETURNING driver_id`,
		userID, licenseNumber).Scan(&driverID)
	if err != nil {
		return 0, fmt.Errorf("insert driver: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit driver registration: %w", err)
	}
	return driverID, nil
}

func (s *PGStore) SetDriverStatus(ctx context.Context, driverID int64, status string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE drivers SET registration_status = $2 WHERE driver_id = $1`,
		driverID, status)
	if err != nil {
		return fmt.Errorf("set driver status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) PendingDrivers(ctx context.Context) ([]PendingDriver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.driver_id, u.username, u.email, COALESCE(u.contact_number, ''), d.license_number
		FROM drivers d
		JOIN users u ON d.user_id = u.user_id
		WHERE d.registration_status = 'pending'`)
	if err != nil {
		return nil, fmt.Errorf("query pending drivers: %w", err)
	}
	defer rows.Close()

	var pending []PendingDriver
	for rows.Next() {
		var p PendingDriver
		if err := rows.Scan(&p.DriverID, &p.Name, &p.Email, &p.ContactNumber, &p.LicenseNumber); err != nil {
			return nil, fmt.Errorf("scan pending driver: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (s *PGStore) CreateContactMessage(ctx context.Context, m ContactMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO contact_us_submissions (name, email, phone, message)
		VALUES ($1, $2, $3, $4)`,
		m.Name, m.Email, m.Phone, m.Message,
	)
	return err
}

func (s *PGStore) CityCount(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT city) FROM areas`)
}

func (s *PGStore) PassengerCount(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(passenger_id) FROM passengers`)
}

func (s *PGStore) VehicleCount(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(vehicle_id) FROM vehicles WHERE status <> 'Inactive'`)
}

func (s *PGStore) DriverCount(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(driver_id) FROM drivers`)
}

func (s *PGStore) DriverStats(ctx context.Context, driverID int64) (DriverStats, error) {
	var st DriverStats
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT r.passenger_id),
		       COUNT(DISTINCT r.ride_id),
		       COUNT(DISTINCT r.ride_id) FILTER (WHERE r.status = 'pending'),
		       COALESCE(SUM(r.fare), 0)
		FROM rides r
		JOIN vehicles v ON r.vehicle_id = v.vehicle_id
		WHERE v.driver_id = $1`,
		driverID).Scan(&st.PassengerCount, &st.RideCount, &st.PendingRides, &st.FareTotal)
	if err != nil {
		return DriverStats{}, fmt.Errorf("driver stats: %w", err)
	}
	return st, nil
}

func (s *PGStore) count(ctx context.Context, sql string) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return fmt.Errorf("insert user: %w", err)
}
