// README: Platform counters for the admin dashboard.
package support

import (
	"context"
	"fmt"
	"log/slog"
)

type StatsService struct {
	store Store
	log   *slog.Logger
}

func NewStatsService(store Store, log *slog.Logger) *StatsService {
	return &StatsService{store: store, log: log}
}

func (s *StatsService) CityCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "city count", s.store.CityCount)
}

func (s *StatsService) PassengerCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "passenger count", s.store.PassengerCount)
}

// VehicleCount excludes retired vehicles.
func (s *StatsService) VehicleCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "vehicle count", s.store.VehicleCount)
}

func (s *StatsService) DriverCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "driver count", s.store.DriverCount)
}

func (s *StatsService) DriverStats(ctx context.Context, driverID int64) (DriverStats, error) {
	if driverID <= 0 {
		return DriverStats{}, fmt.Errorf("%w: driver id is required", ErrBadRequest)
	}
	st, err := s.store.DriverStats(ctx, driverID)
	if err != nil {
		s.log.Error("driver stats failed", "driver_id", driverID, "err", err)
		return DriverStats{}, ErrUnavailable
	}
	return st, nil
}

func (s *StatsService) count(ctx context.Context, what string, query func(context.Context) (int64, error)) (int64, error) {
	n, err := query(ctx)
	if err != nil {
		s.log.Error("stats query failed", "what", what, "err", err)
		return 0, ErrUnavailable
	}
	return n, nil
}
