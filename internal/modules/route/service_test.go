package route

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SabaShahdin/ms/internal/types"
)

type fakeStore struct {
	stopsByVehicle map[int64][]Stop
	stopsByRoute   map[int64][]Stop
	areas          []string
	areaPositions  map[string]types.Point
	cities         []string
	buses          []IntercityBus
	registered     []BusRouteRegistration
	fail           bool
}

var errBoom = errors.New("boom")

func (f *fakeStore) StopsForVehicle(_ context.Context, vehicleID int64) ([]Stop, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.stopsByVehicle[vehicleID], nil
}

func (f *fakeStore) StopsForRoute(_ context.Context, routeID int64) ([]Stop, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.stopsByRoute[routeID], nil
}

func (f *fakeStore) AreaNames(_ context.Context) ([]string, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.areas, nil
}

func (f *fakeStore) Cities(_ context.Context) ([]string, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.cities, nil
}

func (f *fakeStore) AreaPosition(_ context.Context, name string) (types.Point, error) {
	if f.fail {
		return types.Point{}, errBoom
	}
	p, ok := f.areaPositions[name]
	if !ok {
		return types.Point{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) IntercityBuses(_ context.Context, _, _ string) ([]IntercityBus, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.buses, nil
}

func (f *fakeStore) CreateBusRoute(_ context.Context, reg BusRouteRegistration) (int64, []string, error) {
	if f.fail {
		return 0, nil, errBoom
	}
	var skipped []string
	resolved := 0
	for _, name := range reg.Stops {
		if _, ok := f.areaPositions[name]; ok {
			resolved++
		} else {
			skipped = append(skipped, name)
		}
	}
	if resolved == 0 {
		return 0, skipped, ErrBadRequest
	}
	f.registered = append(f.registered, reg)
	return int64(len(f.registered)), skipped, nil
}

func newSvc(f *fakeStore) *Service {
	return NewService(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStopsForVehicle(t *testing.T) {
	svc := newSvc(&fakeStore{stopsByVehicle: map[int64][]Stop{
		7: {
			{StopID: 1, StopOrder: 1, AreaName: "Gulberg"},
			{StopID: 2, StopOrder: 2, AreaName: "Model Town"},
		},
	}})

	stops, err := svc.StopsForVehicle(context.Background(), 7)
	if err != nil {
		t.Fatalf("stops: %v", err)
	}
	if len(stops) != 2 || stops[0].AreaName != "Gulberg" || stops[1].StopOrder != 2 {
		t.Errorf("unexpected stops: %+v", stops)
	}

	if _, err := svc.StopsForVehicle(context.Background(), 8); !errors.Is(err, ErrNotFound) {
		t.Errorf("vehicle without schedule: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.StopsForVehicle(context.Background(), 0); !errors.Is(err, ErrBadRequest) {
		t.Errorf("zero vehicle id: expected ErrBadRequest, got %v", err)
	}
}

func TestStopsForRoute(t *testing.T) {
	svc := newSvc(&fakeStore{stopsByRoute: map[int64][]Stop{
		3: {{StopID: 9, StopOrder: 1, RouteName: "Blue Line"}},
	}})

	stops, err := svc.StopsForRoute(context.Background(), 3)
	if err != nil {
		t.Fatalf("route detail: %v", err)
	}
	if len(stops) != 1 || stops[0].RouteName != "Blue Line" {
		t.Errorf("unexpected stops: %+v", stops)
	}
	if _, err := svc.StopsForRoute(context.Background(), -1); !errors.Is(err, ErrBadRequest) {
		t.Errorf("negative route id: expected ErrBadRequest, got %v", err)
	}
}

func TestAreasAndCities(t *testing.T) {
	svc := newSvc(&fakeStore{
		areas:  []string{"Gulberg", "Johar Town"},
		cities: []string{"Lahore", "Karachi"},
	})

	areas, err := svc.Areas(context.Background())
	if err != nil || len(areas) != 2 {
		t.Fatalf("areas = %v, err = %v", areas, err)
	}
	cities, err := svc.Cities(context.Background())
	if err != nil || len(cities) != 2 {
		t.Fatalf("cities = %v, err = %v", cities, err)
	}
}

func TestIntercityBuses(t *testing.T) {
	svc := newSvc(&fakeStore{buses: []IntercityBus{{VehicleID: 4, RouteName: "LHR-ISB"}}})

	buses, err := svc.IntercityBuses(context.Background(), "Lahore", "Islamabad")
	if err != nil || len(buses) != 1 {
		t.Fatalf("buses = %v, err = %v", buses, err)
	}
	if _, err := svc.IntercityBuses(context.Background(), "Lahore", ""); !errors.Is(err, ErrBadRequest) {
		t.Errorf("missing destination: expected ErrBadRequest, got %v", err)
	}
}

func TestAreaPosition(t *testing.T) {
	svc := newSvc(&fakeStore{areaPositions: map[string]types.Point{
		"Gulberg": {Lat: 31.52, Lng: 74.35},
	}})

	p, err := svc.AreaPosition(context.Background(), "Gulberg")
	if err != nil {
		t.Fatalf("area position: %v", err)
	}
	if p.Lat != 31.52 || p.Lng != 74.35 {
		t.Errorf("position = %+v", p)
	}
	if _, err := svc.AreaPosition(context.Background(), "Atlantis"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown area: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AreaPosition(context.Background(), ""); !errors.Is(err, ErrBadRequest) {
		t.Errorf("empty name: expected ErrBadRequest, got %v", err)
	}
}

func validBusRoute() BusRouteRegistration {
	return BusRouteRegistration{
		RouteName: "Blue Line", OriginCity: "Lahore", DestinationCity: "Lahore",
		DistanceKm: 18, Duration: "55 min",
		Stops:     []string{"Gulberg", "Model Town"},
		VehicleID: 12,
	}
}

func TestRegisterBusRoute(t *testing.T) {
	st := &fakeStore{areaPositions: map[string]types.Point{
		"Gulberg":    {Lat: 31.52, Lng: 74.35},
		"Model Town": {Lat: 31.48, Lng: 74.32},
	}}
	svc := newSvc(st)

	id, err := svc.RegisterBusRoute(context.Background(), validBusRoute())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 || len(st.registered) != 1 {
		t.Fatalf("route not stored: id=%d registered=%d", id, len(st.registered))
	}

	// A stop without an area row is skipped, not fatal.
	withUnknown := validBusRoute()
	withUnknown.Stops = append(withUnknown.Stops, "Atlantis")
	if _, err := svc.RegisterBusRoute(context.Background(), withUnknown); err != nil {
		t.Errorf("partial stop match: %v", err)
	}

	// No resolvable stop at all must not create the route.
	allUnknown := validBusRoute()
	allUnknown.Stops = []string{"Atlantis", "El Dorado"}
	before := len(st.registered)
	if _, err := svc.RegisterBusRoute(context.Background(), allUnknown); !errors.Is(err, ErrBadRequest) {
		t.Errorf("no known stops: expected ErrBadRequest, got %v", err)
	}
	if len(st.registered) != before {
		t.Errorf("route with no known stops was stored")
	}
}

func TestRegisterBusRouteValidation(t *testing.T) {
	svc := newSvc(&fakeStore{})
	cases := []struct {
		name   string
		mutate func(*BusRouteRegistration)
	}{
		{"missing route name", func(r *BusRouteRegistration) { r.RouteName = "" }},
		{"missing origin", func(r *BusRouteRegistration) { r.OriginCity = "" }},
		{"zero distance", func(r *BusRouteRegistration) { r.DistanceKm = 0 }},
		{"no stops", func(r *BusRouteRegistration) { r.Stops = nil }},
		{"missing vehicle", func(r *BusRouteRegistration) { r.VehicleID = 0 }},
	}
	for _, tc := range cases {
		reg := validBusRoute()
		tc.mutate(&reg)
		if _, err := svc.RegisterBusRoute(context.Background(), reg); !errors.Is(err, ErrBadRequest) {
			t.Errorf("%s: expected ErrBadRequest, got %v", tc.name, err)
		}
	}
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	svc := newSvc(&fakeStore{fail: true})

	if _, err := svc.StopsForVehicle(context.Background(), 7); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.Areas(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
