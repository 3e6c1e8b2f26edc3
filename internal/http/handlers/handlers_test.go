package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/http/handlers"
	"github.com/SabaShahdin/ms/internal/modules/ride"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
	"github.com/SabaShahdin/ms/internal/types"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRideStore struct {
	conflict bool
	rideID   int64
}

func (f *fakeRideStore) CreateBooking(_ context.Context, _ ride.Booking, _ bool) (int64, int64, error) {
	if f.conflict {
		return 0, 0, ride.ErrConflict
	}
	return f.rideID, 900, nil
}

func (f *fakeRideStore) CancelRide(_ context.Context, rideID int64, cancelledBy string) (ride.Cancellation, error) {
	if rideID != f.rideID {
		return ride.Cancellation{}, ride.ErrNotFound
	}
	return ride.Cancellation{RideID: rideID, CancelledBy: cancelledBy}, nil
}

func (f *fakeRideStore) SetStatus(context.Context, int64, ride.Status) error { return nil }
func (f *fakeRideStore) ReleaseVehicle(context.Context, string, int64, bool) error {
	return nil
}
func (f *fakeRideStore) ReleaseBus(context.Context, string) error { return nil }

func (f *fakeRideStore) CompleteForVehicle(context.Context, string) error { return nil }

type fakeVehicleStore struct {
	candidates []vehicle.Candidate
}

func (f *fakeVehicleStore) FindAvailableInBox(_ context.Context, _ string, _, _, _, _ float64) ([]vehicle.Candidate, error) {
	out := make([]vehicle.Candidate, len(f.candidates))
	copy(out, f.candidates)
	return out, nil
}

func (f *fakeVehicleStore) FindAvailableByType(context.Context, string) ([]vehicle.Candidate, error) {
	out := make([]vehicle.Candidate, len(f.candidates))
	copy(out, f.candidates)
	return out, nil
}

func (f *fakeVehicleStore) FindByFilters(context.Context, string, string) ([]vehicle.Vehicle, error) {
	return nil, nil
}

func (f *fakeVehicleStore) RegisterVehicle(context.Context, vehicle.Registration) (int64, error) {
	return 1, nil
}

func (f *fakeVehicleStore) VehicleTypes(context.Context) ([]vehicle.VehicleType, error) {
	return nil, nil
}

func (f *fakeVehicleStore) UpdateCapacity(context.Context, int64, int) error { return nil }
func (f *fakeVehicleStore) UpdateLocation(context.Context, string, float64, float64) (int64, error) {
	return 1, nil
}
func (f *fakeVehicleStore) Deactivate(context.Context, int64) error { return nil }
func (f *fakeVehicleStore) Snapshot(context.Context) ([]vehicle.Vehicle, error) {
	return nil, nil
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bookingRouter(store ride.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rides := ride.NewService(store, nil, discard())
	h := handlers.NewBookingHandler(rides, nil)
	r := gin.New()
	r.POST("/book/api/book-ride", h.BookRide)
	return r
}

func fullBooking() map[string]any {
	return map[string]any{
		"passenger_id": 42, "vehicle_id": 1,
		"pickup_latitude": 31.52, "pickup_longitude": 74.35,
		"dropoff_latitude": 31.55, "dropoff_longitude": 74.34,
		"ride_type": "on-demand", "booking_time": "2024-11-02 09:30:00",
		"fare": 58, "scheduled_time": "2024-11-02 09:45:00",
		"seats": 2, "paymentMethod": "cash",
	}
}

func TestBookRideCreated(t *testing.T) {
	r := bookingRouter(&fakeRideStore{rideID: 301})

	w := doJSON(r, http.MethodPost, "/book/api/book-ride", fullBooking())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		RideID      int64 `json:"rideId"`
		PassengerID int64 `json:"passengerId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RideID != 301 || resp.PassengerID != 900 {
		t.Errorf("response = %+v", resp)
	}
}

func TestBookRideMissingFields(t *testing.T) {
	r := bookingRouter(&fakeRideStore{rideID: 301})

	body := fullBooking()
	delete(body, "paymentMethod")
	w := doJSON(r, http.MethodPost, "/book/api/book-ride", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBookRideCapacityConflict(t *testing.T) {
	r := bookingRouter(&fakeRideStore{conflict: true})

	w := doJSON(r, http.MethodPost, "/book/api/book-ride", fullBooking())
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func locatorRouter(store vehicle.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	vehicles := vehicle.NewService(store, nil, nil, discard())
	h := handlers.NewLocatorHandler(vehicles, nil)
	r := gin.New()
	r.GET("/ride/api/vehicles", h.Search)
	return r
}

func candidate(id int64, lat, lng float64) vehicle.Candidate {
	return vehicle.Candidate{
		Vehicle: vehicle.Vehicle{
			ID: id, LicensePlate: "LEA-111", TypeName: "Car",
			Position: types.Point{Lat: lat, Lng: lng},
			Status:   vehicle.StatusAvailable,
		},
		BaseFare: 50, PerKmRate: 1.5, PeakMultiplier: 1,
	}
}

func TestSearchFormatsDistanceAndFare(t *testing.T) {
	near := candidate(1, 31.5210, 74.3590)
	far := candidate(2, 31.5280, 74.3660)
	unpriceable := candidate(3, 31.5215, 74.3595)
	unpriceable.BaseFare = math.Inf(1)

	r := locatorRouter(&fakeVehicleStore{candidates: []vehicle.Candidate{far, unpriceable, near}})

	w := doJSON(r, http.MethodGet, "/ride/api/vehicles?start=31.5204,74.3587&end=31.5497,74.3436&type=Car", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var views []struct {
		VehicleID int64  `json:"vehicle_id"`
		Distance  string `json:"distance"`
		Fare      string `json:"fare"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d vehicles", len(views))
	}
	if views[0].VehicleID != 1 {
		t.Errorf("nearest first: got vehicle %d", views[0].VehicleID)
	}
	for _, v := range views {
		if len(v.Distance) < 4 || v.Distance[len(v.Distance)-3] != '.' {
			t.Errorf("distance %q is not two-decimal formatted", v.Distance)
		}
	}
	for _, v := range views {
		if v.VehicleID == 3 {
			if v.Fare != "N/A" {
				t.Errorf("uncomputable fare = %q, want N/A", v.Fare)
			}
		} else if v.Fare == "N/A" || v.Fare == "" {
			t.Errorf("vehicle %d fare = %q", v.VehicleID, v.Fare)
		}
	}
}

func TestSearchBadStart(t *testing.T) {
	r := locatorRouter(&fakeVehicleStore{})
	w := doJSON(r, http.MethodGet, "/ride/api/vehicles?start=notapoint&end=31.5,74.3&type=Car", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSearchNoMatches(t *testing.T) {
	r := locatorRouter(&fakeVehicleStore{})
	w := doJSON(r, http.MethodGet, "/ride/api/vehicles?start=31.5,74.3&end=31.6,74.4&type=Car", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
