package support

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type fakeAccounts struct {
	nextUserID   int64
	nextDriverID int64
	usersByEmail map[string]User
	drivers      map[int64]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		nextUserID:   10,
		nextDriverID: 40,
		usersByEmail: map[string]User{},
		drivers:      map[int64]string{},
	}
}

func (f *fakeAccounts) CreateUser(_ context.Context, u User) (int64, error) {
	if _, exists := f.usersByEmail[u.Email]; exists {
		return 0, ErrConflict
	}
	f.nextUserID++
	u.ID = f.nextUserID
	f.usersByEmail[u.Email] = u
	return u.ID, nil
}

func (f *fakeAccounts) FindUserByEmail(_ context.Context, email string) (User, error) {
	u, ok := f.usersByEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeAccounts) CreateDriver(ctx context.Context, u User, _ string) (int64, error) {
	u.Role = RoleDriver
	if _, err := f.CreateUser(ctx, u); err != nil {
		return 0, err
	}
	f.nextDriverID++
	f.drivers[f.nextDriverID] = "pending"
	return f.nextDriverID, nil
}

func (f *fakeAccounts) SetDriverStatus(_ context.Context, driverID int64, status string) error {
	if _, ok := f.drivers[driverID]; !ok {
		return ErrNotFound
	}
	f.drivers[driverID] = status
	return nil
}

func (f *fakeAccounts) PendingDrivers(_ context.Context) ([]PendingDriver, error) {
	var out []PendingDriver
	for id, status := range f.drivers {
		if status == "pending" {
			out = append(out, PendingDriver{DriverID: id})
		}
	}
	return out, nil
}

func (f *fakeAccounts) CityCount(context.Context) (int64, error)      { return 0, nil }
func (f *fakeAccounts) PassengerCount(context.Context) (int64, error) { return 0, nil }
func (f *fakeAccounts) VehicleCount(context.Context) (int64, error)   { return 0, nil }
func (f *fakeAccounts) DriverCount(context.Context) (int64, error)    { return 0, nil }
func (f *fakeAccounts) DriverStats(context.Context, int64) (DriverStats, error) {
	return DriverStats{}, nil
}
func (f *fakeAccounts) CreateContactMessage(context.Context, ContactMessage) error { return nil }

func newAuth(store Store) *AuthService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(store, "test-secret", 24*time.Hour, log)
}

func TestSignupRoleAssignment(t *testing.T) {
	cases := []struct {
		email, requested, want string
	}{
		{"ali@example.com", "", RolePassenger},
		{"sara@example.com", RoleDriver, RoleDriver},
		{"ops@admin.com", RolePassenger, RoleAdmin},
	}
	for _, tc := range cases {
		store := newFakeAccounts()
		svc := newAuth(store)
		if _, err := svc.Signup(context.Background(), SignupRequest{
			Username: "u", Email: tc.email, Password: "pw", Role: tc.requested,
		}); err != nil {
			t.Fatalf("signup %s: %v", tc.email, err)
		}
		if got := store.usersByEmail[tc.email].Role; got != tc.want {
			t.Errorf("role for %s = %s, want %s", tc.email, got, tc.want)
		}
	}
}

func TestSignupStoresHashNotPassword(t *testing.T) {
	store := newFakeAccounts()
	svc := newAuth(store)
	if _, err := svc.Signup(context.Background(), SignupRequest{
		Username: "ali", Email: "ali@example.com", Password: "секрет",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	u := store.usersByEmail["ali@example.com"]
	if u.PasswordHash == "секрет" {
		t.Fatal("password stored in the clear")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("секрет")) != nil {
		t.Error("stored hash does not verify the original password")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := newFakeAccounts()
	svc := newAuth(store)
	req := SignupRequest{Username: "ali", Email: "ali@example.com", Password: "pw"}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), req); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSigninAndVerifyRoundTrip(t *testing.T) {
	store := newFakeAccounts()
	svc := newAuth(store)
	if _, err := svc.Signup(context.Background(), SignupRequest{
		Username: "ali", Email: "ali@example.com", Password: "pw123",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, id, err := svc.Signin(context.Background(), "ali@example.com", "pw123")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if id.Role != RolePassenger || id.Username != "ali" {
		t.Errorf("identity = %+v", id)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != id {
		t.Errorf("verified identity = %+v, want %+v", got, id)
	}
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	store := newFakeAccounts()
	svc := newAuth(store)
	if _, err := svc.Signup(context.Background(), SignupRequest{
		Username: "ali", Email: "ali@example.com", Password: "pw123",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Signin(context.Background(), "ali@example.com", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong password: expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Signin(context.Background(), "ghost@example.com", "pw123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown email: expected ErrNotFound, got %v", err)
	}
}

func TestRefreshIssuesUsableToken(t *testing.T) {
	store := newFakeAccounts()
	svc := newAuth(store)
	if _, err := svc.Signup(context.Background(), SignupRequest{
		Username: "ali", Email: "ali@example.com", Password: "pw123",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, id, err := svc.Signin(context.Background(), "ali@example.com", "pw123")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	fresh, err := svc.Refresh(token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got, err := svc.Verify(fresh)
	if err != nil {
		t.Fatalf("verify refreshed: %v", err)
	}
	if got != id {
		t.Errorf("refreshed identity = %+v, want %+v", got, id)
	}

	if _, err := svc.Refresh("not-a-token"); !errors.Is(err, ErrBadToken) {
		t.Errorf("garbage token: expected ErrBadToken, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	store := newFakeAccounts()
	ours := newAuth(store)
	theirs := NewAuthService(store, "other-secret", 24*time.Hour,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	token, err := theirs.issue(Identity{UserID: 1, Username: "x"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ours.Verify(token); !errors.Is(err, ErrBadToken) {
		t.Errorf("foreign signature: expected ErrBadToken, got %v", err)
	}
}

func TestDriverRegistrationFlow(t *testing.T) {
	store := newFakeAccounts()
	svc := newAuth(store)

	driverID, err := svc.RegisterDriver(context.Background(), DriverSignupRequest{
		Username: "dr", Email: "dr@example.com", Password: "pw", LicenseNumber: "L-99",
	})
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	if store.drivers[driverID] != "pending" {
		t.Fatalf("new driver status = %s, want pending", store.drivers[driverID])
	}

	pending, err := svc.PendingDrivers(context.Background())
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, err = %v", pending, err)
	}

	if err := svc.ApproveDriver(context.Background(), driverID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if store.drivers[driverID] != "approved" {
		t.Errorf("status after approval = %s", store.drivers[driverID])
	}

	if err := svc.RejectDriver(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("reject unknown driver: expected ErrNotFound, got %v", err)
	}
}
