// README: Account service: signup, signin, token refresh, driver onboarding.
package support

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadRequest  = errors.New("invalid account request")
	ErrNotFound    = errors.New("account not found")
	ErrConflict    = errors.New("account already exists")
	ErrBadToken    = errors.New("invalid or expired token")
	ErrUnavailable = errors.New("account store unavailable")
)

type SignupRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
	Role          string `json:"role"`
}

type DriverSignupRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
	LicenseNumber string `json:"license_number"`
}

type AuthService struct {
	store    Store
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger
}

func NewAuthService(store Store, secret string, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{store: store, secret: []byte(secret), tokenTTL: tokenTTL, log: log}
}

// Signup registers a passenger account. Addresses under the admin domain are
// promoted to the Admin role regardless of the requested one.
func (a *AuthService) Signup(ctx context.Context, req SignupRequest) (int64, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return 0, fmt.Errorf("%w: username, email and password are required", ErrBadRequest)
	}
	role := req.Role
	if role == "" {
		role = RolePassenger
	}
	if strings.HasSuffix(req.Email, "@admin.com") {
		role = RoleAdmin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := a.store.CreateUser(ctx, User{
		Username:      req.Username,
		Email:         req.Email,
		Role:          role,
		ContactNumber: req.ContactNumber,
		PasswordHash:  string(hash),
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return 0, ErrConflict
		}
		a.log.Error("signup failed", "email", req.Email, "err", err)
		return 0, ErrUnavailable
	}
	return id, nil
}

// RegisterDriver creates a driver account that stays pending until approved.
func (a *AuthService) RegisterDriver(ctx context.Context, req DriverSignupRequest) (int64, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.LicenseNumber == "" {
		return 0, fmt.Errorf("%w: username, email, password and license_number are required", ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	driverID, err := a.store.CreateDriver(ctx, User{
		Username:      req.Username,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		PasswordHash:  string(hash),
	}, req.LicenseNumber)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return 0, ErrConflict
		}
		a.log.Error("driver registration failed", "email", req.Email, "err", err)
		return 0, ErrUnavailable
	}
	return driverID, nil
}

// Signin checks the password and issues a signed token for the account.
func (a *AuthService) Signin(ctx context.Context, email, password string) (token string, id Identity, err error) {
	if email == "" || password == "" {
		return "", Identity{}, fmt.Errorf("%w: email and password are required", ErrBadRequest)
	}
	u, err := a.store.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", Identity{}, ErrNotFound
	}
	if err != nil {
		a.log.Error("signin lookup failed", "email", email, "err", err)
		return "", Identity{}, ErrUnavailable
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", Identity{}, ErrNotFound
	}
	id = Identity{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
	token, err = a.issue(id)
	if err != nil {
		return "", Identity{}, err
	}
	return token, id, nil
}

// Refresh verifies an existing token and issues a fresh one for the same
// identity with a renewed expiry.
func (a *AuthService) Refresh(token string) (string, error) {
	id, err := a.Verify(token)
	if err != nil {
		return "", err
	}
	return a.issue(id)
}

// Verify parses and validates a token, returning the identity it carries.
func (a *AuthService) Verify(token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrBadToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrBadToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, ErrBadToken
	}
	return Identity{
		UserID:   int64(userID),
		Username: claimString(claims, "username"),
		Email:    claimString(claims, "email"),
		Role:     claimString(claims, "role"),
	}, nil
}

func (a *AuthService) issue(id Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  id.UserID,
		"username": id.Username,
		"email":    id.Email,
		"role":     id.Role,
		"exp":      time.Now().Add(a.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// ApproveDriver and RejectDriver flip a pending registration's status.

func (a *AuthService) ApproveDriver(ctx context.Context, driverID int64) error {
	return a.setDriverStatus(ctx, driverID, "approved")
}

func (a *AuthService) RejectDriver(ctx context.Context, driverID int64) error {
	return a.setDriverStatus(ctx, driverID, "rejected")
}

func (a *AuthService) setDriverStatus(ctx context.Context, driverID int64, status string) error {
	if driverID <= 0 {
		return fmt.Errorf("%w: driver id is required", ErrBadRequest)
	}
	err := a.store.SetDriverStatus(ctx, driverID, status)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		a.log.Error("driver status update failed", "driver_id", driverID, "status", status, "err", err)
		return ErrUnavailable
	}
	return nil
}

func (a *AuthService) PendingDrivers(ctx context.Context) ([]PendingDriver, error) {
	pending, err := a.store.PendingDrivers(ctx)
	if err != nil {
		a.log.Error("pending driver lookup failed", "err", err)
		return nil, ErrUnavailable
	}
	return pending, nil
}
