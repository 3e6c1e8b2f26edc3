// README: Support domain: accounts, driver onboarding, platform stats.
package support

// User is an account row. PasswordHash never leaves the module.
type User struct {
	ID            int64
	Username      string
	Email         string
	Role          string
	ContactNumber string
	PasswordHash  string
}

const (
	RolePassenger = "Passenger"
	RoleDriver    = "Driver"
	RoleAdmin     = "Admin"
)

// Identity is the authenticated subject carried in a token.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// PendingDriver is a registration awaiting admin review.
type PendingDriver struct {
	DriverID      int64  `json:"driver_id"`
	Name          string `json:"driver_name"`
	Email         string `json:"driver_email"`
	ContactNumber string `json:"contact_number"`
	LicenseNumber string `json:"license_number"`
}

// DriverStats aggregates a driver's ride history.
type DriverStats struct {
	PassengerCount int64   `json:"passengerCount"`
	RideCount      int64   `json:"rideCount"`
	PendingRides   int64   `json:"ridestatus"`
	FareTotal      float64 `json:"fare"`
}
