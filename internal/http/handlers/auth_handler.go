// README: Account handlers: signup, signin, token refresh, driver onboarding.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/support"
)

type AuthHandler struct {
	auth *support.AuthService
}

func NewAuthHandler(auth *support.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req support.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := h.auth.Signup(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "User registered successfully!"})
}

type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	token, id, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Bad password and unknown email both read as invalid credentials.
		if errors.Is(err, support.ErrNotFound) {
			writeError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"token":   token,
		"role":    id.Role,
	})
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		writeError(c, http.StatusBadRequest, "Refresh token is required")
		return
	}
	token, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "New token generated", "newToken": token})
}

func (h *AuthHandler) RegisterDriver(c *gin.Context) {
	var req support.DriverSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := h.auth.RegisterDriver(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Driver registration successful, pending admin approval"})
}

type driverDecisionReq struct {
	DriverID *int64 `json:"driver_id"`
}

func (h *AuthHandler) ApproveDriver(c *gin.Context) {
	h.decideDriver(c, h.auth.ApproveDriver, "Driver approved successfully")
}

func (h *AuthHandler) RejectDriver(c *gin.Context) {
	h.decideDriver(c, h.auth.RejectDriver, "Driver rejected successfully")
}

func (h *AuthHandler) decideDriver(c *gin.Context, op func(ctx context.Context, driverID int64) error, msg string) {
	var req driverDecisionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == nil {
		writeError(c, http.StatusBadRequest, "driver_id is required")
		return
	}
	if err := op(c.Request.Context(), *req.DriverID); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": msg})
}

func (h *AuthHandler) PendingDrivers(c *gin.Context) {
	pending, err := h.auth.PendingDrivers(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, pending)
}
