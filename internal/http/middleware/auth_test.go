package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/http/middleware"
	"github.com/SabaShahdin/ms/internal/modules/support"
)

type stubVerifier struct {
	id  support.Identity
	err error
}

func (s *stubVerifier) Verify(string) (support.Identity, error) {
	return s.id, s.err
}

func protectedRouter(v middleware.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(v))
	r.GET("/stats/city-count", func(c *gin.Context) {
		id, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": id.Role})
	})
	return r
}

func get(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/stats/city-count", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingToken(t *testing.T) {
	r := protectedRouter(&stubVerifier{})
	if w := get(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r := protectedRouter(&stubVerifier{err: errors.New("bad")})
	if w := get(r, "Bearer nope"); w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestAuthValidTokenExposesIdentity(t *testing.T) {
	r := protectedRouter(&stubVerifier{id: support.Identity{UserID: 7, Role: support.RoleAdmin}})
	w := get(r, "Bearer good")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"role":"Admin"`) {
		t.Errorf("body %s does not carry the role", w.Body.String())
	}
}
