// README: Bearer-token auth middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/support"
)

// TokenVerifier validates a token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (support.Identity, error)
}

const identityKey = "identity"

// Auth rejects requests without a valid bearer token and stashes the
// identity on the context for downstream handlers.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied, token missing!"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		id, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token or token expired"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(c *gin.Context) (support.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return support.Identity{}, false
	}
	id, ok := v.(support.Identity)
	return id, ok
}
