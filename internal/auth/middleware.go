package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"execedge/internal/engine"
	"execedge/internal/response"
	"execedge/internal/storage"
)

const userKey = "user"

// Middleware requires an "Authorization: Bearer <token>" header naming a
// known user and stores that user on the context.
func Middleware(p *Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("missing bearer token"))
			return
		}
		u, err := p.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, engine.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("invalid bearer token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Fail(http.StatusServiceUnavailable, "auth store unavailable"))
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// CurrentUser returns the user set by Middleware, or nil.
func CurrentUser(c *gin.Context) *storage.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*storage.User)
	return u
}
