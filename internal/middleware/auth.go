package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dfryer1193/folio/api"
	"github.com/gin-gonic/gin"
)

// AdminKey is set on the gin context once the bearer token was accepted.
const AdminKey = "admin"

type TokenValidator interface {
	Validate(ctx context.Context, raw string) error
}

// AdminAuth rejects requests without a valid admin bearer token.
func AdminAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if err := v.Validate(c.Request.Context(), token); err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Set(AdminKey, true)
		c.Next()
	}
}

// OptionalAdmin marks the request as admin when a valid token is present and never
// rejects it.
func OptionalAdmin(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c.Request); token != "" {
			if err := v.Validate(c.Request.Context(), token); err == nil {
				c.Set(AdminKey, true)
			}
		}
		c.Next()
	}
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(AdminKey)
}

// BearerToken reads the Authorization header, then the token query parameter used by
// websocket clients.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}
