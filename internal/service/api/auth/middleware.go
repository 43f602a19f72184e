package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/streamgrid/streamgrid/internal/domain/user"
	"github.com/streamgrid/streamgrid/internal/service/api/httpx"
)

const ctxUserKey = "auth.user"

// RequireAuth gates a route behind a valid access token, taken from the
// Authorization header or the accessToken cookie. On success the resolved
// user is attached to the gin context for handlers downstream.
func RequireAuth(uc *Usecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(accessCookie)
		}
		u, err := uc.Authenticate(c.Request.Context(), token)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid access token is present
// and lets the request through either way. Public pages use it to render
// viewer-relative data.
func OptionalAuth(uc *Usecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(accessCookie)
		}
		if u, err := uc.Authenticate(c.Request.Context(), token); err == nil {
			c.Set(ctxUserKey, u)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

// MustCurrentUser is for handlers mounted behind RequireAuth, where the
// user is guaranteed to be present.
func MustCurrentUser(c *gin.Context) *user.User {
	u, ok := CurrentUser(c)
	if !ok {
		panic("auth: handler mounted without RequireAuth")
	}
	return u
}
