// Package middleware holds the gin middleware of the metabo-ui web server.
package middleware

import (
	"errors"
	"net/http"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/web/service"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key of the user loaded for the request.
const UserKey = "user"

// LoadUser resolves the session's user id against the store on every
// request and puts the record in the request context. A session pointing to
// a deleted user is cleared.
func LoadUser(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := session.GetLoginUserID(c)
		if id == "" {
			c.Next()
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), id)
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			logger.Infof("session user %s no longer exists", id)
			if err := session.ClearSession(c); err != nil {
				logger.Warning("unable to clear session:", err)
			}
		case err != nil:
			logger.Error("load session user failed:", err)
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		default:
			c.Set(UserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded for this request, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
