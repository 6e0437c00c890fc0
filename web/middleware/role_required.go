package middleware

import (
	"net/http"

	"github.com/metabo-ui/metabo-ui/web/locale"
	"github.com/metabo-ui/metabo-ui/web/service"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// RoleRequired lets the request through only when a user is loaded and its
// role equals role exactly. Otherwise it flashes a message and redirects
// home without running the handler.
func RoleRequired(role string) gin.HandlerFunc {
	auditService := service.AuditService{}

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil && user.Role == role {
			c.Next()
			return
		}

		actor := ""
		if user != nil {
			actor = user.ID
		}
		auditService.LogAction(service.ActionPermissionDenied, actor, c.Request.URL.Path, c.ClientIP(),
			map[string]any{"required_role": role})

		session.AddFlash(c, session.FlashDanger, locale.I18nWeb(c, "flash.permissionDenied"))
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}
