// Package controller provides the HTTP handlers of the metabo-ui web
// application: login, metabolite search and user administration.
package controller

import (
	"net/http"

	"github.com/metabo-ui/metabo-ui/web/locale"
	"github.com/metabo-ui/metabo-ui/web/middleware"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct{}

// checkLogin redirects requests without a loaded user to the login page.
func (a *BaseController) checkLogin(c *gin.Context) {
	if middleware.CurrentUser(c) == nil {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "flash.loginRequired"))
		} else {
			session.AddFlash(c, session.FlashInfo, I18nWeb(c, "flash.loginRequired"))
			c.Redirect(http.StatusFound, "/login")
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18nWeb(c, name, params...)
}
