package controller

import (
	"net/http"

	"github.com/metabo-ui/metabo-ui/config"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/web/entity"
	"github.com/metabo-ui/metabo-ui/web/locale"
	"github.com/metabo-ui/metabo-ui/web/middleware"
	"github.com/metabo-ui/metabo-ui/web/service"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// getRemoteIp returns the client address. Forwarding headers count only
// when the peer is one of the engine's trusted proxies.
func getRemoteIp(c *gin.Context) string {
	return c.ClientIP()
}

// actor identifies the loaded user and its address for audited operations.
func actor(c *gin.Context) service.Actor {
	a := service.Actor{IP: getRemoteIp(c)}
	if user := middleware.CurrentUser(c); user != nil {
		a.ID = user.ID
	}
	return a
}

// jsonMsgObj sends a JSON response with a message, object, and error status.
// The error is logged, never sent to the client.
func jsonMsgObj(c *gin.Context, statusCode int, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		m.Msg = msg
	} else {
		m.Success = false
		m.Msg = msg
		logger.Warning(msg+":", err)
	}
	c.JSON(statusCode, m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// flash queues a localized message for the page rendered next.
func flash(c *gin.Context, category, key string, params ...string) {
	session.AddFlash(c, category, I18nWeb(c, key, params...))
}

// html renders a page with the common layout data: title, pending flashes,
// the loaded user and the localizer used by the i18n template func.
func html(c *gin.Context, name string, title string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, title, data)
}

func htmlStatus(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["flashes"] = session.Flashes(c)
	data["current_user"] = middleware.CurrentUser(c)
	data["loc"] = locale.FromContext(c)
	data["request_uri"] = c.Request.RequestURI
	c.HTML(status, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver":  config.GetVersion(),
		"app_name": config.GetName(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// isAjax checks if the request is an AJAX request.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
