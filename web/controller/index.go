package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/metabo-ui/metabo-ui/config"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/web/entity"
	"github.com/metabo-ui/metabo-ui/web/middleware"
	"github.com/metabo-ui/metabo-ui/web/service"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexController handles login, logout, the home page and the health check.
type IndexController struct {
	BaseController

	authService  *service.AuthService
	auditService *service.AuditService
	db           Pinger
	dbType       string

	sessionMaxAge int
	startTime     time.Time
}

// NewIndexController creates a new IndexController and initializes its routes.
// sessionMaxAge is in minutes.
func NewIndexController(g *gin.RouterGroup, auth *service.AuthService, audit *service.AuditService, db Pinger, dbType string, sessionMaxAge int) *IndexController {
	a := &IndexController{
		authService:   auth,
		auditService:  audit,
		db:            db,
		dbType:        dbType,
		sessionMaxAge: sessionMaxAge,
		startTime:     time.Now(),
	}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/login", a.loginPage)
	g.POST("/login", middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig()), a.login)
	g.GET("/logout", a.logout)
	g.GET("/healthz", a.health)

	g.GET("/", a.checkLogin, a.home)
}

func (a *IndexController) loginPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

// login verifies the submitted credentials and binds the session to the
// user id. Failed attempts are audited with the email and address only.
func (a *IndexController) login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		flash(c, session.FlashDanger, "flash.invalidForm")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ip := getRemoteIp(c)
	user, err := a.authService.Verify(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			a.auditService.LogAction(service.ActionLoginFailed, "", form.Email, ip, map[string]any{"reason": "unknown_user"})
			flash(c, session.FlashDanger, "flash.unknownUser", "Email=="+form.Email)
		case errors.Is(err, service.ErrBadPassword):
			a.auditService.LogAction(service.ActionLoginFailed, "", form.Email, ip, map[string]any{"reason": "bad_password"})
			flash(c, session.FlashDanger, "flash.badPassword")
		default:
			logger.Error("login failed:", err)
			flash(c, session.FlashDanger, "flash.backendError")
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := session.SetMaxAge(c, a.sessionMaxAge*60); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user.ID); err != nil {
		logger.Warning("unable to save session:", err)
		flash(c, session.FlashDanger, "flash.backendError")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	a.auditService.LogAction(service.ActionLogin, user.ID, user.ID, ip, nil)
	c.Redirect(http.StatusFound, "/")
}

// logout clears the session and redirects to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		a.auditService.LogAction(service.ActionLogout, user.ID, user.ID, getRemoteIp(c), nil)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (a *IndexController) home(c *gin.Context) {
	html(c, "home.html", "pages.home.title", nil)
}

// health pings the database. It needs no session so that load balancers
// can call it.
func (a *IndexController) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	obj := entity.Health{
		Name:     config.GetName(),
		Version:  config.GetVersion(),
		Database: a.dbType,
		Uptime:   int64(time.Since(a.startTime).Seconds()),
	}
	if err := a.db.Ping(ctx); err != nil {
		jsonMsgObj(c, http.StatusServiceUnavailable, "database unreachable", obj, err)
		return
	}
	jsonMsgObj(c, http.StatusOK, "ok", obj, nil)
}

// NotFound renders the 404 page for unmatched routes.
func (a *IndexController) NotFound(c *gin.Context) {
	htmlStatus(c, http.StatusNotFound, "page_not_found.html", "pages.notFound.title", nil)
}
