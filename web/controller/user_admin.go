package controller

import (
	"errors"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/web/entity"
	"github.com/metabo-ui/metabo-ui/web/middleware"
	"github.com/metabo-ui/metabo-ui/web/service"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// roles offered by the administration forms. The stored role is free text.
var roles = []string{model.RoleUser, model.RoleAdmin}

// UserAdminController serves the admin-only user list and add-user pages.
type UserAdminController struct {
	BaseController

	adminService *service.UserAdminService
}

func NewUserAdminController(g *gin.RouterGroup, admin *service.UserAdminService) *UserAdminController {
	a := &UserAdminController{adminService: admin}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("", a.checkLogin, middleware.RoleRequired(model.RoleAdmin))

	g.GET("/users", a.usersPage)
	g.POST("/users", a.updateUsers)
	g.GET("/add_user", a.addUserPage)
	g.POST("/add_user", a.addUser)
}

func (a *UserAdminController) usersPage(c *gin.Context) {
	a.renderUsers(c)
}

func (a *UserAdminController) renderUsers(c *gin.Context) {
	users, err := a.adminService.ListUsers(c.Request.Context())
	if err != nil {
		logger.Error("list users failed:", err)
		flash(c, session.FlashDanger, "flash.backendError")
	}
	html(c, "users.html", "pages.users.title", gin.H{
		"users": users,
		"roles": roles,
	})
}

// updateUsers deletes a user when delete is "True" and otherwise sets the
// role submitted in role_<user_id>.
func (a *UserAdminController) updateUsers(c *gin.Context) {
	var form entity.UsersForm
	if err := c.ShouldBind(&form); err != nil || form.UserID == "" {
		flash(c, session.FlashDanger, "flash.invalidForm")
		a.renderUsers(c)
		return
	}

	ctx := c.Request.Context()
	if form.IsDelete() {
		err := a.adminService.DeleteUser(ctx, actor(c), form.UserID)
		switch {
		case err == nil:
			flash(c, session.FlashSuccess, "flash.userDeleted", "Email=="+form.UserID)
		case errors.Is(err, service.ErrCannotDeleteSelf):
			flash(c, session.FlashDanger, "flash.cannotDeleteSelf")
		case errors.Is(err, service.ErrProtectedUser):
			flash(c, session.FlashDanger, "flash.cannotDeleteGod")
		default:
			a.flashUserError(c, err, form.UserID)
		}
		a.renderUsers(c)
		return
	}

	role := c.PostForm(form.RoleField())
	user, err := a.adminService.UpdateRole(ctx, actor(c), form.UserID, role)
	switch {
	case err == nil:
		flash(c, session.FlashSuccess, "flash.roleUpdated", "Email=="+user.Email, "Role=="+user.Role)
	case errors.Is(err, service.ErrProtectedUser):
		flash(c, session.FlashDanger, "flash.cannotUpdateGod")
	default:
		a.flashUserError(c, err, form.UserID)
	}
	a.renderUsers(c)
}

func (a *UserAdminController) addUserPage(c *gin.Context) {
	html(c, "add_user.html", "pages.addUser.title", gin.H{"roles": roles})
}

func (a *UserAdminController) addUser(c *gin.Context) {
	var form entity.AddUserForm
	if err := c.ShouldBind(&form); err != nil {
		flash(c, session.FlashDanger, "flash.invalidForm")
		a.addUserPage(c)
		return
	}

	user, err := a.adminService.AddUser(c.Request.Context(), actor(c), form.Email, form.Password, form.Role)
	switch {
	case err == nil:
		flash(c, session.FlashSuccess, "flash.userAdded", "Email=="+user.Email)
	case errors.Is(err, service.ErrDuplicateUser):
		flash(c, session.FlashDanger, "flash.duplicateUser", "Email=="+form.Email)
	default:
		a.flashUserError(c, err, form.Email)
	}
	a.addUserPage(c)
}

func (a *UserAdminController) flashUserError(c *gin.Context, err error, email string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		flash(c, session.FlashDanger, "flash.invalidValue", "Field=="+vErr.Field, "Reason=="+vErr.Reason)
	case errors.Is(err, service.ErrUnknownUser):
		flash(c, session.FlashDanger, "flash.unknownTarget", "Email=="+email)
	default:
		logger.Error("user administration failed:", err)
		flash(c, session.FlashDanger, "flash.backendError")
	}
}
