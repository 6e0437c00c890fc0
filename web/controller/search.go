package controller

import (
	"errors"
	"net/http"

	"github.com/metabo-ui/metabo-ui/database/query"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/web/service"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
)

// SearchController serves the metabolite search form, its results and
// the detail page of a single metabolite.
type SearchController struct {
	BaseController

	searchService *service.SearchService
}

func NewSearchController(g *gin.RouterGroup, search *service.SearchService) *SearchController {
	a := &SearchController{searchService: search}
	a.initRouter(g)
	return a
}

func (a *SearchController) initRouter(g *gin.RouterGroup) {
	g = g.Group("", a.checkLogin)

	g.GET("/search", a.searchPage)
	g.POST("/search", a.search)
	g.GET("/metabolites/:id", a.metabolite)
}

func (a *SearchController) searchPage(c *gin.Context) {
	html(c, "search.html", "pages.search.title", nil)
}

func (a *SearchController) search(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		flash(c, session.FlashDanger, "flash.invalidForm")
		html(c, "search.html", "pages.search.title", nil)
		return
	}
	sel := query.Selection(c.Request.PostForm)
	form := gin.H{
		"min_weight": c.PostForm(query.MinWeight),
		"max_weight": c.PostForm(query.MaxWeight),
	}

	items, err := a.searchService.Search(c.Request.Context(), sel)
	if err != nil {
		a.flashSearchError(c, err)
		html(c, "search.html", "pages.search.title", gin.H{"form": form})
		return
	}

	html(c, "search_results.html", "pages.results.title", gin.H{
		"items": items,
		"form":  form,
	})
}

func (a *SearchController) flashSearchError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNoAttributes):
		flash(c, session.FlashDanger, "flash.noAttributes")
	case errors.Is(err, service.ErrWeightRange):
		flash(c, session.FlashDanger, "flash.weightRange")
	case errors.Is(err, service.ErrNoWeightBound):
		flash(c, session.FlashDanger, "flash.noWeightBound")
	case errors.As(err, &vErr):
		flash(c, session.FlashDanger, "flash.invalidNumber", "Field=="+vErr.Field)
	case errors.Is(err, service.ErrNoResults):
		flash(c, session.FlashInfo, "flash.noResults")
	default:
		logger.Error("metabolite search failed:", err)
		flash(c, session.FlashDanger, "flash.backendError")
	}
}

func (a *SearchController) metabolite(c *gin.Context) {
	id := c.Param("id")
	m, err := a.searchService.GetMetabolite(c.Request.Context(), id)
	if errors.Is(err, service.ErrMetaboliteNotFound) {
		flash(c, session.FlashDanger, "flash.metaboliteNotFound", "ID=="+id)
		htmlStatus(c, http.StatusNotFound, "page_not_found.html", "pages.notFound.title", nil)
		return
	} else if err != nil {
		logger.Error("get metabolite failed:", err)
		flash(c, session.FlashDanger, "flash.backendError")
		c.Redirect(http.StatusFound, "/search")
		return
	}
	html(c, "metabolite.html", "pages.metabolite.title", gin.H{"metabolite": m})
}
