package rest

import (
	"net/http"

	"github.com/dfryer1193/folio/api"
	"github.com/dfryer1193/folio/blog/domain"
	"github.com/gin-gonic/gin"
)

func (a *Api) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.View())
}

func (a *Api) SetCategories(c *gin.Context) {
	var req api.CategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a.store.SetSelectedCategories(req.Categories)
	a.GetState(c)
}

func (a *Api) SetTags(c *gin.Context) {
	var req api.TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a.store.SetSelectedTags(req.Tags)
	a.GetState(c)
}

func (a *Api) SetQuery(c *gin.Context) {
	var req api.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a.store.SetSearchQuery(c.Request.Context(), req.Query)
	a.GetState(c)
}

// SetPage stores the page as given. Out of range pages yield an empty post list.
func (a *Api) SetPage(c *gin.Context) {
	var req api.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a.store.SetCurrentPage(req.Page)
	a.GetState(c)
}

func (a *Api) ResetFilters(c *gin.Context) {
	a.store.ResetFilters()
	a.GetState(c)
}

func (a *Api) SetTheme(c *gin.Context) {
	var req api.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := a.store.SetTheme(c.Request.Context(), domain.Theme(req.Theme)); err != nil {
		writeError(c, err)
		return
	}
	a.GetState(c)
}

func (a *Api) ToggleBookmark(c *gin.Context) {
	id := c.Param("id")
	bookmarked := a.store.ToggleBookmark(c.Request.Context(), id)
	c.JSON(http.StatusOK, api.BookmarkResponse{ID: id, Bookmarked: bookmarked})
}

func (a *Api) ClearHistory(c *gin.Context) {
	a.store.ClearSearchHistory(c.Request.Context())
	a.GetState(c)
}
