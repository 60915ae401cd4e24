package rest

import (
	"net/http"
	"time"

	"github.com/dfryer1193/folio/blog/application"
	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Store    *application.ContentStore
	Switcher *application.LanguageSwitcher
	Renderer application.PreviewRenderer
	Auth     *application.AdminAuthenticator
	Author   domain.Author
	Now      func() time.Time
}

type Api struct {
	store    *application.ContentStore
	switcher *application.LanguageSwitcher
	renderer application.PreviewRenderer
	auth     *application.AdminAuthenticator
	author   domain.Author
	now      func() time.Time
}

// NewApi registers every route on router.
func NewApi(router *gin.Engine, deps Deps) *Api {
	a := &Api{
		store:    deps.Store,
		switcher: deps.Switcher,
		renderer: deps.Renderer,
		auth:     deps.Auth,
		author:   deps.Author,
		now:      deps.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}

	router.GET("/healthz", a.Health)

	public := router.Group("/api", middleware.OptionalAdmin(a.auth))
	{
		public.GET("/posts", a.GetPosts)
		public.GET("/posts/:id", a.GetPost)
		public.GET("/search", a.Search)
		public.GET("/taxonomy", a.GetTaxonomy)
	}

	state := router.Group("/api/state")
	{
		state.GET("", a.GetState)
		state.PUT("/categories", a.SetCategories)
		state.PUT("/tags", a.SetTags)
		state.PUT("/query", a.SetQuery)
		state.PUT("/page", a.SetPage)
		state.DELETE("/filters", a.ResetFilters)
		state.PUT("/theme", a.SetTheme)
		state.POST("/bookmarks/:id", a.ToggleBookmark)
		state.DELETE("/history", a.ClearHistory)
	}

	router.POST("/api/admin/login", a.Login)

	admin := router.Group("/api/admin", middleware.AdminAuth(a.auth))
	{
		admin.POST("/logout", a.Logout)
		admin.GET("/posts", a.ListAllPosts)
		admin.POST("/posts", a.CreatePost)
		admin.PATCH("/posts/:id", a.UpdatePost)
		admin.DELETE("/posts/:id", a.DeletePost)
		admin.POST("/migrate", a.Migrate)
		admin.POST("/reload", a.Reload)
		admin.POST("/language", a.SwitchLanguage)
		admin.POST("/preview", a.Preview)
		admin.GET("/preview/ws", a.PreviewSocket)
	}

	return a
}

func (a *Api) Health(c *gin.Context) {
	state, source := a.store.State()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "loadState": state.String(), "source": source.String()})
}
