package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/folio/api"
	"github.com/dfryer1193/folio/blog/application"
	"github.com/dfryer1193/folio/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (a *Api) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, expires, err := a.auth.Login(c.Request.Context(), req.Secret)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.LoginResponse{Token: token, ExpiresAt: expires})
}

func (a *Api) Logout(c *gin.Context) {
	if err := a.auth.Logout(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAllPosts includes drafts.
func (a *Api) ListAllPosts(c *gin.Context) {
	posts := a.store.Posts()
	if posts == nil {
		posts = []*domain.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

func (a *Api) CreatePost(c *gin.Context) {
	var in application.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	post, err := application.PrepareDraft(in, a.author, a.now())
	if err != nil {
		writeError(c, err)
		return
	}

	created, err := a.store.CreatePost(c.Request.Context(), post)
	if err != nil {
		writeError(c, err)
		return
	}

	log.Info().Str("postID", created.ID).Msg("Created post")
	c.JSON(http.StatusCreated, created)
}

// UpdatePost applies a partial update. Only the fields present in the body change.
func (a *Api) UpdatePost(c *gin.Context) {
	id := c.Param("id")

	patch, err := domain.DecodePatch(c.Request.Body)
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := a.store.UpdatePost(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	if updated == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *Api) DeletePost(c *gin.Context) {
	if err := a.store.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *Api) Migrate(c *gin.Context) {
	n, err := a.store.Migrate(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MigrateResponse{Migrated: n})
}

func (a *Api) Reload(c *gin.Context) {
	source := a.store.Load(c.Request.Context())
	c.JSON(http.StatusOK, api.ReloadResponse{Source: source.String()})
}

// SwitchLanguage toggles the content language, or switches to the one named in the
// body. Posts that could not be translated are listed in the result.
func (a *Api) SwitchLanguage(c *gin.Context) {
	var req api.LanguageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	var (
		result *application.SwitchResult
		err    error
	)
	if req.Language == "" {
		result, err = a.switcher.Toggle(c.Request.Context())
	} else {
		result, err = a.switcher.Switch(c.Request.Context(), domain.Language(req.Language))
	}

	var batchErr *domain.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *Api) Preview(c *gin.Context) {
	var req api.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	preview, err := a.renderer.Render(req.Markdown)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
