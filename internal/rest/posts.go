package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dfryer1193/folio/api"
	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/internal/middleware"
	"github.com/gin-gonic/gin"
)

// GetPosts serves one page of published posts filtered by the query string. It does
// not touch the shared filter state.
func (a *Api) GetPosts(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid page %q", raw))
			return
		}
		page = n
	}

	criteria := domain.Criteria{
		Categories: queryList(c, "category"),
		Tags:       queryList(c, "tag"),
		Query:      c.Query("q"),
	}

	result := a.store.Browse(criteria, page)
	if result.Posts == nil {
		result.Posts = []*domain.Post{}
	}
	c.JSON(http.StatusOK, result)
}

func (a *Api) GetPost(c *gin.Context) {
	id := c.Param("id")

	post := a.store.Post(id)
	if post == nil || (!post.IsPublished && !middleware.IsAdmin(c)) {
		writeError(c, fmt.Errorf("%w: %s", domain.ErrNotFound, id))
		return
	}
	c.JSON(http.StatusOK, post)
}

// Search returns the quick search preview and records the query in the history.
func (a *Api) Search(c *gin.Context) {
	q := c.Query("q")

	results := a.store.SearchPreview(q)
	if results == nil {
		results = []*domain.Post{}
	}
	if strings.TrimSpace(q) != "" {
		a.store.RecordSearch(c.Request.Context(), q)
	}

	c.JSON(http.StatusOK, api.SearchResponse{Query: q, Results: results})
}

func (a *Api) GetTaxonomy(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Taxonomy())
}

// queryList accepts both repeated parameters and comma separated values.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		out = append(out, domain.SplitList(v)...)
	}
	return out
}
