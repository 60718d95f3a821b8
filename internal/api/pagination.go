package api

import (
	"math"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	maxPageSize = 100
	// keeps page*limit inside int32
	maxPage = math.MaxInt32 / maxPageSize
)

// pageRequest reads page and limit from the query. Bad values fall back to
// the first page and the default size.
func pageRequest(c *gin.Context, defaultLimit int) service.PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return service.PageRequest{Page: page, Limit: limit}
}

// newPage wraps results with the count and absolute links to the
// neighbouring pages.
func newPage(c *gin.Context, req service.PageRequest, total int64, results interface{}) types.Page {
	p := types.Page{Count: total, Results: results}

	if int64(req.Page)*int64(req.Limit) < total {
		next := pageURL(c, req.Page+1)
		p.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(c, req.Page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
