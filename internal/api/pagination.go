package api

import (
	"errors"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

var errInvalidPage = errors.New("invalid page")

// parsePage reads the page and limit query parameters. A missing or bad
// limit falls back to defaultSize.
func parsePage(c *gin.Context, defaultSize int) (types.PageRequest, error) {
	page := types.PageRequest{Page: 1, Limit: defaultSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, errInvalidPage
		}
		page.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Limit = n
		}
	}
	if page.Limit > maxPageSize {
		page.Limit = maxPageSize
	}
	if page.Page-1 > math.MaxInt/page.Limit {
		return page, errInvalidPage
	}
	return page, nil
}

// pageResponse wraps results in the paginated envelope. A page past the
// end is reported as errInvalidPage, except the first page of an empty list.
func pageResponse(c *gin.Context, page types.PageRequest, total int64, results interface{}) (*types.PageResponse, error) {
	if page.Page > 1 && int64(page.Offset()) >= total {
		return nil, errInvalidPage
	}
	resp := &types.PageResponse{Count: total, Results: results}
	if int64(page.Offset()+page.Limit) < total {
		resp.Next = pageLink(c, page.Page+1)
	}
	if page.Page > 1 {
		resp.Previous = pageLink(c, page.Page-1)
	}
	return resp, nil
}

// pageLink returns the current request path and query with page replaced.
func pageLink(c *gin.Context, n int) *string {
	q := c.Request.URL.Query()
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	link := c.Request.URL.Path
	if encoded := q.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return &link
}
