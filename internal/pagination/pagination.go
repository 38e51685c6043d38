// Package pagination parses list query parameters and derives the
// pagination envelope returned alongside every list response.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UnlimitedLimit is the sentinel meaning "return all matching rows, no paging".
const UnlimitedLimit = -1

// DefaultLimit is applied when the limit parameter is missing or invalid.
const DefaultLimit = 10

// Params holds the paging portion of a list request
type Params struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// Envelope is the derived paging summary, never stored
type Envelope struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// FromRequest parses page/limit/search/sortBy/sortOrder, clamping invalid
// values to defaults. limit accepts the -1 sentinel.
func FromRequest(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || (limit <= 0 && limit != UnlimitedLimit) {
		limit = DefaultLimit
	}

	sortOrder := c.QueryParam("sortOrder")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return Params{
		Page:      page,
		Limit:     limit,
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: sortOrder,
	}
}

// Unlimited reports whether paging is disabled for this request
func (p Params) Unlimited() bool {
	return p.Limit == UnlimitedLimit
}

// Offset returns the row offset for the current page
func (p Params) Offset() int {
	if p.Unlimited() {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Envelope derives the paging summary for a total row count. With the
// unlimited sentinel, page and totalPages are forced to 1 regardless of
// the requested page.
func (p Params) Envelope(total int64) Envelope {
	if p.Unlimited() {
		return Envelope{
			Page:       1,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: 1,
		}
	}

	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Envelope{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
