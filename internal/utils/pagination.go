package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/constants"
)

// PaginationParams selects one page of a list
type PaginationParams struct {
	Page  int
	Limit int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type paginationQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// NewPaginationParams clamps page and limit into the accepted range
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	return PaginationParams{Page: page, Limit: limit}
}

// GetPaginationParams reads page and limit from the query string.
// Missing or malformed values fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	var query paginationQuery
	_ = c.ShouldBindQuery(&query)
	return NewPaginationParams(query.Page, query.Limit)
}

// Offset is the number of rows before the page
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// NewPaginationResponse builds the metadata for a page out of total rows
func NewPaginationResponse(p PaginationParams, total int64) PaginationResponse {
	var pages int64
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return PaginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
