// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"venuedesk/internal/core/id"
)

// --- Pagination ---

// PageRequest contains offset pagination parameters.
type PageRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Defaults sets default pagination values.
func (p *PageRequest) Defaults() {
	if p.Limit == 0 {
		p.Limit = 50
	}
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Simple responses ---

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse for operations without payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDsRequest carries a list of ids, e.g. for batch deletes.
type IDsRequest struct {
	IDs []id.ID `json:"ids" binding:"required,min=1"`
}
