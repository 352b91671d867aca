package product

import (
	"github.com/shopstack/shopstack-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the catalog listing.
type ListFilters struct {
	Category *string `json:"category,omitempty"`
	Brand    *string `json:"brand,omitempty"`
	Query    string  `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate and filter the catalog.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult carries one page of products plus the cursor for the next one.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}
