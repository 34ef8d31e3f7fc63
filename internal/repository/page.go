// internal/repository/page.go
package repository

import "cardflow/internal/domain"

// Sort directions accepted in Page requests.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page describes a paginated, sorted listing request. The zero value
// is not usable directly; Normalize fills in the defaults (page 0,
// size 10, sort by id ascending).
type Page struct {
	Number  int
	Size    int
	SortBy  string
	SortDir string
}

// sortableColumns whitelists the card columns a caller may sort by.
// Keys are the external field names, values the SQL column names.
var sortableColumns = map[string]string{
	"id":          "id",
	"owner_id":    "owner_id",
	"expiry_date": "expiry_date",
	"status":      "status",
	"balance":     "balance",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// Normalize clamps the page request to safe defaults and returns the
// SQL column and direction to order by. Unknown sort fields fall back
// to id.
func (p Page) Normalize() (Page, string, string) {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	column, ok := sortableColumns[p.SortBy]
	if !ok {
		column = "id"
		p.SortBy = "id"
	}
	dir := SortAsc
	if p.SortDir == SortDesc || p.SortDir == "desc" {
		dir = SortDesc
	}
	p.SortDir = dir
	return p, column, dir
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// Paged is one page of cards plus the total match count.
type Paged struct {
	Items      []domain.Card `json:"items"`
	TotalCount int64         `json:"total_count"`
	Number     int           `json:"page"`
	Size       int           `json:"size"`
}
