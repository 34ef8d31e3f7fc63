// internal/repository/page_test.go
package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalizeDefaults(t *testing.T) {
	page, column, dir := Page{}.Normalize()

	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, "id", column)
	assert.Equal(t, SortAsc, dir)
	assert.Equal(t, 0, page.Offset())
}

func TestPageNormalizeWhitelistsSortColumn(t *testing.T) {
	_, column, _ := Page{SortBy: "balance"}.Normalize()
	assert.Equal(t, "balance", column)

	// Unknown and hostile sort fields fall back to id.
	_, column, _ = Page{SortBy: "number_encrypted; DROP TABLE cards"}.Normalize()
	assert.Equal(t, "id", column)
}

func TestPageNormalizeClamps(t *testing.T) {
	page, _, dir := Page{Number: -3, Size: 100000, SortDir: "desc"}.Normalize()

	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 100, page.Size)
	assert.Equal(t, SortDesc, dir)

	page, _, _ = Page{Number: 2, Size: 25}.Normalize()
	assert.Equal(t, 50, page.Offset())
}
